package app

import (
	"context"
	"testing"
	"time"

	"garagelog/internal/store"
	"garagelog/pkg/domain"
)

func fptr(f float64) *float64 { return &f }

func recordOn(date time.Time, cost *float64) domain.MaintenanceRecord {
	return domain.MaintenanceRecord{
		Type:  domain.MaintenanceOther,
		Title: "service",
		Date:  date,
		Cost:  cost,
	}
}

func TestComputeStatsTotalSpentTreatsMissingCostAsZero(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []domain.MaintenanceRecord{
		recordOn(now.AddDate(0, -1, 0), fptr(10)),
		recordOn(now.AddDate(0, -2, 0), nil),
		recordOn(now.AddDate(0, -3, 0), fptr(5.5)),
	}
	stats := computeStats(nil, records, nil, nil, now)
	if stats.TotalSpent != 15.5 {
		t.Fatalf("totalSpent = %v, want 15.5", stats.TotalSpent)
	}
	if stats.TotalMaintenance != 3 {
		t.Fatalf("totalMaintenance = %d, want 3", stats.TotalMaintenance)
	}
}

func TestComputeStatsEmptyCollections(t *testing.T) {
	stats := computeStats(nil, nil, nil, nil, time.Now())
	if stats.TotalSpent != 0 {
		t.Fatalf("totalSpent = %v, want 0", stats.TotalSpent)
	}
	if len(stats.UpcomingMaintenance) != 0 {
		t.Fatalf("upcoming len = %d, want 0", len(stats.UpcomingMaintenance))
	}
}

func TestUpcomingFiltersAndSortsAscending(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)
	inTen := now.AddDate(0, 0, 10)
	inTwo := now.AddDate(0, 0, 2)
	records := []domain.MaintenanceRecord{
		recordOn(yesterday, nil),
		recordOn(inTen, nil),
		recordOn(tomorrow, nil),
		recordOn(inTwo, nil),
	}
	got := upcoming(records, now, 5)
	want := []time.Time{tomorrow, inTwo, inTen}
	if len(got) != len(want) {
		t.Fatalf("upcoming len = %d, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if !rec.Date.Equal(want[i]) {
			t.Fatalf("upcoming[%d].Date = %v, want %v", i, rec.Date, want[i])
		}
	}
}

func TestUpcomingExcludesRecordsAtNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := upcoming([]domain.MaintenanceRecord{recordOn(now, nil)}, now, 5)
	if len(got) != 0 {
		t.Fatalf("record dated exactly now should be excluded, got %d", len(got))
	}
}

func TestUpcomingCapsAtLimit(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	records := make([]domain.MaintenanceRecord, 0, 8)
	for i := 8; i >= 1; i-- {
		records = append(records, recordOn(now.AddDate(0, 0, i), nil))
	}
	got := upcoming(records, now, upcomingLimit)
	if len(got) != upcomingLimit {
		t.Fatalf("upcoming len = %d, want %d", len(got), upcomingLimit)
	}
	// The five nearest dates survive the cap.
	for i, rec := range got {
		want := now.AddDate(0, 0, i+1)
		if !rec.Date.Equal(want) {
			t.Fatalf("upcoming[%d].Date = %v, want %v", i, rec.Date, want)
		}
	}
}

func TestDashboardAggregatesStoreSnapshots(t *testing.T) {
	mem := store.NewMemoryStore()
	a, err := New(Config{Store: mem})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ctx := context.Background()

	vehicle, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	shop, err := a.CreateShop(ctx, shopPayload(t, `{"name":"Joe's Garage"}`))
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}

	future := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	past := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	if _, err := a.CreateMaintenance(ctx, maintenancePayload(t,
		`{"vehicleId":"`+vehicle.ID+`","type":"OIL_CHANGE","title":"Oil","date":"`+past+`","cost":"49.99","shopId":"`+shop.ID+`"}`)); err != nil {
		t.Fatalf("create past maintenance: %v", err)
	}
	if _, err := a.CreateMaintenance(ctx, maintenancePayload(t,
		`{"vehicleId":"`+vehicle.ID+`","type":"INSPECTION","title":"Annual inspection","date":"`+future+`"}`)); err != nil {
		t.Fatalf("create future maintenance: %v", err)
	}

	stats, err := a.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TotalVehicles != 1 || stats.TotalMaintenance != 2 || stats.TotalShops != 1 || stats.TotalParts != 0 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.TotalSpent != 49.99 {
		t.Fatalf("totalSpent = %v, want 49.99", stats.TotalSpent)
	}
	if len(stats.UpcomingMaintenance) != 1 || stats.UpcomingMaintenance[0].Title != "Annual inspection" {
		t.Fatalf("unexpected upcoming: %+v", stats.UpcomingMaintenance)
	}
}
