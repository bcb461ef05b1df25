package store

import (
	"context"
	"testing"
	"time"

	"garagelog/pkg/domain"
)

func sptr(s string) *string { return &s }

func seedVehicle(t *testing.T, s *MemoryStore) domain.Vehicle {
	t.Helper()
	v, err := s.CreateVehicle(context.Background(), domain.Vehicle{
		Make: "Honda", Model: "Civic", Year: 2001, Type: domain.VehicleCar,
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func seedRecord(t *testing.T, s *MemoryStore, vehicleID string, date time.Time) domain.MaintenanceRecord {
	t.Helper()
	rec, err := s.CreateMaintenance(context.Background(), domain.MaintenanceRecord{
		VehicleID: vehicleID, Type: domain.MaintenanceRepair, Title: "work", Date: date,
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}
	return rec
}

func TestDeleteVehicleCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seedVehicle(t, s)
	rec := seedRecord(t, s, v.ID, time.Now().UTC())

	part, err := s.CreatePart(ctx, domain.Part{Name: "Filter", Quantity: 1, VehicleID: &v.ID})
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := s.AttachPart(ctx, domain.PartUsage{MaintenanceRecordID: rec.ID, PartID: part.ID, Quantity: 1}); err != nil {
		t.Fatalf("attach part: %v", err)
	}
	if _, err := s.CreateProject(ctx, domain.Project{VehicleID: v.ID, Title: "Restore", Status: domain.ProjectPlanned}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := s.CreateNote(ctx, domain.Note{VehicleID: &v.ID, Content: "garaged"}); err != nil {
		t.Fatalf("create note: %v", err)
	}
	if _, err := s.CreateNote(ctx, domain.Note{MaintenanceRecordID: &rec.ID, Content: "used OEM parts"}); err != nil {
		t.Fatalf("create record note: %v", err)
	}
	if _, err := s.CreateDocument(ctx, domain.Document{MaintenanceRecordID: rec.ID, Filename: "r.pdf", StorageKey: "k"}); err != nil {
		t.Fatalf("create document: %v", err)
	}

	found, err := s.DeleteVehicle(ctx, v.ID)
	if err != nil || !found {
		t.Fatalf("delete vehicle: found=%v err=%v", found, err)
	}

	if _, found, _ := s.GetMaintenance(ctx, rec.ID); found {
		t.Fatal("maintenance record survived vehicle delete")
	}
	if _, found, _ := s.GetPart(ctx, part.ID); found {
		t.Fatal("part survived vehicle delete")
	}
	notes, _ := s.ListMaintenanceNotes(ctx, rec.ID)
	if len(notes) != 0 {
		t.Fatalf("record notes survived: %d", len(notes))
	}
	docs, _ := s.ListDocuments(ctx, rec.ID)
	if len(docs) != 0 {
		t.Fatalf("documents survived: %d", len(docs))
	}
	projects, _ := s.ListProjects(ctx, v.ID)
	if len(projects) != 0 {
		t.Fatalf("projects survived: %d", len(projects))
	}
}

func TestDeleteMaintenanceLeavesVehicle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seedVehicle(t, s)
	rec := seedRecord(t, s, v.ID, time.Now().UTC())

	found, err := s.DeleteMaintenance(ctx, rec.ID)
	if err != nil || !found {
		t.Fatalf("delete maintenance: found=%v err=%v", found, err)
	}
	if _, found, _ := s.GetVehicle(ctx, v.ID); !found {
		t.Fatal("vehicle must survive record delete")
	}
}

func TestDeleteShopClearsRecordReference(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seedVehicle(t, s)
	shop, err := s.CreateShop(ctx, domain.Shop{Name: "Joe's"})
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}
	rec, err := s.CreateMaintenance(ctx, domain.MaintenanceRecord{
		VehicleID: v.ID, Type: domain.MaintenanceRepair, Title: "work",
		Date: time.Now().UTC(), ShopID: &shop.ID,
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	if found, err := s.DeleteShop(ctx, shop.ID); err != nil || !found {
		t.Fatalf("delete shop: found=%v err=%v", found, err)
	}
	got, found, _ := s.GetMaintenance(ctx, rec.ID)
	if !found {
		t.Fatal("record must survive shop delete")
	}
	if got.ShopID != nil {
		t.Fatalf("shopId = %v, want nil after shop delete", *got.ShopID)
	}
}

func TestListMaintenanceFiltersAndSorts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v1 := seedVehicle(t, s)
	v2 := seedVehicle(t, s)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, s, v1.ID, base)
	newest := seedRecord(t, s, v1.ID, base.AddDate(0, 1, 0))
	seedRecord(t, s, v2.ID, base.AddDate(0, 2, 0))

	records, err := s.ListMaintenance(ctx, MaintenanceFilter{VehicleID: v1.ID})
	if err != nil {
		t.Fatalf("list maintenance: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != newest.ID {
		t.Fatal("expected newest record first")
	}
	if records[0].Vehicle == nil || records[0].Vehicle.ID != v1.ID {
		t.Fatalf("expected embedded vehicle summary, got %+v", records[0].Vehicle)
	}
}

func TestListPartsFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seedVehicle(t, s)
	if _, err := s.CreatePart(ctx, domain.Part{Name: "Filter", Quantity: 1, VehicleID: &v.ID, Category: sptr("ENGINE")}); err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := s.CreatePart(ctx, domain.Part{Name: "Bulb", Quantity: 2, Category: sptr("ELECTRICAL")}); err != nil {
		t.Fatalf("create part: %v", err)
	}

	byVehicle, err := s.ListParts(ctx, PartFilter{VehicleID: v.ID})
	if err != nil {
		t.Fatalf("list parts: %v", err)
	}
	if len(byVehicle) != 1 || byVehicle[0].Name != "Filter" {
		t.Fatalf("unexpected vehicle filter result: %+v", byVehicle)
	}
	byCategory, err := s.ListParts(ctx, PartFilter{Category: "ELECTRICAL"})
	if err != nil {
		t.Fatalf("list parts: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Name != "Bulb" {
		t.Fatalf("unexpected category filter result: %+v", byCategory)
	}
}

func TestListVehiclesCounts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seedVehicle(t, s)
	seedRecord(t, s, v.ID, time.Now().UTC())
	seedRecord(t, s, v.ID, time.Now().UTC())
	if _, err := s.CreatePart(ctx, domain.Part{Name: "Filter", Quantity: 1, VehicleID: &v.ID}); err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := s.CreateProject(ctx, domain.Project{VehicleID: v.ID, Title: "Paint", Status: domain.ProjectPlanned}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	vehicles, err := s.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("list vehicles: %v", err)
	}
	if len(vehicles) != 1 || vehicles[0].Counts == nil {
		t.Fatalf("unexpected vehicles: %+v", vehicles)
	}
	counts := vehicles[0].Counts
	if counts.MaintenanceRecords != 2 || counts.Parts != 1 || counts.Projects != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestGetVehicleDetailSortsRecordsByDate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seedVehicle(t, s)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, s, v.ID, base)
	latest := seedRecord(t, s, v.ID, base.AddDate(0, 6, 0))
	seedRecord(t, s, v.ID, base.AddDate(0, 3, 0))

	detail, found, err := s.GetVehicleDetail(ctx, v.ID)
	if err != nil || !found {
		t.Fatalf("get detail: found=%v err=%v", found, err)
	}
	if len(detail.MaintenanceRecords) != 3 {
		t.Fatalf("records = %d, want 3", len(detail.MaintenanceRecords))
	}
	if detail.MaintenanceRecords[0].ID != latest.ID {
		t.Fatal("expected most recent record first")
	}
}

func TestShopListSortedByName(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"Zeke's", "Al's", "Mo's"} {
		if _, err := s.CreateShop(ctx, domain.Shop{Name: name}); err != nil {
			t.Fatalf("create shop: %v", err)
		}
	}
	shops, err := s.ListShops(ctx)
	if err != nil {
		t.Fatalf("list shops: %v", err)
	}
	if len(shops) != 3 || shops[0].Name != "Al's" || shops[2].Name != "Zeke's" {
		t.Fatalf("unexpected shop order: %+v", shops)
	}
}
