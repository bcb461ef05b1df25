package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"garagelog/internal/store"
	"garagelog/pkg/domain"
)

const upcomingLimit = 5

// DashboardStats are derived on every request from the full collections;
// nothing here is persisted.
type DashboardStats struct {
	TotalVehicles       int                        `json:"totalVehicles"`
	TotalMaintenance    int                        `json:"totalMaintenance"`
	TotalParts          int                        `json:"totalParts"`
	TotalShops          int                        `json:"totalShops"`
	TotalSpent          float64                    `json:"totalSpent"`
	UpcomingMaintenance []domain.MaintenanceRecord `json:"upcomingMaintenance"`
}

// Dashboard fetches the four collections concurrently and derives the
// dashboard aggregates from the snapshots. A failure in any fetch aborts
// the whole aggregation; there is no partial dashboard.
func (a *App) Dashboard(ctx context.Context) (DashboardStats, error) {
	var (
		vehicles []domain.Vehicle
		records  []domain.MaintenanceRecord
		parts    []domain.Part
		shops    []domain.Shop
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vehicles, err = a.store.ListVehicles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = a.store.ListMaintenance(gctx, store.MaintenanceFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		parts, err = a.store.ListParts(gctx, store.PartFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		shops, err = a.store.ListShops(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard fetch: %w", err)
	}
	// The time boundary is captured once after the join so filter and
	// sort see one consistent "now" for this request.
	return computeStats(vehicles, records, parts, shops, time.Now().UTC()), nil
}

// computeStats is a pure function of the snapshotted collections and the
// given instant; it never mutates its inputs.
func computeStats(vehicles []domain.Vehicle, records []domain.MaintenanceRecord, parts []domain.Part, shops []domain.Shop, now time.Time) DashboardStats {
	return DashboardStats{
		TotalVehicles:       len(vehicles),
		TotalMaintenance:    len(records),
		TotalParts:          len(parts),
		TotalShops:          len(shops),
		TotalSpent:          totalSpent(records),
		UpcomingMaintenance: upcoming(records, now, upcomingLimit),
	}
}

// totalSpent sums record costs, treating a missing cost as zero.
func totalSpent(records []domain.MaintenanceRecord) float64 {
	var sum float64
	for _, rec := range records {
		if rec.Cost != nil {
			sum += *rec.Cost
		}
	}
	return sum
}

// upcoming returns the records dated strictly after now, earliest first,
// capped at limit. Ties keep their input order.
func upcoming(records []domain.MaintenanceRecord, now time.Time, limit int) []domain.MaintenanceRecord {
	out := make([]domain.MaintenanceRecord, 0, limit)
	for _, rec := range records {
		if rec.Date.After(now) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
