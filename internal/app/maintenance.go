package app

import (
	"context"
	"fmt"

	"garagelog/internal/store"
	"garagelog/internal/util"
	"garagelog/pkg/domain"
)

// ListMaintenance returns maintenance records newest first, optionally
// filtered to one vehicle.
func (a *App) ListMaintenance(ctx context.Context, vehicleID string) ([]domain.MaintenanceRecord, error) {
	records, err := a.store.ListMaintenance(ctx, store.MaintenanceFilter{VehicleID: vehicleID})
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	return records, nil
}

// GetMaintenance returns one maintenance record with relations.
func (a *App) GetMaintenance(ctx context.Context, id string) (domain.MaintenanceRecord, error) {
	rec, found, err := a.store.GetMaintenance(ctx, id)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("get maintenance: %w", err)
	}
	if !found {
		return domain.MaintenanceRecord{}, ErrNotFound
	}
	return rec, nil
}

// checkMaintenanceRefs verifies the shaped record's references exist, so
// the store never sees a dangling vehicle or shop id.
func (a *App) checkMaintenanceRefs(ctx context.Context, rec domain.MaintenanceRecord) error {
	_, found, err := a.store.GetVehicle(ctx, rec.VehicleID)
	if err != nil {
		return fmt.Errorf("check vehicle: %w", err)
	}
	if !found {
		return invalidField("vehicleId", "unknown vehicle")
	}
	if rec.ShopID != nil {
		_, found, err := a.store.GetShop(ctx, *rec.ShopID)
		if err != nil {
			return fmt.Errorf("check shop: %w", err)
		}
		if !found {
			return invalidField("shopId", "unknown shop")
		}
	}
	return nil
}

// CreateMaintenance shapes, validates references and stores a new record.
func (a *App) CreateMaintenance(ctx context.Context, p MaintenancePayload) (domain.MaintenanceRecord, error) {
	rec, err := shapeMaintenance(p)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if err := a.checkMaintenanceRefs(ctx, rec); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	created, err := a.store.CreateMaintenance(ctx, rec)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("create maintenance: %w", err)
	}
	a.publish(ctx, "maintenance", "created", created.ID)
	return created, nil
}

// UpdateMaintenance shapes the payload and replaces the stored record.
func (a *App) UpdateMaintenance(ctx context.Context, id string, p MaintenancePayload) (domain.MaintenanceRecord, error) {
	rec, err := shapeMaintenance(p)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if err := a.checkMaintenanceRefs(ctx, rec); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	updated, found, err := a.store.UpdateMaintenance(ctx, id, rec)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("update maintenance: %w", err)
	}
	if !found {
		return domain.MaintenanceRecord{}, ErrNotFound
	}
	a.publish(ctx, "maintenance", "updated", id)
	return updated, nil
}

// DeleteMaintenance removes one record and its attachments; the vehicle
// and shop stay untouched. Document bodies go first.
func (a *App) DeleteMaintenance(ctx context.Context, id string) error {
	if a.files != nil {
		docs, err := a.store.ListDocuments(ctx, id)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		for _, doc := range docs {
			if err := a.files.Delete(ctx, doc.StorageKey); err != nil {
				util.LoggerFromContext(ctx).Warn("object delete failed",
					"document_id", doc.ID, "key", doc.StorageKey, "err", err)
			}
		}
	}
	found, err := a.store.DeleteMaintenance(ctx, id)
	if err != nil {
		return fmt.Errorf("delete maintenance: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "maintenance", "deleted", id)
	return nil
}

// ListParts returns parts newest first, filtered by vehicle and category.
func (a *App) ListParts(ctx context.Context, vehicleID, category string) ([]domain.Part, error) {
	parts, err := a.store.ListParts(ctx, store.PartFilter{VehicleID: vehicleID, Category: category})
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	return parts, nil
}

// GetPart returns one part.
func (a *App) GetPart(ctx context.Context, id string) (domain.Part, error) {
	part, found, err := a.store.GetPart(ctx, id)
	if err != nil {
		return domain.Part{}, fmt.Errorf("get part: %w", err)
	}
	if !found {
		return domain.Part{}, ErrNotFound
	}
	return part, nil
}

func (a *App) checkPartRefs(ctx context.Context, part domain.Part) error {
	if part.VehicleID == nil {
		return nil
	}
	_, found, err := a.store.GetVehicle(ctx, *part.VehicleID)
	if err != nil {
		return fmt.Errorf("check vehicle: %w", err)
	}
	if !found {
		return invalidField("vehicleId", "unknown vehicle")
	}
	return nil
}

// CreatePart shapes, validates references and stores a new part.
func (a *App) CreatePart(ctx context.Context, p PartPayload) (domain.Part, error) {
	part, err := shapePart(p)
	if err != nil {
		return domain.Part{}, err
	}
	if err := a.checkPartRefs(ctx, part); err != nil {
		return domain.Part{}, err
	}
	created, err := a.store.CreatePart(ctx, part)
	if err != nil {
		return domain.Part{}, fmt.Errorf("create part: %w", err)
	}
	a.publish(ctx, "part", "created", created.ID)
	return created, nil
}

// UpdatePart shapes the payload and replaces the stored record.
func (a *App) UpdatePart(ctx context.Context, id string, p PartPayload) (domain.Part, error) {
	part, err := shapePart(p)
	if err != nil {
		return domain.Part{}, err
	}
	if err := a.checkPartRefs(ctx, part); err != nil {
		return domain.Part{}, err
	}
	updated, found, err := a.store.UpdatePart(ctx, id, part)
	if err != nil {
		return domain.Part{}, fmt.Errorf("update part: %w", err)
	}
	if !found {
		return domain.Part{}, ErrNotFound
	}
	a.publish(ctx, "part", "updated", id)
	return updated, nil
}

// DeletePart removes a part and its usage links.
func (a *App) DeletePart(ctx context.Context, id string) error {
	found, err := a.store.DeletePart(ctx, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "part", "deleted", id)
	return nil
}
