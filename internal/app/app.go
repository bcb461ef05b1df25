// Package app holds the core of the service: shaping loosely-typed payloads
// into persistence records, CRUD orchestration against the store, and the
// dashboard aggregation.
package app

import (
	"context"
	"fmt"
	"time"

	"garagelog/internal/storage"
	"garagelog/internal/store"
	"garagelog/internal/util"
	"garagelog/pkg/domain"
)

// Publisher receives entity-change notifications after successful mutations.
type Publisher interface {
	EntityChanged(ctx context.Context, entity, action, id string) error
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL    string
	Store          store.Store
	Files          storage.ObjectStore
	Events         Publisher
	DocumentURLTTL time.Duration
}

// App wires the store, object storage and event publishing together.
type App struct {
	store  store.Store
	files  storage.ObjectStore
	events Publisher
	urlTTL time.Duration
}

// New constructs the application. A Store in the config takes precedence
// over DatabaseURL; Files and Events are optional.
func New(cfg Config) (*App, error) {
	if cfg.DocumentURLTTL <= 0 {
		cfg.DocumentURLTTL = 15 * time.Minute
	}
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		gs, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		dataStore = gs
	}
	return &App{
		store:  dataStore,
		files:  cfg.Files,
		events: cfg.Events,
		urlTTL: cfg.DocumentURLTTL,
	}, nil
}

// publish notifies listeners about a mutation. Publish failures are logged
// and never fail the request that caused them.
func (a *App) publish(ctx context.Context, entity, action, id string) {
	if a.events == nil {
		return
	}
	if err := a.events.EntityChanged(ctx, entity, action, id); err != nil {
		util.LoggerFromContext(ctx).Warn("event publish failed",
			"entity", entity, "action", action, "entity_id", id, "err", err)
	}
}

// ListVehicles returns all vehicles newest first with relation counts.
func (a *App) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := a.store.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle returns the hierarchical detail view for one vehicle.
func (a *App) GetVehicle(ctx context.Context, id string) (domain.VehicleDetail, error) {
	detail, found, err := a.store.GetVehicleDetail(ctx, id)
	if err != nil {
		return domain.VehicleDetail{}, fmt.Errorf("get vehicle: %w", err)
	}
	if !found {
		return domain.VehicleDetail{}, ErrNotFound
	}
	return detail, nil
}

// CreateVehicle shapes and stores a new vehicle.
func (a *App) CreateVehicle(ctx context.Context, p VehiclePayload) (domain.Vehicle, error) {
	v, err := shapeVehicle(p)
	if err != nil {
		return domain.Vehicle{}, err
	}
	created, err := a.store.CreateVehicle(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	a.publish(ctx, "vehicle", "created", created.ID)
	return created, nil
}

// UpdateVehicle shapes the payload and replaces the stored record.
func (a *App) UpdateVehicle(ctx context.Context, id string, p VehiclePayload) (domain.Vehicle, error) {
	v, err := shapeVehicle(p)
	if err != nil {
		return domain.Vehicle{}, err
	}
	updated, found, err := a.store.UpdateVehicle(ctx, id, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	if !found {
		return domain.Vehicle{}, ErrNotFound
	}
	a.publish(ctx, "vehicle", "updated", id)
	return updated, nil
}

// DeleteVehicle removes the vehicle and everything it owns. Document
// bodies are removed from the object store before the rows cascade away.
func (a *App) DeleteVehicle(ctx context.Context, id string) error {
	if a.files != nil {
		docs, err := a.store.ListVehicleDocuments(ctx, id)
		if err != nil {
			return fmt.Errorf("list vehicle documents: %w", err)
		}
		for _, doc := range docs {
			if err := a.files.Delete(ctx, doc.StorageKey); err != nil {
				util.LoggerFromContext(ctx).Warn("object delete failed",
					"document_id", doc.ID, "key", doc.StorageKey, "err", err)
			}
		}
	}
	found, err := a.store.DeleteVehicle(ctx, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "vehicle", "deleted", id)
	return nil
}

// ListShops returns all shops sorted by name.
func (a *App) ListShops(ctx context.Context) ([]domain.Shop, error) {
	shops, err := a.store.ListShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return shops, nil
}

// GetShop returns one shop.
func (a *App) GetShop(ctx context.Context, id string) (domain.Shop, error) {
	shop, found, err := a.store.GetShop(ctx, id)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("get shop: %w", err)
	}
	if !found {
		return domain.Shop{}, ErrNotFound
	}
	return shop, nil
}

// CreateShop shapes and stores a new shop.
func (a *App) CreateShop(ctx context.Context, p ShopPayload) (domain.Shop, error) {
	shop, err := shapeShop(p)
	if err != nil {
		return domain.Shop{}, err
	}
	created, err := a.store.CreateShop(ctx, shop)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("create shop: %w", err)
	}
	a.publish(ctx, "shop", "created", created.ID)
	return created, nil
}

// UpdateShop shapes the payload and replaces the stored record.
func (a *App) UpdateShop(ctx context.Context, id string, p ShopPayload) (domain.Shop, error) {
	shop, err := shapeShop(p)
	if err != nil {
		return domain.Shop{}, err
	}
	updated, found, err := a.store.UpdateShop(ctx, id, shop)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("update shop: %w", err)
	}
	if !found {
		return domain.Shop{}, ErrNotFound
	}
	a.publish(ctx, "shop", "updated", id)
	return updated, nil
}

// DeleteShop removes a shop. Its maintenance records keep a null shop.
func (a *App) DeleteShop(ctx context.Context, id string) error {
	found, err := a.store.DeleteShop(ctx, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "shop", "deleted", id)
	return nil
}
