package store

import (
	"context"

	"garagelog/pkg/domain"
)

// MaintenanceFilter narrows maintenance listings. Zero value means no filter.
type MaintenanceFilter struct {
	VehicleID string
}

// PartFilter narrows part listings. Zero value means no filter.
type PartFilter struct {
	VehicleID string
	Category  string
}

// Store defines persistence operations for vehicles, maintenance records,
// parts, shops and their attachments. Lookups return a found flag instead of
// an error for missing rows; callers map that to their not-found handling.
type Store interface {
	// vehicles
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (domain.Vehicle, bool, error)
	GetVehicleDetail(ctx context.Context, id string) (domain.VehicleDetail, bool, error)
	CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, v domain.Vehicle) (domain.Vehicle, bool, error)
	// DeleteVehicle removes the vehicle and all of its dependents.
	DeleteVehicle(ctx context.Context, id string) (bool, error)

	// maintenance records
	ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]domain.MaintenanceRecord, error)
	GetMaintenance(ctx context.Context, id string) (domain.MaintenanceRecord, bool, error)
	CreateMaintenance(ctx context.Context, rec domain.MaintenanceRecord) (domain.MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, id string, rec domain.MaintenanceRecord) (domain.MaintenanceRecord, bool, error)
	DeleteMaintenance(ctx context.Context, id string) (bool, error)

	// parts
	ListParts(ctx context.Context, filter PartFilter) ([]domain.Part, error)
	GetPart(ctx context.Context, id string) (domain.Part, bool, error)
	CreatePart(ctx context.Context, p domain.Part) (domain.Part, error)
	UpdatePart(ctx context.Context, id string, p domain.Part) (domain.Part, bool, error)
	DeletePart(ctx context.Context, id string) (bool, error)

	// shops
	ListShops(ctx context.Context) ([]domain.Shop, error)
	GetShop(ctx context.Context, id string) (domain.Shop, bool, error)
	CreateShop(ctx context.Context, s domain.Shop) (domain.Shop, error)
	UpdateShop(ctx context.Context, id string, s domain.Shop) (domain.Shop, bool, error)
	DeleteShop(ctx context.Context, id string) (bool, error)

	// projects
	ListProjects(ctx context.Context, vehicleID string) ([]domain.Project, error)
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)

	// notes
	ListVehicleNotes(ctx context.Context, vehicleID string) ([]domain.Note, error)
	ListMaintenanceNotes(ctx context.Context, recordID string) ([]domain.Note, error)
	CreateNote(ctx context.Context, n domain.Note) (domain.Note, error)
	DeleteNote(ctx context.Context, id string) (bool, error)

	// documents (metadata only; file bodies live in the object store)
	ListDocuments(ctx context.Context, recordID string) ([]domain.Document, error)
	ListVehicleDocuments(ctx context.Context, vehicleID string) ([]domain.Document, error)
	GetDocument(ctx context.Context, id string) (domain.Document, bool, error)
	CreateDocument(ctx context.Context, d domain.Document) (domain.Document, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)

	// part usage on maintenance records
	AttachPart(ctx context.Context, u domain.PartUsage) (domain.PartUsage, error)
	DetachPart(ctx context.Context, recordID, partID string) (bool, error)
}
