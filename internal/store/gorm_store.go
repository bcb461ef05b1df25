package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"garagelog/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations. Foreign keys carry
// ON DELETE rules, so the vehicle cascade is enforced by the database.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&VehicleModel{},
		&ShopModel{},
		&MaintenanceRecordModel{},
		&PartModel{},
		&ProjectModel{},
		&NoteModel{},
		&DocumentModel{},
		&PartUsageModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// NewGormStoreWithDB wraps an already-open gorm connection (used by tests
// and by callers that manage the pool themselves).
func NewGormStoreWithDB(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

type countRow struct {
	Key string
	N   int
}

// groupCount returns COUNT(*) grouped by the given FK column.
func (s *GormStore) groupCount(ctx context.Context, model any, column string) (map[string]int, error) {
	var rows []countRow
	err := s.db.WithContext(ctx).
		Model(model).
		Select(column+" AS key, COUNT(*) AS n").
		Where(column+" IS NOT NULL").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Key] = row.N
	}
	return out, nil
}

// ListVehicles returns all vehicles newest first, with relation counts.
func (s *GormStore) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var models []VehicleModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	recordCounts, err := s.groupCount(ctx, &MaintenanceRecordModel{}, "vehicle_id")
	if err != nil {
		return nil, err
	}
	projectCounts, err := s.groupCount(ctx, &ProjectModel{}, "vehicle_id")
	if err != nil {
		return nil, err
	}
	partCounts, err := s.groupCount(ctx, &PartModel{}, "vehicle_id")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Vehicle, 0, len(models))
	for _, m := range models {
		v := vehicleFromModel(m)
		v.Counts = &domain.VehicleCounts{
			MaintenanceRecords: recordCounts[m.ID],
			Projects:           projectCounts[m.ID],
			Parts:              partCounts[m.ID],
		}
		out = append(out, v)
	}
	return out, nil
}

// GetVehicle returns a vehicle by ID.
func (s *GormStore) GetVehicle(ctx context.Context, id string) (domain.Vehicle, bool, error) {
	var m VehicleModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Vehicle{}, false, nil
		}
		return domain.Vehicle{}, false, err
	}
	return vehicleFromModel(m), true, nil
}

// GetVehicleDetail loads a vehicle with each owned collection eagerly,
// every collection independently sorted for the detail view.
func (s *GormStore) GetVehicleDetail(ctx context.Context, id string) (domain.VehicleDetail, bool, error) {
	vehicle, found, err := s.GetVehicle(ctx, id)
	if err != nil || !found {
		return domain.VehicleDetail{}, found, err
	}
	detail := domain.VehicleDetail{Vehicle: vehicle}

	var records []MaintenanceRecordModel
	if err := s.db.WithContext(ctx).
		Preload("Shop").
		Where("vehicle_id = ?", id).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return domain.VehicleDetail{}, false, err
	}
	detail.MaintenanceRecords = make([]domain.MaintenanceRecord, 0, len(records))
	for _, m := range records {
		rec := maintenanceFromModel(m)
		if m.Shop != nil {
			shop := shopFromModel(*m.Shop)
			rec.Shop = &shop
		}
		detail.MaintenanceRecords = append(detail.MaintenanceRecords, rec)
	}

	var parts []PartModel
	if err := s.db.WithContext(ctx).
		Where("vehicle_id = ?", id).
		Order("created_at DESC").
		Find(&parts).Error; err != nil {
		return domain.VehicleDetail{}, false, err
	}
	detail.Parts = make([]domain.Part, 0, len(parts))
	for _, m := range parts {
		detail.Parts = append(detail.Parts, partFromModel(m))
	}

	projects, err := s.ListProjects(ctx, id)
	if err != nil {
		return domain.VehicleDetail{}, false, err
	}
	detail.Projects = projects

	notes, err := s.ListVehicleNotes(ctx, id)
	if err != nil {
		return domain.VehicleDetail{}, false, err
	}
	detail.Notes = notes

	return detail, true, nil
}

// CreateVehicle stores a new vehicle.
func (s *GormStore) CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
	model := vehicleToModel(v)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Vehicle{}, err
	}
	return vehicleFromModel(model), nil
}

// UpdateVehicle replaces all mutable fields of a vehicle.
func (s *GormStore) UpdateVehicle(ctx context.Context, id string, v domain.Vehicle) (domain.Vehicle, bool, error) {
	existing, found, err := s.GetVehicle(ctx, id)
	if err != nil || !found {
		return domain.Vehicle{}, found, err
	}
	v.ID = existing.ID
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	model := vehicleToModel(v)
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return domain.Vehicle{}, false, err
	}
	return vehicleFromModel(model), true, nil
}

// DeleteVehicle removes the vehicle; dependents go with it via FK cascade.
func (s *GormStore) DeleteVehicle(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&VehicleModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) maintenanceCounts(ctx context.Context) (notes, docs map[string]int, err error) {
	notes, err = s.groupCount(ctx, &NoteModel{}, "maintenance_record_id")
	if err != nil {
		return nil, nil, err
	}
	docs, err = s.groupCount(ctx, &DocumentModel{}, "maintenance_record_id")
	if err != nil {
		return nil, nil, err
	}
	return notes, docs, nil
}

func (s *GormStore) maintenanceFromModelEager(m MaintenanceRecordModel, noteCounts, docCounts map[string]int) domain.MaintenanceRecord {
	rec := maintenanceFromModel(m)
	if m.Vehicle.ID != "" {
		summary := vehicleFromModel(m.Vehicle).Summary()
		rec.Vehicle = &summary
	}
	if m.Shop != nil {
		shop := shopFromModel(*m.Shop)
		rec.Shop = &shop
	}
	for _, u := range m.Parts {
		usage := usageFromModel(u)
		if u.Part.ID != "" {
			part := partFromModel(u.Part)
			usage.Part = &part
		}
		rec.Parts = append(rec.Parts, usage)
	}
	rec.Counts = &domain.MaintenanceCounts{
		Notes:     noteCounts[m.ID],
		Documents: docCounts[m.ID],
	}
	return rec
}

// ListMaintenance returns maintenance records newest first, with the vehicle
// summary, shop, attached parts and attachment counts loaded eagerly.
func (s *GormStore) ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	q := s.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Shop").
		Preload("Parts.Part")
	if filter.VehicleID != "" {
		q = q.Where("vehicle_id = ?", filter.VehicleID)
	}
	var models []MaintenanceRecordModel
	if err := q.Order("date DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	noteCounts, docCounts, err := s.maintenanceCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MaintenanceRecord, 0, len(models))
	for _, m := range models {
		out = append(out, s.maintenanceFromModelEager(m, noteCounts, docCounts))
	}
	return out, nil
}

// GetMaintenance returns one maintenance record with relations loaded.
func (s *GormStore) GetMaintenance(ctx context.Context, id string) (domain.MaintenanceRecord, bool, error) {
	var m MaintenanceRecordModel
	err := s.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Shop").
		Preload("Parts.Part").
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MaintenanceRecord{}, false, nil
		}
		return domain.MaintenanceRecord{}, false, err
	}
	noteCounts, docCounts, err := s.maintenanceCounts(ctx)
	if err != nil {
		return domain.MaintenanceRecord{}, false, err
	}
	return s.maintenanceFromModelEager(m, noteCounts, docCounts), true, nil
}

// CreateMaintenance stores a new maintenance record.
func (s *GormStore) CreateMaintenance(ctx context.Context, rec domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	model := maintenanceToModel(rec)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.MaintenanceRecord{}, err
	}
	created, _, err := s.GetMaintenance(ctx, model.ID)
	return created, err
}

// UpdateMaintenance replaces all mutable fields of a maintenance record.
func (s *GormStore) UpdateMaintenance(ctx context.Context, id string, rec domain.MaintenanceRecord) (domain.MaintenanceRecord, bool, error) {
	var existing MaintenanceRecordModel
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MaintenanceRecord{}, false, nil
		}
		return domain.MaintenanceRecord{}, false, err
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	model := maintenanceToModel(rec)
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return domain.MaintenanceRecord{}, false, err
	}
	updated, _, err := s.GetMaintenance(ctx, id)
	if err != nil {
		return domain.MaintenanceRecord{}, false, err
	}
	return updated, true, nil
}

// DeleteMaintenance removes a single record; its vehicle and shop stay.
func (s *GormStore) DeleteMaintenance(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&MaintenanceRecordModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListParts returns parts newest first, filtered by vehicle and category.
func (s *GormStore) ListParts(ctx context.Context, filter PartFilter) ([]domain.Part, error) {
	q := s.db.WithContext(ctx).Preload("Vehicle")
	if filter.VehicleID != "" {
		q = q.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	var models []PartModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	usageCounts, err := s.groupCount(ctx, &PartUsageModel{}, "part_id")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Part, 0, len(models))
	for _, m := range models {
		p := partFromModel(m)
		if m.Vehicle != nil {
			summary := vehicleFromModel(*m.Vehicle).Summary()
			p.Vehicle = &summary
		}
		p.Counts = &domain.PartCounts{Maintenance: usageCounts[m.ID]}
		out = append(out, p)
	}
	return out, nil
}

// GetPart returns a part by ID.
func (s *GormStore) GetPart(ctx context.Context, id string) (domain.Part, bool, error) {
	var m PartModel
	if err := s.db.WithContext(ctx).Preload("Vehicle").First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Part{}, false, nil
		}
		return domain.Part{}, false, err
	}
	p := partFromModel(m)
	if m.Vehicle != nil {
		summary := vehicleFromModel(*m.Vehicle).Summary()
		p.Vehicle = &summary
	}
	return p, true, nil
}

// CreatePart stores a new part.
func (s *GormStore) CreatePart(ctx context.Context, p domain.Part) (domain.Part, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	model := partToModel(p)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Part{}, err
	}
	return partFromModel(model), nil
}

// UpdatePart replaces all mutable fields of a part.
func (s *GormStore) UpdatePart(ctx context.Context, id string, p domain.Part) (domain.Part, bool, error) {
	existing, found, err := s.GetPart(ctx, id)
	if err != nil || !found {
		return domain.Part{}, found, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	model := partToModel(p)
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return domain.Part{}, false, err
	}
	return partFromModel(model), true, nil
}

// DeletePart removes a part.
func (s *GormStore) DeletePart(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&PartModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListShops returns all shops sorted by name, with maintenance counts.
func (s *GormStore) ListShops(ctx context.Context) ([]domain.Shop, error) {
	var models []ShopModel
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	recordCounts, err := s.groupCount(ctx, &MaintenanceRecordModel{}, "shop_id")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Shop, 0, len(models))
	for _, m := range models {
		shop := shopFromModel(m)
		shop.Counts = &domain.ShopCounts{MaintenanceRecords: recordCounts[m.ID]}
		out = append(out, shop)
	}
	return out, nil
}

// GetShop returns a shop by ID.
func (s *GormStore) GetShop(ctx context.Context, id string) (domain.Shop, bool, error) {
	var m ShopModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Shop{}, false, nil
		}
		return domain.Shop{}, false, err
	}
	return shopFromModel(m), true, nil
}

// CreateShop stores a new shop.
func (s *GormStore) CreateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	shop.ID = uuid.NewString()
	shop.CreatedAt = time.Now().UTC()
	shop.UpdatedAt = shop.CreatedAt
	model := shopToModel(shop)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Shop{}, err
	}
	return shopFromModel(model), nil
}

// UpdateShop replaces all mutable fields of a shop.
func (s *GormStore) UpdateShop(ctx context.Context, id string, shop domain.Shop) (domain.Shop, bool, error) {
	existing, found, err := s.GetShop(ctx, id)
	if err != nil || !found {
		return domain.Shop{}, found, err
	}
	shop.ID = existing.ID
	shop.CreatedAt = existing.CreatedAt
	shop.UpdatedAt = time.Now().UTC()
	model := shopToModel(shop)
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return domain.Shop{}, false, err
	}
	return shopFromModel(model), true, nil
}

// DeleteShop removes a shop; its maintenance records keep a null shop.
func (s *GormStore) DeleteShop(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&ShopModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListProjects returns a vehicle's projects newest first.
func (s *GormStore) ListProjects(ctx context.Context, vehicleID string) ([]domain.Project, error) {
	var models []ProjectModel
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(models))
	for _, m := range models {
		out = append(out, projectFromModel(m))
	}
	return out, nil
}

// CreateProject stores a new project.
func (s *GormStore) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	model := projectToModel(p)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Project{}, err
	}
	return projectFromModel(model), nil
}

// DeleteProject removes a project.
func (s *GormStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&ProjectModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) listNotes(ctx context.Context, column, ownerID string) ([]domain.Note, error) {
	var models []NoteModel
	err := s.db.WithContext(ctx).
		Where(column+" = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Note, 0, len(models))
	for _, m := range models {
		out = append(out, noteFromModel(m))
	}
	return out, nil
}

// ListVehicleNotes returns a vehicle's notes newest first.
func (s *GormStore) ListVehicleNotes(ctx context.Context, vehicleID string) ([]domain.Note, error) {
	return s.listNotes(ctx, "vehicle_id", vehicleID)
}

// ListMaintenanceNotes returns a maintenance record's notes newest first.
func (s *GormStore) ListMaintenanceNotes(ctx context.Context, recordID string) ([]domain.Note, error) {
	return s.listNotes(ctx, "maintenance_record_id", recordID)
}

// CreateNote stores a new note.
func (s *GormStore) CreateNote(ctx context.Context, n domain.Note) (domain.Note, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	model := noteToModel(n)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Note{}, err
	}
	return noteFromModel(model), nil
}

// DeleteNote removes a note.
func (s *GormStore) DeleteNote(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&NoteModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListDocuments returns a maintenance record's document metadata newest first.
func (s *GormStore) ListDocuments(ctx context.Context, recordID string) ([]domain.Document, error) {
	var models []DocumentModel
	err := s.db.WithContext(ctx).
		Where("maintenance_record_id = ?", recordID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(models))
	for _, m := range models {
		out = append(out, documentFromModel(m))
	}
	return out, nil
}

// ListVehicleDocuments returns all documents hanging off a vehicle's
// maintenance records, used to clean the object store before a cascade.
func (s *GormStore) ListVehicleDocuments(ctx context.Context, vehicleID string) ([]domain.Document, error) {
	var models []DocumentModel
	err := s.db.WithContext(ctx).
		Joins("JOIN maintenance_records ON maintenance_records.id = documents.maintenance_record_id").
		Where("maintenance_records.vehicle_id = ?", vehicleID).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(models))
	for _, m := range models {
		out = append(out, documentFromModel(m))
	}
	return out, nil
}

// GetDocument returns document metadata by ID.
func (s *GormStore) GetDocument(ctx context.Context, id string) (domain.Document, bool, error) {
	var m DocumentModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Document{}, false, nil
		}
		return domain.Document{}, false, err
	}
	return documentFromModel(m), true, nil
}

// CreateDocument stores document metadata.
func (s *GormStore) CreateDocument(ctx context.Context, d domain.Document) (domain.Document, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	model := documentToModel(d)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Document{}, err
	}
	return documentFromModel(model), nil
}

// DeleteDocument removes document metadata.
func (s *GormStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&DocumentModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AttachPart links a part to a maintenance record.
func (s *GormStore) AttachPart(ctx context.Context, u domain.PartUsage) (domain.PartUsage, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	model := usageToModel(u)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.PartUsage{}, err
	}
	return usageFromModel(model), nil
}

// DetachPart removes a part link from a maintenance record.
func (s *GormStore) DetachPart(ctx context.Context, recordID, partID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("maintenance_record_id = ? AND part_id = ?", recordID, partID).
		Delete(&PartUsageModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
