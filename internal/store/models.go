package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"garagelog/pkg/domain"
)

// GORM models used for persistence. Conversions to and from pkg/domain keep
// the storage schema out of the rest of the code.

type VehicleModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Make         string    `gorm:"size:64;not null"`
	Model        string    `gorm:"size:64;not null"`
	Year         int       `gorm:"not null"`
	Type         string    `gorm:"size:16;not null"`
	VIN          *string   `gorm:"size:64"`
	LicensePlate *string   `gorm:"size:32"`
	Color        *string   `gorm:"size:32"`
	Odometer     *int
	PurchasedAt  *time.Time
	SoldAt       *time.Time
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (VehicleModel) TableName() string { return "vehicles" }

type MaintenanceRecordModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	VehicleID   string    `gorm:"size:36;not null;index"`
	Type        string    `gorm:"size:32;not null"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	Date        time.Time `gorm:"not null;index"`
	Odometer    *int
	Cost        *float64
	LaborHours  *float64
	ShopID      *string   `gorm:"size:36;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	Vehicle VehicleModel     `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	Shop    *ShopModel       `gorm:"foreignKey:ShopID;constraint:OnDelete:SET NULL"`
	Parts   []PartUsageModel `gorm:"foreignKey:MaintenanceRecordID"`
}

func (MaintenanceRecordModel) TableName() string { return "maintenance_records" }

type PartModel struct {
	ID           string   `gorm:"primaryKey;size:36"`
	Name         string   `gorm:"size:255;not null"`
	PartNumber   *string  `gorm:"size:64"`
	Manufacturer *string  `gorm:"size:128"`
	Description  *string  `gorm:"type:text"`
	Category     *string  `gorm:"size:64;index"`
	Cost         *float64
	Quantity     int      `gorm:"not null;default:1"`
	MinStock     *int
	Location     *string  `gorm:"size:128"`
	PurchasedAt  *time.Time
	VehicleID    *string   `gorm:"size:36;index"`
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`

	Vehicle *VehicleModel `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

func (PartModel) TableName() string { return "parts" }

type ShopModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:255;not null;index"`
	Address     *string   `gorm:"type:text"`
	Phone       *string   `gorm:"size:32"`
	Email       *string   `gorm:"size:255"`
	Website     *string   `gorm:"size:255"`
	Specialties *string   `gorm:"type:text"`
	Notes       *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (ShopModel) TableName() string { return "shops" }

type ProjectModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	VehicleID   string    `gorm:"size:36;not null;index"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	Status      string    `gorm:"size:16;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`

	Vehicle VehicleModel `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

func (ProjectModel) TableName() string { return "projects" }

type NoteModel struct {
	ID                  string    `gorm:"primaryKey;size:36"`
	VehicleID           *string   `gorm:"size:36;index"`
	MaintenanceRecordID *string   `gorm:"size:36;index"`
	Content             string    `gorm:"type:text;not null"`
	CreatedAt           time.Time `gorm:"not null;index"`

	Vehicle           *VehicleModel           `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	MaintenanceRecord *MaintenanceRecordModel `gorm:"foreignKey:MaintenanceRecordID;constraint:OnDelete:CASCADE"`
}

func (NoteModel) TableName() string { return "notes" }

type DocumentModel struct {
	ID                  string         `gorm:"primaryKey;size:36"`
	MaintenanceRecordID string         `gorm:"size:36;not null;index"`
	Filename            string         `gorm:"size:255;not null"`
	ContentType         string         `gorm:"size:128;not null"`
	SizeBytes           int64          `gorm:"not null"`
	StorageKey          string         `gorm:"size:255;not null"`
	Metadata            datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time      `gorm:"not null;index"`

	MaintenanceRecord MaintenanceRecordModel `gorm:"foreignKey:MaintenanceRecordID;constraint:OnDelete:CASCADE"`
}

func (DocumentModel) TableName() string { return "documents" }

type PartUsageModel struct {
	ID                  string    `gorm:"primaryKey;size:36"`
	MaintenanceRecordID string    `gorm:"size:36;not null;index;uniqueIndex:idx_usage_pair"`
	PartID              string    `gorm:"size:36;not null;index;uniqueIndex:idx_usage_pair"`
	Quantity            int       `gorm:"not null;default:1"`
	CreatedAt           time.Time `gorm:"not null"`

	MaintenanceRecord MaintenanceRecordModel `gorm:"foreignKey:MaintenanceRecordID;constraint:OnDelete:CASCADE"`
	Part              PartModel              `gorm:"foreignKey:PartID;constraint:OnDelete:CASCADE"`
}

func (PartUsageModel) TableName() string { return "maintenance_parts" }

func vehicleToModel(v domain.Vehicle) VehicleModel {
	return VehicleModel{
		ID:           v.ID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Type:         string(v.Type),
		VIN:          v.VIN,
		LicensePlate: v.LicensePlate,
		Color:        v.Color,
		Odometer:     v.Odometer,
		PurchasedAt:  v.PurchasedAt,
		SoldAt:       v.SoldAt,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func vehicleFromModel(m VehicleModel) domain.Vehicle {
	return domain.Vehicle{
		ID:           m.ID,
		Make:         m.Make,
		Model:        m.Model,
		Year:         m.Year,
		Type:         domain.VehicleType(m.Type),
		VIN:          m.VIN,
		LicensePlate: m.LicensePlate,
		Color:        m.Color,
		Odometer:     m.Odometer,
		PurchasedAt:  m.PurchasedAt,
		SoldAt:       m.SoldAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func maintenanceToModel(r domain.MaintenanceRecord) MaintenanceRecordModel {
	return MaintenanceRecordModel{
		ID:          r.ID,
		VehicleID:   r.VehicleID,
		Type:        string(r.Type),
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Odometer:    r.Odometer,
		Cost:        r.Cost,
		LaborHours:  r.LaborHours,
		ShopID:      r.ShopID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func maintenanceFromModel(m MaintenanceRecordModel) domain.MaintenanceRecord {
	return domain.MaintenanceRecord{
		ID:          m.ID,
		VehicleID:   m.VehicleID,
		Type:        domain.MaintenanceType(m.Type),
		Title:       m.Title,
		Description: m.Description,
		Date:        m.Date,
		Odometer:    m.Odometer,
		Cost:        m.Cost,
		LaborHours:  m.LaborHours,
		ShopID:      m.ShopID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func partToModel(p domain.Part) PartModel {
	return PartModel{
		ID:           p.ID,
		Name:         p.Name,
		PartNumber:   p.PartNumber,
		Manufacturer: p.Manufacturer,
		Description:  p.Description,
		Category:     p.Category,
		Cost:         p.Cost,
		Quantity:     p.Quantity,
		MinStock:     p.MinStock,
		Location:     p.Location,
		PurchasedAt:  p.PurchasedAt,
		VehicleID:    p.VehicleID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func partFromModel(m PartModel) domain.Part {
	return domain.Part{
		ID:           m.ID,
		Name:         m.Name,
		PartNumber:   m.PartNumber,
		Manufacturer: m.Manufacturer,
		Description:  m.Description,
		Category:     m.Category,
		Cost:         m.Cost,
		Quantity:     m.Quantity,
		MinStock:     m.MinStock,
		Location:     m.Location,
		PurchasedAt:  m.PurchasedAt,
		VehicleID:    m.VehicleID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func shopToModel(s domain.Shop) ShopModel {
	return ShopModel{
		ID:          s.ID,
		Name:        s.Name,
		Address:     s.Address,
		Phone:       s.Phone,
		Email:       s.Email,
		Website:     s.Website,
		Specialties: s.Specialties,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func shopFromModel(m ShopModel) domain.Shop {
	return domain.Shop{
		ID:          m.ID,
		Name:        m.Name,
		Address:     m.Address,
		Phone:       m.Phone,
		Email:       m.Email,
		Website:     m.Website,
		Specialties: m.Specialties,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func projectToModel(p domain.Project) ProjectModel {
	return ProjectModel{
		ID:          p.ID,
		VehicleID:   p.VehicleID,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func projectFromModel(m ProjectModel) domain.Project {
	return domain.Project{
		ID:          m.ID,
		VehicleID:   m.VehicleID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.ProjectStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func noteToModel(n domain.Note) NoteModel {
	return NoteModel{
		ID:                  n.ID,
		VehicleID:           n.VehicleID,
		MaintenanceRecordID: n.MaintenanceRecordID,
		Content:             n.Content,
		CreatedAt:           n.CreatedAt,
	}
}

func noteFromModel(m NoteModel) domain.Note {
	return domain.Note{
		ID:                  m.ID,
		VehicleID:           m.VehicleID,
		MaintenanceRecordID: m.MaintenanceRecordID,
		Content:             m.Content,
		CreatedAt:           m.CreatedAt,
	}
}

func documentToModel(d domain.Document) DocumentModel {
	model := DocumentModel{
		ID:                  d.ID,
		MaintenanceRecordID: d.MaintenanceRecordID,
		Filename:            d.Filename,
		ContentType:         d.ContentType,
		SizeBytes:           d.SizeBytes,
		StorageKey:          d.StorageKey,
		CreatedAt:           d.CreatedAt,
	}
	if len(d.Metadata) > 0 {
		if raw, err := json.Marshal(d.Metadata); err == nil {
			model.Metadata = datatypes.JSON(raw)
		}
	}
	return model
}

func documentFromModel(m DocumentModel) domain.Document {
	doc := domain.Document{
		ID:                  m.ID,
		MaintenanceRecordID: m.MaintenanceRecordID,
		Filename:            m.Filename,
		ContentType:         m.ContentType,
		SizeBytes:           m.SizeBytes,
		StorageKey:          m.StorageKey,
		CreatedAt:           m.CreatedAt,
	}
	if len(m.Metadata) > 0 {
		meta := map[string]string{}
		if err := json.Unmarshal(m.Metadata, &meta); err == nil {
			doc.Metadata = meta
		}
	}
	return doc
}

func usageToModel(u domain.PartUsage) PartUsageModel {
	return PartUsageModel{
		ID:                  u.ID,
		MaintenanceRecordID: u.MaintenanceRecordID,
		PartID:              u.PartID,
		Quantity:            u.Quantity,
		CreatedAt:           u.CreatedAt,
	}
}

func usageFromModel(m PartUsageModel) domain.PartUsage {
	return domain.PartUsage{
		ID:                  m.ID,
		MaintenanceRecordID: m.MaintenanceRecordID,
		PartID:              m.PartID,
		Quantity:            m.Quantity,
		CreatedAt:           m.CreatedAt,
	}
}
