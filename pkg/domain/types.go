package domain

import "time"

// VehicleType classifies what kind of vehicle a record describes.
type VehicleType string

const (
	VehicleCar        VehicleType = "CAR"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
	VehicleBoat       VehicleType = "BOAT"
)

// ValidVehicleType reports whether t is one of the declared vehicle types.
func ValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleCar, VehicleMotorcycle, VehicleBoat:
		return true
	}
	return false
}

// MaintenanceType is the service category of a maintenance record.
type MaintenanceType string

const (
	MaintenanceOilChange         MaintenanceType = "OIL_CHANGE"
	MaintenanceTireRotation      MaintenanceType = "TIRE_ROTATION"
	MaintenanceBrakeService      MaintenanceType = "BRAKE_SERVICE"
	MaintenanceFluidChange       MaintenanceType = "FLUID_CHANGE"
	MaintenanceFilterReplacement MaintenanceType = "FILTER_REPLACEMENT"
	MaintenanceInspection        MaintenanceType = "INSPECTION"
	MaintenanceRepair            MaintenanceType = "REPAIR"
	MaintenanceUpgrade           MaintenanceType = "UPGRADE"
	MaintenanceOther             MaintenanceType = "OTHER"
)

// ValidMaintenanceType reports whether t is a declared service category.
func ValidMaintenanceType(t MaintenanceType) bool {
	switch t {
	case MaintenanceOilChange, MaintenanceTireRotation, MaintenanceBrakeService,
		MaintenanceFluidChange, MaintenanceFilterReplacement, MaintenanceInspection,
		MaintenanceRepair, MaintenanceUpgrade, MaintenanceOther:
		return true
	}
	return false
}

// ProjectStatus tracks the lifecycle of a vehicle project.
type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "PLANNED"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

// Vehicle is a tracked vehicle. Optional fields are pointers so the JSON
// representation carries explicit nulls for unset values.
type Vehicle struct {
	ID           string      `json:"id"`
	Make         string      `json:"make"`
	Model        string      `json:"model"`
	Year         int         `json:"year"`
	Type         VehicleType `json:"type"`
	VIN          *string     `json:"vin"`
	LicensePlate *string     `json:"licensePlate"`
	Color        *string     `json:"color"`
	Odometer     *int        `json:"odometer"`
	PurchasedAt  *time.Time  `json:"purchasedAt"`
	SoldAt       *time.Time  `json:"soldAt"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	Counts *VehicleCounts `json:"_count,omitempty"`
}

// VehicleCounts carries reverse-relation counts for vehicle list views.
type VehicleCounts struct {
	MaintenanceRecords int `json:"maintenanceRecords"`
	Projects           int `json:"projects"`
	Parts              int `json:"parts"`
}

// VehicleSummary is the compact vehicle shape embedded in related records.
type VehicleSummary struct {
	ID    string      `json:"id"`
	Make  string      `json:"make"`
	Model string      `json:"model"`
	Year  int         `json:"year"`
	Type  VehicleType `json:"type"`
}

// Summary projects a vehicle down to the embedded shape.
func (v Vehicle) Summary() VehicleSummary {
	return VehicleSummary{ID: v.ID, Make: v.Make, Model: v.Model, Year: v.Year, Type: v.Type}
}

// MaintenanceRecord is one service event performed on a vehicle.
type MaintenanceRecord struct {
	ID          string          `json:"id"`
	VehicleID   string          `json:"vehicleId"`
	Type        MaintenanceType `json:"type"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Date        time.Time       `json:"date"`
	Odometer    *int            `json:"odometer"`
	Cost        *float64        `json:"cost"`
	LaborHours  *float64        `json:"laborHours"`
	ShopID      *string         `json:"shopId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Vehicle *VehicleSummary    `json:"vehicle,omitempty"`
	Shop    *Shop              `json:"shop,omitempty"`
	Parts   []PartUsage        `json:"parts,omitempty"`
	Counts  *MaintenanceCounts `json:"_count,omitempty"`
}

// MaintenanceCounts carries attachment counts for maintenance list views.
type MaintenanceCounts struct {
	Notes     int `json:"notes"`
	Documents int `json:"documents"`
}

// Part is an inventory item, optionally tied to a single vehicle.
type Part struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	PartNumber   *string    `json:"partNumber"`
	Manufacturer *string    `json:"manufacturer"`
	Description  *string    `json:"description"`
	Category     *string    `json:"category"`
	Cost         *float64   `json:"cost"`
	Quantity     int        `json:"quantity"`
	MinStock     *int       `json:"minStock"`
	Location     *string    `json:"location"`
	PurchasedAt  *time.Time `json:"purchasedAt"`
	VehicleID    *string    `json:"vehicleId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Vehicle *VehicleSummary `json:"vehicle,omitempty"`
	Counts  *PartCounts     `json:"_count,omitempty"`
}

// PartCounts carries usage counts for part list views.
type PartCounts struct {
	Maintenance int `json:"maintenance"`
}

// PartUsage links an inventory part to a maintenance record.
type PartUsage struct {
	ID                  string    `json:"id"`
	MaintenanceRecordID string    `json:"maintenanceRecordId"`
	PartID              string    `json:"partId"`
	Quantity            int       `json:"quantity"`
	CreatedAt           time.Time `json:"createdAt"`

	Part *Part `json:"part,omitempty"`
}

// Shop is a service shop referenced by maintenance records.
type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Website     *string   `json:"website"`
	Specialties *string   `json:"specialties"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Counts *ShopCounts `json:"_count,omitempty"`
}

// ShopCounts carries reverse-relation counts for shop list views.
type ShopCounts struct {
	MaintenanceRecords int `json:"maintenanceRecords"`
}

// Project is a longer-running piece of work on a vehicle.
type Project struct {
	ID          string        `json:"id"`
	VehicleID   string        `json:"vehicleId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Note is free-form text attached to a vehicle or a maintenance record.
// Exactly one of VehicleID and MaintenanceRecordID is set.
type Note struct {
	ID                  string    `json:"id"`
	VehicleID           *string   `json:"vehicleId"`
	MaintenanceRecordID *string   `json:"maintenanceRecordId"`
	Content             string    `json:"content"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Document is metadata for a file attached to a maintenance record.
// The file body lives in the object store under StorageKey.
type Document struct {
	ID                  string            `json:"id"`
	MaintenanceRecordID string            `json:"maintenanceRecordId"`
	Filename            string            `json:"filename"`
	ContentType         string            `json:"contentType"`
	SizeBytes           int64             `json:"sizeBytes"`
	StorageKey          string            `json:"-"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
}

// VehicleDetail is the hierarchical view for a single vehicle page:
// the vehicle plus each owned collection, independently sorted.
type VehicleDetail struct {
	Vehicle
	MaintenanceRecords []MaintenanceRecord `json:"maintenanceRecords"`
	Parts              []Part              `json:"parts"`
	Projects           []Project           `json:"projects"`
	Notes              []Note              `json:"notes"`
}
