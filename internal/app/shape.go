package app

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"garagelog/pkg/domain"
)

// Payload fields arrive from HTML forms, so every scalar may be a string
// ("2500", "75.50", "2024-01-15"), a native JSON number, or absent. rawValue
// accepts any of those and keeps the textual form for shaping.
type rawValue struct {
	text string
	set  bool
}

func (v *rawValue) UnmarshalJSON(data []byte) error {
	v.set = true
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.text = s
		return nil
	}
	// Numbers and booleans keep their literal form.
	v.text = string(data)
	return nil
}

func (v rawValue) str() string { return strings.TrimSpace(v.text) }
func (v rawValue) blank() bool { return v.str() == "" }

// VehiclePayload is the loosely-typed create/update body for a vehicle.
type VehiclePayload struct {
	Make         rawValue `json:"make"`
	Model        rawValue `json:"model"`
	Year         rawValue `json:"year"`
	Type         rawValue `json:"type"`
	VIN          rawValue `json:"vin"`
	LicensePlate rawValue `json:"licensePlate"`
	Color        rawValue `json:"color"`
	Odometer     rawValue `json:"odometer"`
	PurchasedAt  rawValue `json:"purchasedAt"`
	SoldAt       rawValue `json:"soldAt"`
}

// MaintenancePayload is the loosely-typed create/update body for a
// maintenance record.
type MaintenancePayload struct {
	VehicleID   rawValue `json:"vehicleId"`
	Type        rawValue `json:"type"`
	Title       rawValue `json:"title"`
	Description rawValue `json:"description"`
	Date        rawValue `json:"date"`
	Odometer    rawValue `json:"odometer"`
	Cost        rawValue `json:"cost"`
	LaborHours  rawValue `json:"laborHours"`
	ShopID      rawValue `json:"shopId"`
}

// PartPayload is the loosely-typed create/update body for a part.
type PartPayload struct {
	Name         rawValue `json:"name"`
	PartNumber   rawValue `json:"partNumber"`
	Manufacturer rawValue `json:"manufacturer"`
	Description  rawValue `json:"description"`
	Category     rawValue `json:"category"`
	Cost         rawValue `json:"cost"`
	Quantity     rawValue `json:"quantity"`
	MinStock     rawValue `json:"minStock"`
	Location     rawValue `json:"location"`
	PurchasedAt  rawValue `json:"purchasedAt"`
	VehicleID    rawValue `json:"vehicleId"`
}

// ShopPayload is the loosely-typed create/update body for a shop.
type ShopPayload struct {
	Name        rawValue `json:"name"`
	Address     rawValue `json:"address"`
	Phone       rawValue `json:"phone"`
	Email       rawValue `json:"email"`
	Website     rawValue `json:"website"`
	Specialties rawValue `json:"specialties"`
	Notes       rawValue `json:"notes"`
}

// ProjectPayload is the loosely-typed create body for a vehicle project.
type ProjectPayload struct {
	Title       rawValue `json:"title"`
	Description rawValue `json:"description"`
	Status      rawValue `json:"status"`
}

// NotePayload is the loosely-typed create body for a note.
type NotePayload struct {
	Content rawValue `json:"content"`
}

// shapeVehicle normalizes a vehicle payload into a typed record.
// make, model, year and type are required; year and type parse strictly.
func shapeVehicle(p VehiclePayload) (domain.Vehicle, error) {
	var v domain.Vehicle
	var err error
	if v.Make, err = requireString("make", p.Make); err != nil {
		return domain.Vehicle{}, err
	}
	if v.Model, err = requireString("model", p.Model); err != nil {
		return domain.Vehicle{}, err
	}
	if v.Year, err = requireInt("year", p.Year); err != nil {
		return domain.Vehicle{}, err
	}
	vt := domain.VehicleType(strings.ToUpper(p.Type.str()))
	if p.Type.blank() {
		return domain.Vehicle{}, missingField("type")
	}
	if !domain.ValidVehicleType(vt) {
		return domain.Vehicle{}, invalidField("type", "unknown vehicle type")
	}
	v.Type = vt

	v.VIN = optionalString(p.VIN)
	v.LicensePlate = optionalString(p.LicensePlate)
	v.Color = optionalString(p.Color)
	if v.Odometer, err = optionalNonNegativeInt("odometer", p.Odometer); err != nil {
		return domain.Vehicle{}, err
	}
	if v.PurchasedAt, err = optionalDate("purchasedAt", p.PurchasedAt); err != nil {
		return domain.Vehicle{}, err
	}
	if v.SoldAt, err = optionalDate("soldAt", p.SoldAt); err != nil {
		return domain.Vehicle{}, err
	}
	return v, nil
}

// shapeMaintenance normalizes a maintenance payload. vehicleId, type, title
// and date are required; date parses strictly.
func shapeMaintenance(p MaintenancePayload) (domain.MaintenanceRecord, error) {
	var rec domain.MaintenanceRecord
	var err error
	if rec.VehicleID, err = requireString("vehicleId", p.VehicleID); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	mt := domain.MaintenanceType(strings.ToUpper(p.Type.str()))
	if p.Type.blank() {
		return domain.MaintenanceRecord{}, missingField("type")
	}
	if !domain.ValidMaintenanceType(mt) {
		return domain.MaintenanceRecord{}, invalidField("type", "unknown maintenance type")
	}
	rec.Type = mt
	if rec.Title, err = requireString("title", p.Title); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if rec.Date, err = requireDate("date", p.Date); err != nil {
		return domain.MaintenanceRecord{}, err
	}

	rec.Description = optionalString(p.Description)
	if rec.Odometer, err = optionalNonNegativeInt("odometer", p.Odometer); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if rec.Cost, err = optionalNonNegativeFloat("cost", p.Cost); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if rec.LaborHours, err = optionalNonNegativeFloat("laborHours", p.LaborHours); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	rec.ShopID = optionalString(p.ShopID)
	return rec, nil
}

// shapePart normalizes a part payload. Only name is required; quantity
// defaults to 1 when empty or unparsable.
func shapePart(p PartPayload) (domain.Part, error) {
	var part domain.Part
	var err error
	if part.Name, err = requireString("name", p.Name); err != nil {
		return domain.Part{}, err
	}
	part.PartNumber = optionalString(p.PartNumber)
	part.Manufacturer = optionalString(p.Manufacturer)
	part.Description = optionalString(p.Description)
	part.Category = optionalString(p.Category)
	if part.Cost, err = optionalNonNegativeFloat("cost", p.Cost); err != nil {
		return domain.Part{}, err
	}
	part.Quantity = 1
	if q, qErr := optionalNonNegativeInt("quantity", p.Quantity); qErr != nil {
		return domain.Part{}, qErr
	} else if q != nil {
		part.Quantity = *q
	}
	if part.MinStock, err = optionalNonNegativeInt("minStock", p.MinStock); err != nil {
		return domain.Part{}, err
	}
	part.Location = optionalString(p.Location)
	if part.PurchasedAt, err = optionalDate("purchasedAt", p.PurchasedAt); err != nil {
		return domain.Part{}, err
	}
	part.VehicleID = optionalString(p.VehicleID)
	return part, nil
}

// shapeShop normalizes a shop payload. Only name is required.
func shapeShop(p ShopPayload) (domain.Shop, error) {
	var s domain.Shop
	var err error
	if s.Name, err = requireString("name", p.Name); err != nil {
		return domain.Shop{}, err
	}
	s.Address = optionalString(p.Address)
	s.Phone = optionalString(p.Phone)
	s.Email = optionalString(p.Email)
	s.Website = optionalString(p.Website)
	s.Specialties = optionalString(p.Specialties)
	s.Notes = optionalString(p.Notes)
	return s, nil
}

// shapeProject normalizes a project payload. Status defaults to PLANNED.
func shapeProject(p ProjectPayload) (domain.Project, error) {
	var pr domain.Project
	var err error
	if pr.Title, err = requireString("title", p.Title); err != nil {
		return domain.Project{}, err
	}
	pr.Description = optionalString(p.Description)
	pr.Status = domain.ProjectPlanned
	if !p.Status.blank() {
		switch st := domain.ProjectStatus(strings.ToUpper(p.Status.str())); st {
		case domain.ProjectPlanned, domain.ProjectInProgress, domain.ProjectCompleted:
			pr.Status = st
		default:
			return domain.Project{}, invalidField("status", "unknown project status")
		}
	}
	return pr, nil
}

// shapeNote normalizes a note payload.
func shapeNote(p NotePayload) (domain.Note, error) {
	var n domain.Note
	var err error
	if n.Content, err = requireString("content", p.Content); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func requireString(field string, v rawValue) (string, error) {
	if v.blank() {
		return "", missingField(field)
	}
	return v.str(), nil
}

// optionalString maps empty or absent values to nil, never "". This keeps
// "not set" distinguishable from "set to blank" everywhere downstream.
func optionalString(v rawValue) *string {
	s := v.str()
	if s == "" {
		return nil
	}
	return &s
}

func requireInt(field string, v rawValue) (int, error) {
	if v.blank() {
		return 0, missingField(field)
	}
	n, err := strconv.Atoi(v.str())
	if err != nil {
		return 0, invalidField(field, "not an integer")
	}
	return n, nil
}

// optionalNonNegativeInt parses with integer semantics; empty or unparsable
// input yields nil, negative values are rejected.
func optionalNonNegativeInt(field string, v rawValue) (*int, error) {
	if v.blank() {
		return nil, nil
	}
	n, err := strconv.Atoi(v.str())
	if err != nil {
		return nil, nil
	}
	if n < 0 {
		return nil, invalidField(field, "must not be negative")
	}
	return &n, nil
}

// optionalNonNegativeFloat parses with floating-point semantics; empty or
// unparsable input yields nil, negative values are rejected.
func optionalNonNegativeFloat(field string, v rawValue) (*float64, error) {
	if v.blank() {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v.str(), 64)
	if err != nil {
		return nil, nil
	}
	if f < 0 {
		return nil, invalidField(field, "must not be negative")
	}
	return &f, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func requireDate(field string, v rawValue) (time.Time, error) {
	if v.blank() {
		return time.Time{}, missingField(field)
	}
	t, ok := parseDate(v.str())
	if !ok {
		return time.Time{}, invalidField(field, "not a valid date")
	}
	return t, nil
}

// optionalDate maps empty input to nil; non-empty input must parse.
func optionalDate(field string, v rawValue) (*time.Time, error) {
	if v.blank() {
		return nil, nil
	}
	t, ok := parseDate(v.str())
	if !ok {
		return nil, invalidField(field, "not a valid date")
	}
	return &t, nil
}
