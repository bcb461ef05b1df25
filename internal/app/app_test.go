package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"garagelog/internal/storage"
	"garagelog/internal/store"
)

func maintenancePayload(t *testing.T, body string) MaintenancePayload {
	t.Helper()
	var p MaintenancePayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return p
}

func shopPayload(t *testing.T, body string) ShopPayload {
	t.Helper()
	var p ShopPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return p
}

func partPayload(t *testing.T, body string) PartPayload {
	t.Helper()
	var p PartPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return p
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	a, err := New(Config{Store: store.NewMemoryStore(), Files: files})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestVehicleLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	created, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated ID")
	}

	updated, err := a.UpdateVehicle(ctx, created.ID, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR","color":"red"}`))
	if err != nil {
		t.Fatalf("update vehicle: %v", err)
	}
	if updated.Color == nil || *updated.Color != "red" {
		t.Fatalf("color = %v, want red", updated.Color)
	}
	if updated.ID != created.ID {
		t.Fatalf("update changed ID: %s -> %s", created.ID, updated.ID)
	}

	detail, err := a.GetVehicle(ctx, created.ID)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if detail.MaintenanceRecords == nil || detail.Parts == nil {
		t.Fatal("detail collections must be non-nil")
	}

	if err := a.DeleteVehicle(ctx, created.ID); err != nil {
		t.Fatalf("delete vehicle: %v", err)
	}
	if _, err := a.GetVehicle(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := a.DeleteVehicle(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestCreateMaintenanceRejectsUnknownVehicle(t *testing.T) {
	a := newTestApp(t)
	_, err := a.CreateMaintenance(context.Background(), maintenancePayload(t,
		`{"vehicleId":"nope","type":"REPAIR","title":"Fix","date":"2024-01-01"}`))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "vehicleId" {
		t.Fatalf("expected vehicleId validation error, got %v", err)
	}
}

func TestCreateMaintenanceRejectsUnknownShop(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	vehicle, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	_, err = a.CreateMaintenance(ctx, maintenancePayload(t,
		`{"vehicleId":"`+vehicle.ID+`","type":"REPAIR","title":"Fix","date":"2024-01-01","shopId":"nope"}`))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "shopId" {
		t.Fatalf("expected shopId validation error, got %v", err)
	}
}

func TestPartAttachDetach(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	vehicle, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	rec, err := a.CreateMaintenance(ctx, maintenancePayload(t,
		`{"vehicleId":"`+vehicle.ID+`","type":"OIL_CHANGE","title":"Oil","date":"2024-01-01"}`))
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}
	part, err := a.CreatePart(ctx, partPayload(t, `{"name":"Oil filter","quantity":"3"}`))
	if err != nil {
		t.Fatalf("create part: %v", err)
	}

	var attach AttachPartPayload
	if err := json.Unmarshal([]byte(`{"partId":"`+part.ID+`","quantity":"2"}`), &attach); err != nil {
		t.Fatalf("unmarshal attach payload: %v", err)
	}
	usage, err := a.AttachPart(ctx, rec.ID, attach)
	if err != nil {
		t.Fatalf("attach part: %v", err)
	}
	if usage.Quantity != 2 {
		t.Fatalf("usage quantity = %d, want 2", usage.Quantity)
	}

	got, err := a.GetMaintenance(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get maintenance: %v", err)
	}
	if len(got.Parts) != 1 || got.Parts[0].Part == nil || got.Parts[0].Part.Name != "Oil filter" {
		t.Fatalf("unexpected parts on record: %+v", got.Parts)
	}

	if err := a.DetachPart(ctx, rec.ID, part.ID); err != nil {
		t.Fatalf("detach part: %v", err)
	}
	if err := a.DetachPart(ctx, rec.ID, part.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second detach, got %v", err)
	}
}

func TestNotesOnVehicleAndRecord(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	vehicle, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	rec, err := a.CreateMaintenance(ctx, maintenancePayload(t,
		`{"vehicleId":"`+vehicle.ID+`","type":"REPAIR","title":"Fix","date":"2024-01-01"}`))
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	var np NotePayload
	if err := json.Unmarshal([]byte(`{"content":"squeaky belt"}`), &np); err != nil {
		t.Fatalf("unmarshal note payload: %v", err)
	}
	vn, err := a.CreateVehicleNote(ctx, vehicle.ID, np)
	if err != nil {
		t.Fatalf("create vehicle note: %v", err)
	}
	if vn.VehicleID == nil || vn.MaintenanceRecordID != nil {
		t.Fatalf("vehicle note owner mismatch: %+v", vn)
	}
	rn, err := a.CreateMaintenanceNote(ctx, rec.ID, np)
	if err != nil {
		t.Fatalf("create maintenance note: %v", err)
	}
	if rn.MaintenanceRecordID == nil || rn.VehicleID != nil {
		t.Fatalf("record note owner mismatch: %+v", rn)
	}

	vehicleNotes, err := a.ListVehicleNotes(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("list vehicle notes: %v", err)
	}
	if len(vehicleNotes) != 1 {
		t.Fatalf("vehicle notes = %d, want 1", len(vehicleNotes))
	}
	recordNotes, err := a.ListMaintenanceNotes(ctx, rec.ID)
	if err != nil {
		t.Fatalf("list maintenance notes: %v", err)
	}
	if len(recordNotes) != 1 {
		t.Fatalf("record notes = %d, want 1", len(recordNotes))
	}
}

func TestDocumentLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	vehicle, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	rec, err := a.CreateMaintenance(ctx, maintenancePayload(t,
		`{"vehicleId":"`+vehicle.ID+`","type":"REPAIR","title":"Fix","date":"2024-01-01"}`))
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	body := "fake receipt bytes"
	doc, err := a.AddDocument(ctx, rec.ID, "../receipt.pdf", "application/pdf", int64(len(body)), strings.NewReader(body))
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if doc.Filename != "receipt.pdf" {
		t.Fatalf("filename = %q, want traversal stripped", doc.Filename)
	}
	if doc.SizeBytes != int64(len(body)) {
		t.Fatalf("sizeBytes = %d, want %d", doc.SizeBytes, len(body))
	}

	url, err := a.DocumentURL(ctx, doc.ID)
	if err != nil {
		t.Fatalf("document url: %v", err)
	}
	if url == "" {
		t.Fatal("expected non-empty URL")
	}

	docs, err := a.ListDocuments(ctx, rec.ID)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want 1", len(docs))
	}

	if err := a.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if _, err := a.DocumentURL(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestProjectLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	vehicle, err := a.CreateVehicle(ctx, vehiclePayload(t, `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`))
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	var pp ProjectPayload
	if err := json.Unmarshal([]byte(`{"title":"Engine swap","status":"in_progress"}`), &pp); err != nil {
		t.Fatalf("unmarshal project payload: %v", err)
	}
	project, err := a.CreateProject(ctx, vehicle.ID, pp)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.Status != "IN_PROGRESS" {
		t.Fatalf("status = %q, want IN_PROGRESS", project.Status)
	}

	if _, err := a.ListProjects(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown vehicle, got %v", err)
	}
	projects, err := a.ListProjects(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}

	if err := a.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
}
