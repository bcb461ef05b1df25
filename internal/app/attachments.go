package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"garagelog/internal/util"
	"garagelog/pkg/domain"
)

// ListProjects returns all projects of a vehicle.
func (a *App) ListProjects(ctx context.Context, vehicleID string) ([]domain.Project, error) {
	if err := a.requireVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	projects, err := a.store.ListProjects(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// CreateProject shapes and stores a new project for a vehicle.
func (a *App) CreateProject(ctx context.Context, vehicleID string, p ProjectPayload) (domain.Project, error) {
	if err := a.requireVehicle(ctx, vehicleID); err != nil {
		return domain.Project{}, err
	}
	project, err := shapeProject(p)
	if err != nil {
		return domain.Project{}, err
	}
	project.VehicleID = vehicleID
	created, err := a.store.CreateProject(ctx, project)
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	a.publish(ctx, "project", "created", created.ID)
	return created, nil
}

// DeleteProject removes a project.
func (a *App) DeleteProject(ctx context.Context, id string) error {
	found, err := a.store.DeleteProject(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "project", "deleted", id)
	return nil
}

// ListVehicleNotes returns the notes attached to a vehicle.
func (a *App) ListVehicleNotes(ctx context.Context, vehicleID string) ([]domain.Note, error) {
	if err := a.requireVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	notes, err := a.store.ListVehicleNotes(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// CreateVehicleNote shapes and stores a note on a vehicle.
func (a *App) CreateVehicleNote(ctx context.Context, vehicleID string, p NotePayload) (domain.Note, error) {
	if err := a.requireVehicle(ctx, vehicleID); err != nil {
		return domain.Note{}, err
	}
	note, err := shapeNote(p)
	if err != nil {
		return domain.Note{}, err
	}
	note.VehicleID = &vehicleID
	created, err := a.store.CreateNote(ctx, note)
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	a.publish(ctx, "note", "created", created.ID)
	return created, nil
}

// ListMaintenanceNotes returns the notes attached to a maintenance record.
func (a *App) ListMaintenanceNotes(ctx context.Context, recordID string) ([]domain.Note, error) {
	if err := a.requireMaintenance(ctx, recordID); err != nil {
		return nil, err
	}
	notes, err := a.store.ListMaintenanceNotes(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// CreateMaintenanceNote shapes and stores a note on a maintenance record.
func (a *App) CreateMaintenanceNote(ctx context.Context, recordID string, p NotePayload) (domain.Note, error) {
	if err := a.requireMaintenance(ctx, recordID); err != nil {
		return domain.Note{}, err
	}
	note, err := shapeNote(p)
	if err != nil {
		return domain.Note{}, err
	}
	note.MaintenanceRecordID = &recordID
	created, err := a.store.CreateNote(ctx, note)
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	a.publish(ctx, "note", "created", created.ID)
	return created, nil
}

// DeleteNote removes a note.
func (a *App) DeleteNote(ctx context.Context, id string) error {
	found, err := a.store.DeleteNote(ctx, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "note", "deleted", id)
	return nil
}

// ListDocuments returns the documents attached to a maintenance record.
func (a *App) ListDocuments(ctx context.Context, recordID string) ([]domain.Document, error) {
	if err := a.requireMaintenance(ctx, recordID); err != nil {
		return nil, err
	}
	docs, err := a.store.ListDocuments(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// AddDocument streams an uploaded file into the object store and records
// its metadata against the maintenance record.
func (a *App) AddDocument(ctx context.Context, recordID, filename, contentType string, size int64, r io.Reader) (domain.Document, error) {
	if a.files == nil {
		return domain.Document{}, fmt.Errorf("document storage is not configured")
	}
	if err := a.requireMaintenance(ctx, recordID); err != nil {
		return domain.Document{}, err
	}
	filename = safeFilename(filename)
	if filename == "" {
		return domain.Document{}, missingField("filename")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := recordID + "/" + util.NewID() + "-" + filename
	if err := a.files.Put(ctx, key, r, size, contentType); err != nil {
		return domain.Document{}, fmt.Errorf("store document: %w", err)
	}
	doc, err := a.store.CreateDocument(ctx, domain.Document{
		MaintenanceRecordID: recordID,
		Filename:            filename,
		ContentType:         contentType,
		SizeBytes:           size,
		StorageKey:          key,
		Metadata:            map[string]string{"source": "upload"},
	})
	if err != nil {
		// Metadata write failed; do not leave an orphaned object behind.
		if delErr := a.files.Delete(ctx, key); delErr != nil {
			util.LoggerFromContext(ctx).Warn("orphan object cleanup failed", "key", key, "err", delErr)
		}
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}
	a.publish(ctx, "document", "created", doc.ID)
	return doc, nil
}

// DocumentURL returns a short-lived fetch URL for a document body.
func (a *App) DocumentURL(ctx context.Context, id string) (string, error) {
	if a.files == nil {
		return "", fmt.Errorf("document storage is not configured")
	}
	doc, found, err := a.store.GetDocument(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}
	if !found {
		return "", ErrNotFound
	}
	url, err := a.files.GetURL(ctx, doc.StorageKey, a.urlTTL)
	if err != nil {
		return "", fmt.Errorf("document url: %w", err)
	}
	return url, nil
}

// DeleteDocument removes the document body and metadata.
func (a *App) DeleteDocument(ctx context.Context, id string) error {
	doc, found, err := a.store.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	if a.files != nil {
		if err := a.files.Delete(ctx, doc.StorageKey); err != nil {
			util.LoggerFromContext(ctx).Warn("object delete failed", "key", doc.StorageKey, "err", err)
		}
	}
	if _, err := a.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	a.publish(ctx, "document", "deleted", id)
	return nil
}

// AttachPartPayload is the loosely-typed body for attaching a part to a
// maintenance record.
type AttachPartPayload struct {
	PartID   rawValue `json:"partId"`
	Quantity rawValue `json:"quantity"`
}

// AttachPart links an inventory part to a maintenance record.
func (a *App) AttachPart(ctx context.Context, recordID string, p AttachPartPayload) (domain.PartUsage, error) {
	if err := a.requireMaintenance(ctx, recordID); err != nil {
		return domain.PartUsage{}, err
	}
	partID, err := requireString("partId", p.PartID)
	if err != nil {
		return domain.PartUsage{}, err
	}
	_, found, err := a.store.GetPart(ctx, partID)
	if err != nil {
		return domain.PartUsage{}, fmt.Errorf("check part: %w", err)
	}
	if !found {
		return domain.PartUsage{}, invalidField("partId", "unknown part")
	}
	quantity := 1
	if q, qErr := optionalNonNegativeInt("quantity", p.Quantity); qErr != nil {
		return domain.PartUsage{}, qErr
	} else if q != nil {
		quantity = *q
	}
	usage, err := a.store.AttachPart(ctx, domain.PartUsage{
		MaintenanceRecordID: recordID,
		PartID:              partID,
		Quantity:            quantity,
	})
	if err != nil {
		return domain.PartUsage{}, fmt.Errorf("attach part: %w", err)
	}
	a.publish(ctx, "maintenance", "updated", recordID)
	return usage, nil
}

// DetachPart removes a part link from a maintenance record.
func (a *App) DetachPart(ctx context.Context, recordID, partID string) error {
	found, err := a.store.DetachPart(ctx, recordID, partID)
	if err != nil {
		return fmt.Errorf("detach part: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	a.publish(ctx, "maintenance", "updated", recordID)
	return nil
}

func (a *App) requireVehicle(ctx context.Context, id string) error {
	_, found, err := a.store.GetVehicle(ctx, id)
	if err != nil {
		return fmt.Errorf("check vehicle: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (a *App) requireMaintenance(ctx context.Context, id string) error {
	_, found, err := a.store.GetMaintenance(ctx, id)
	if err != nil {
		return fmt.Errorf("check maintenance: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func safeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
