package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"garagelog/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs handler and app tests
// and mirrors GormStore semantics, including the vehicle delete cascade.
type MemoryStore struct {
	mu        sync.RWMutex
	vehicles  map[string]domain.Vehicle
	records   map[string]domain.MaintenanceRecord
	parts     map[string]domain.Part
	shops     map[string]domain.Shop
	projects  map[string]domain.Project
	notes     map[string]domain.Note
	documents map[string]domain.Document
	usages    map[string]domain.PartUsage

	// seq preserves insertion order so listings are stable when
	// timestamps collide inside a fast test run.
	seq    map[string]int
	nextSq int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles:  map[string]domain.Vehicle{},
		records:   map[string]domain.MaintenanceRecord{},
		parts:     map[string]domain.Part{},
		shops:     map[string]domain.Shop{},
		projects:  map[string]domain.Project{},
		notes:     map[string]domain.Note{},
		documents: map[string]domain.Document{},
		usages:    map[string]domain.PartUsage{},
		seq:       map[string]int{},
	}
}

func (s *MemoryStore) stamp(id string) {
	s.nextSq++
	s.seq[id] = s.nextSq
}

// newestFirst orders by timestamp descending, insertion order breaking ties.
func (s *MemoryStore) newestFirst(ids []string, at func(id string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ti, tj := at(ids[i]), at(ids[j])
		if ti.Equal(tj) {
			return s.seq[ids[i]] > s.seq[ids[j]]
		}
		return ti.After(tj)
	})
}

// ListVehicles returns all vehicles newest first with relation counts.
func (s *MemoryStore) ListVehicles(_ context.Context) ([]domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.vehicles))
	for id := range s.vehicles {
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.vehicles[id].CreatedAt })
	out := make([]domain.Vehicle, 0, len(ids))
	for _, id := range ids {
		v := s.vehicles[id]
		v.Counts = s.vehicleCountsLocked(id)
		out = append(out, v)
	}
	return out, nil
}

func (s *MemoryStore) vehicleCountsLocked(id string) *domain.VehicleCounts {
	counts := &domain.VehicleCounts{}
	for _, r := range s.records {
		if r.VehicleID == id {
			counts.MaintenanceRecords++
		}
	}
	for _, p := range s.projects {
		if p.VehicleID == id {
			counts.Projects++
		}
	}
	for _, p := range s.parts {
		if p.VehicleID != nil && *p.VehicleID == id {
			counts.Parts++
		}
	}
	return counts
}

// GetVehicle returns a vehicle by ID.
func (s *MemoryStore) GetVehicle(_ context.Context, id string) (domain.Vehicle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	return v, ok, nil
}

// GetVehicleDetail loads the vehicle with each owned collection sorted.
func (s *MemoryStore) GetVehicleDetail(_ context.Context, id string) (domain.VehicleDetail, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return domain.VehicleDetail{}, false, nil
	}
	detail := domain.VehicleDetail{Vehicle: v}
	detail.MaintenanceRecords = []domain.MaintenanceRecord{}
	recIDs := []string{}
	for rid, r := range s.records {
		if r.VehicleID == id {
			recIDs = append(recIDs, rid)
		}
	}
	sort.SliceStable(recIDs, func(i, j int) bool {
		di, dj := s.records[recIDs[i]].Date, s.records[recIDs[j]].Date
		if di.Equal(dj) {
			return s.seq[recIDs[i]] > s.seq[recIDs[j]]
		}
		return di.After(dj)
	})
	for _, rid := range recIDs {
		rec := s.records[rid]
		if rec.ShopID != nil {
			if shop, ok := s.shops[*rec.ShopID]; ok {
				rec.Shop = &shop
			}
		}
		detail.MaintenanceRecords = append(detail.MaintenanceRecords, rec)
	}

	detail.Parts = []domain.Part{}
	partIDs := []string{}
	for pid, p := range s.parts {
		if p.VehicleID != nil && *p.VehicleID == id {
			partIDs = append(partIDs, pid)
		}
	}
	s.newestFirst(partIDs, func(id string) time.Time { return s.parts[id].CreatedAt })
	for _, pid := range partIDs {
		detail.Parts = append(detail.Parts, s.parts[pid])
	}

	detail.Projects = s.listProjectsLocked(id)
	detail.Notes = s.listNotesLocked(func(n domain.Note) bool {
		return n.VehicleID != nil && *n.VehicleID == id
	})
	return detail, true, nil
}

// CreateVehicle stores a new vehicle.
func (s *MemoryStore) CreateVehicle(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
	s.vehicles[v.ID] = v
	s.stamp(v.ID)
	return v, nil
}

// UpdateVehicle replaces all mutable fields of a vehicle.
func (s *MemoryStore) UpdateVehicle(_ context.Context, id string, v domain.Vehicle) (domain.Vehicle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.vehicles[id]
	if !ok {
		return domain.Vehicle{}, false, nil
	}
	v.ID = existing.ID
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	s.vehicles[id] = v
	return v, true, nil
}

// DeleteVehicle removes the vehicle and cascades to all of its dependents.
func (s *MemoryStore) DeleteVehicle(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return false, nil
	}
	delete(s.vehicles, id)
	for rid, r := range s.records {
		if r.VehicleID == id {
			s.deleteRecordLocked(rid)
		}
	}
	for pid, p := range s.parts {
		if p.VehicleID != nil && *p.VehicleID == id {
			s.deletePartLocked(pid)
		}
	}
	for prid, pr := range s.projects {
		if pr.VehicleID == id {
			delete(s.projects, prid)
		}
	}
	for nid, n := range s.notes {
		if n.VehicleID != nil && *n.VehicleID == id {
			delete(s.notes, nid)
		}
	}
	return true, nil
}

func (s *MemoryStore) deleteRecordLocked(id string) {
	delete(s.records, id)
	for nid, n := range s.notes {
		if n.MaintenanceRecordID != nil && *n.MaintenanceRecordID == id {
			delete(s.notes, nid)
		}
	}
	for did, d := range s.documents {
		if d.MaintenanceRecordID == id {
			delete(s.documents, did)
		}
	}
	for uid, u := range s.usages {
		if u.MaintenanceRecordID == id {
			delete(s.usages, uid)
		}
	}
}

func (s *MemoryStore) deletePartLocked(id string) {
	delete(s.parts, id)
	for uid, u := range s.usages {
		if u.PartID == id {
			delete(s.usages, uid)
		}
	}
}

func (s *MemoryStore) recordEagerLocked(rec domain.MaintenanceRecord) domain.MaintenanceRecord {
	if v, ok := s.vehicles[rec.VehicleID]; ok {
		summary := v.Summary()
		rec.Vehicle = &summary
	}
	if rec.ShopID != nil {
		if shop, ok := s.shops[*rec.ShopID]; ok {
			rec.Shop = &shop
		}
	}
	for _, u := range s.usages {
		if u.MaintenanceRecordID != rec.ID {
			continue
		}
		if part, ok := s.parts[u.PartID]; ok {
			u.Part = &part
		}
		rec.Parts = append(rec.Parts, u)
	}
	sort.SliceStable(rec.Parts, func(i, j int) bool {
		return s.seq[rec.Parts[i].ID] < s.seq[rec.Parts[j].ID]
	})
	counts := &domain.MaintenanceCounts{}
	for _, n := range s.notes {
		if n.MaintenanceRecordID != nil && *n.MaintenanceRecordID == rec.ID {
			counts.Notes++
		}
	}
	for _, d := range s.documents {
		if d.MaintenanceRecordID == rec.ID {
			counts.Documents++
		}
	}
	rec.Counts = counts
	return rec
}

// ListMaintenance returns maintenance records newest first.
func (s *MemoryStore) ListMaintenance(_ context.Context, filter MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, r := range s.records {
		if filter.VehicleID != "" && r.VehicleID != filter.VehicleID {
			continue
		}
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := s.records[ids[i]].Date, s.records[ids[j]].Date
		if di.Equal(dj) {
			return s.seq[ids[i]] > s.seq[ids[j]]
		}
		return di.After(dj)
	})
	out := make([]domain.MaintenanceRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.recordEagerLocked(s.records[id]))
	}
	return out, nil
}

// GetMaintenance returns one record with relations loaded.
func (s *MemoryStore) GetMaintenance(_ context.Context, id string) (domain.MaintenanceRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.MaintenanceRecord{}, false, nil
	}
	return s.recordEagerLocked(rec), true, nil
}

// CreateMaintenance stores a new maintenance record.
func (s *MemoryStore) CreateMaintenance(_ context.Context, rec domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	s.records[rec.ID] = rec
	s.stamp(rec.ID)
	return s.recordEagerLocked(rec), nil
}

// UpdateMaintenance replaces all mutable fields of a record.
func (s *MemoryStore) UpdateMaintenance(_ context.Context, id string, rec domain.MaintenanceRecord) (domain.MaintenanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[id]
	if !ok {
		return domain.MaintenanceRecord{}, false, nil
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	return s.recordEagerLocked(rec), true, nil
}

// DeleteMaintenance removes one record and its attachments; the vehicle
// and shop stay untouched.
func (s *MemoryStore) DeleteMaintenance(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	s.deleteRecordLocked(id)
	return true, nil
}

// ListParts returns parts newest first, filtered by vehicle and category.
func (s *MemoryStore) ListParts(_ context.Context, filter PartFilter) ([]domain.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, p := range s.parts {
		if filter.VehicleID != "" && (p.VehicleID == nil || *p.VehicleID != filter.VehicleID) {
			continue
		}
		if filter.Category != "" && (p.Category == nil || *p.Category != filter.Category) {
			continue
		}
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.parts[id].CreatedAt })
	out := make([]domain.Part, 0, len(ids))
	for _, id := range ids {
		p := s.parts[id]
		if p.VehicleID != nil {
			if v, ok := s.vehicles[*p.VehicleID]; ok {
				summary := v.Summary()
				p.Vehicle = &summary
			}
		}
		usageCount := 0
		for _, u := range s.usages {
			if u.PartID == id {
				usageCount++
			}
		}
		p.Counts = &domain.PartCounts{Maintenance: usageCount}
		out = append(out, p)
	}
	return out, nil
}

// GetPart returns a part by ID.
func (s *MemoryStore) GetPart(_ context.Context, id string) (domain.Part, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parts[id]
	if !ok {
		return domain.Part{}, false, nil
	}
	if p.VehicleID != nil {
		if v, vok := s.vehicles[*p.VehicleID]; vok {
			summary := v.Summary()
			p.Vehicle = &summary
		}
	}
	return p, true, nil
}

// CreatePart stores a new part.
func (s *MemoryStore) CreatePart(_ context.Context, p domain.Part) (domain.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.parts[p.ID] = p
	s.stamp(p.ID)
	return p, nil
}

// UpdatePart replaces all mutable fields of a part.
func (s *MemoryStore) UpdatePart(_ context.Context, id string, p domain.Part) (domain.Part, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.parts[id]
	if !ok {
		return domain.Part{}, false, nil
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.parts[id] = p
	return p, true, nil
}

// DeletePart removes a part and its usage links.
func (s *MemoryStore) DeletePart(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[id]; !ok {
		return false, nil
	}
	s.deletePartLocked(id)
	return true, nil
}

// ListShops returns all shops sorted by name.
func (s *MemoryStore) ListShops(_ context.Context) ([]domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Shop, 0, len(s.shops))
	for id, shop := range s.shops {
		count := 0
		for _, r := range s.records {
			if r.ShopID != nil && *r.ShopID == id {
				count++
			}
		}
		shop.Counts = &domain.ShopCounts{MaintenanceRecords: count}
		out = append(out, shop)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetShop returns a shop by ID.
func (s *MemoryStore) GetShop(_ context.Context, id string) (domain.Shop, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shop, ok := s.shops[id]
	return shop, ok, nil
}

// CreateShop stores a new shop.
func (s *MemoryStore) CreateShop(_ context.Context, shop domain.Shop) (domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop.ID = uuid.NewString()
	shop.CreatedAt = time.Now().UTC()
	shop.UpdatedAt = shop.CreatedAt
	s.shops[shop.ID] = shop
	s.stamp(shop.ID)
	return shop, nil
}

// UpdateShop replaces all mutable fields of a shop.
func (s *MemoryStore) UpdateShop(_ context.Context, id string, shop domain.Shop) (domain.Shop, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.shops[id]
	if !ok {
		return domain.Shop{}, false, nil
	}
	shop.ID = existing.ID
	shop.CreatedAt = existing.CreatedAt
	shop.UpdatedAt = time.Now().UTC()
	s.shops[id] = shop
	return shop, true, nil
}

// DeleteShop removes a shop and clears the reference from its records.
func (s *MemoryStore) DeleteShop(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[id]; !ok {
		return false, nil
	}
	delete(s.shops, id)
	for rid, r := range s.records {
		if r.ShopID != nil && *r.ShopID == id {
			r.ShopID = nil
			s.records[rid] = r
		}
	}
	return true, nil
}

func (s *MemoryStore) listProjectsLocked(vehicleID string) []domain.Project {
	ids := []string{}
	for id, p := range s.projects {
		if p.VehicleID == vehicleID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.projects[id].CreatedAt })
	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.projects[id])
	}
	return out
}

// ListProjects returns a vehicle's projects newest first.
func (s *MemoryStore) ListProjects(_ context.Context, vehicleID string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listProjectsLocked(vehicleID), nil
}

// CreateProject stores a new project.
func (s *MemoryStore) CreateProject(_ context.Context, p domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = p
	s.stamp(p.ID)
	return p, nil
}

// DeleteProject removes a project.
func (s *MemoryStore) DeleteProject(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

func (s *MemoryStore) listNotesLocked(match func(domain.Note) bool) []domain.Note {
	ids := []string{}
	for id, n := range s.notes {
		if match(n) {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.notes[id].CreatedAt })
	out := make([]domain.Note, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.notes[id])
	}
	return out
}

// ListVehicleNotes returns a vehicle's notes newest first.
func (s *MemoryStore) ListVehicleNotes(_ context.Context, vehicleID string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listNotesLocked(func(n domain.Note) bool {
		return n.VehicleID != nil && *n.VehicleID == vehicleID
	}), nil
}

// ListMaintenanceNotes returns a record's notes newest first.
func (s *MemoryStore) ListMaintenanceNotes(_ context.Context, recordID string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listNotesLocked(func(n domain.Note) bool {
		return n.MaintenanceRecordID != nil && *n.MaintenanceRecordID == recordID
	}), nil
}

// CreateNote stores a new note.
func (s *MemoryStore) CreateNote(_ context.Context, n domain.Note) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	s.notes[n.ID] = n
	s.stamp(n.ID)
	return n, nil
}

// DeleteNote removes a note.
func (s *MemoryStore) DeleteNote(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return false, nil
	}
	delete(s.notes, id)
	return true, nil
}

// ListDocuments returns a record's documents newest first.
func (s *MemoryStore) ListDocuments(_ context.Context, recordID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, d := range s.documents {
		if d.MaintenanceRecordID == recordID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.documents[id].CreatedAt })
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.documents[id])
	}
	return out, nil
}

// ListVehicleDocuments returns documents reachable through the vehicle's
// maintenance records.
func (s *MemoryStore) ListVehicleDocuments(_ context.Context, vehicleID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Document{}
	for _, d := range s.documents {
		rec, ok := s.records[d.MaintenanceRecordID]
		if ok && rec.VehicleID == vehicleID {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetDocument returns document metadata by ID.
func (s *MemoryStore) GetDocument(_ context.Context, id string) (domain.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	return d, ok, nil
}

// CreateDocument stores document metadata.
func (s *MemoryStore) CreateDocument(_ context.Context, d domain.Document) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	s.documents[d.ID] = d
	s.stamp(d.ID)
	return d, nil
}

// DeleteDocument removes document metadata.
func (s *MemoryStore) DeleteDocument(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return false, nil
	}
	delete(s.documents, id)
	return true, nil
}

// AttachPart links a part to a maintenance record.
func (s *MemoryStore) AttachPart(_ context.Context, u domain.PartUsage) (domain.PartUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	s.usages[u.ID] = u
	s.stamp(u.ID)
	return u, nil
}

// DetachPart removes a part link from a maintenance record.
func (s *MemoryStore) DetachPart(_ context.Context, recordID, partID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.usages {
		if u.MaintenanceRecordID == recordID && u.PartID == partID {
			delete(s.usages, id)
			return true, nil
		}
	}
	return false, nil
}
