package server

import (
	"net/http"

	"garagelog/internal/app"
)

// /api/maintenance (?vehicleId=)
func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := s.app.ListMaintenance(r.Context(), r.URL.Query().Get("vehicleId"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	case http.MethodPost:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.MaintenancePayload
		if !decodeBody(w, r, &p) {
			return
		}
		record, err := s.app.CreateMaintenance(r.Context(), p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	default:
		methodNotAllowed(w)
	}
}

// /api/maintenance/{id} plus documents, parts and notes sub-resources.
func (s *Server) handleMaintenanceByID(w http.ResponseWriter, r *http.Request) {
	id, rest := splitResource(r.URL.Path, "/api/maintenance/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "documents":
			s.handleMaintenanceDocuments(w, r, id, rest[1:])
		case "parts":
			s.handleMaintenanceParts(w, r, id, rest[1:])
		case "notes":
			s.handleMaintenanceNotes(w, r, id, rest[1:])
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := s.app.GetMaintenance(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodPut:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.MaintenancePayload
		if !decodeBody(w, r, &p) {
			return
		}
		record, err := s.app.UpdateMaintenance(r.Context(), id, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeleteMaintenance(r.Context(), id); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMaintenanceDocuments(w http.ResponseWriter, r *http.Request, recordID string, rest []string) {
	// /documents/{docId}/url and /documents/{docId}
	if len(rest) == 2 && rest[1] == "url" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		url, err := s.app.DocumentURL(r.Context(), rest[0])
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
		return
	}
	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeleteDocument(r.Context(), rest[0]); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	if len(rest) > 0 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		docs, err := s.app.ListDocuments(r.Context(), recordID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	case http.MethodPost:
		s.handleUploadDocument(w, r, recordID)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request, recordID string) {
	if !s.protectWrite(w, r) {
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	doc, err := s.app.AddDocument(r.Context(), recordID, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleMaintenanceParts(w http.ResponseWriter, r *http.Request, recordID string, rest []string) {
	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DetachPart(r.Context(), recordID, rest[0]); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	if len(rest) > 0 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.protectWrite(w, r) {
		return
	}
	var p app.AttachPartPayload
	if !decodeBody(w, r, &p) {
		return
	}
	usage, err := s.app.AttachPart(r.Context(), recordID, p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, usage)
}

func (s *Server) handleMaintenanceNotes(w http.ResponseWriter, r *http.Request, recordID string, rest []string) {
	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeleteNote(r.Context(), rest[0]); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	if len(rest) > 0 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		notes, err := s.app.ListMaintenanceNotes(r.Context(), recordID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	case http.MethodPost:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.NotePayload
		if !decodeBody(w, r, &p) {
			return
		}
		note, err := s.app.CreateMaintenanceNote(r.Context(), recordID, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	default:
		methodNotAllowed(w)
	}
}
