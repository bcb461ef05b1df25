package server

import (
	"net/http"

	"garagelog/internal/app"
)

// /api/vehicles
func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vehicles, err := s.app.ListVehicles(r.Context())
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicles)
	case http.MethodPost:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.VehiclePayload
		if !decodeBody(w, r, &p) {
			return
		}
		vehicle, err := s.app.CreateVehicle(r.Context(), p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, vehicle)
	default:
		methodNotAllowed(w)
	}
}

// /api/vehicles/{id} plus notes and projects sub-resources.
func (s *Server) handleVehicleByID(w http.ResponseWriter, r *http.Request) {
	id, rest := splitResource(r.URL.Path, "/api/vehicles/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "notes":
			s.handleVehicleNotes(w, r, id, rest[1:])
		case "projects":
			s.handleVehicleProjects(w, r, id, rest[1:])
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		detail, err := s.app.GetVehicle(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodPut:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.VehiclePayload
		if !decodeBody(w, r, &p) {
			return
		}
		vehicle, err := s.app.UpdateVehicle(r.Context(), id, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicle)
	case http.MethodDelete:
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeleteVehicle(r.Context(), id); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleVehicleNotes(w http.ResponseWriter, r *http.Request, vehicleID string, rest []string) {
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
	if len(rest) > 1 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		notes, err := s.app.ListVehicleNotes(r.Context(), vehicleID)
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
		note, err := s.app.CreateVehicleNote(r.Context(), vehicleID, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleVehicleProjects(w http.ResponseWriter, r *http.Request, vehicleID string, rest []string) {
	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeleteProject(r.Context(), rest[0]); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	if len(rest) > 1 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.ListProjects(r.Context(), vehicleID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.ProjectPayload
		if !decodeBody(w, r, &p) {
			return
		}
		project, err := s.app.CreateProject(r.Context(), vehicleID, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		methodNotAllowed(w)
	}
}
