package server

import (
	"net/http"

	"garagelog/internal/app"
)

// /api/parts (?vehicleId=&category=)
func (s *Server) handleParts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		parts, err := s.app.ListParts(r.Context(), q.Get("vehicleId"), q.Get("category"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, parts)
	case http.MethodPost:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.PartPayload
		if !decodeBody(w, r, &p) {
			return
		}
		part, err := s.app.CreatePart(r.Context(), p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, part)
	default:
		methodNotAllowed(w)
	}
}

// /api/parts/{id}
func (s *Server) handlePartByID(w http.ResponseWriter, r *http.Request) {
	id, rest := splitResource(r.URL.Path, "/api/parts/")
	if id == "" || len(rest) > 0 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		part, err := s.app.GetPart(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, part)
	case http.MethodPut:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.PartPayload
		if !decodeBody(w, r, &p) {
			return
		}
		part, err := s.app.UpdatePart(r.Context(), id, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, part)
	case http.MethodDelete:
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeletePart(r.Context(), id); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

// /api/shops
func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		shops, err := s.app.ListShops(r.Context())
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, shops)
	case http.MethodPost:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.ShopPayload
		if !decodeBody(w, r, &p) {
			return
		}
		shop, err := s.app.CreateShop(r.Context(), p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, shop)
	default:
		methodNotAllowed(w)
	}
}

// /api/shops/{id}
func (s *Server) handleShopByID(w http.ResponseWriter, r *http.Request) {
	id, rest := splitResource(r.URL.Path, "/api/shops/")
	if id == "" || len(rest) > 0 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		shop, err := s.app.GetShop(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, shop)
	case http.MethodPut:
		if !s.protectWrite(w, r) {
			return
		}
		var p app.ShopPayload
		if !decodeBody(w, r, &p) {
			return
		}
		shop, err := s.app.UpdateShop(r.Context(), id, p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, shop)
	case http.MethodDelete:
		if !s.protectWrite(w, r) {
			return
		}
		if err := s.app.DeleteShop(r.Context(), id); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
