package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"garagelog/internal/app"
	"garagelog/internal/auth"
	"garagelog/internal/ratelimit"
	"garagelog/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                     *app.App
	Auth                    *auth.Authenticator
	RedisAddr               string
	RedisPassword           string
	WriteRateLimitPerMinute int
	MaxUploadBytes          int64
	TrustedProxies          *util.TrustedProxies
}

// Server exposes the HTTP API over the application layer. Auth and write
// rate limiting are optional; when unconfigured the corresponding checks
// are skipped.
type Server struct {
	app            *app.App
	auth           *auth.Authenticator
	mux            *http.ServeMux
	maxUploadBytes int64
	writeLimiter   *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		limit := cfg.WriteRateLimitPerMinute
		if limit <= 0 {
			limit = 60
		}
		var err error
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "garagelog:ratelimit:write", limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init write limiter: %w", err)
		}
	}
	s := &Server{
		app:            cfg.App,
		auth:           cfg.Auth,
		mux:            http.NewServeMux(),
		maxUploadBytes: normalizeMaxBytes(cfg.MaxUploadBytes),
		writeLimiter:   limiter,
		trustedProxies: cfg.TrustedProxies,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/dashboard", s.handleDashboard)

	s.mux.HandleFunc("/api/vehicles", s.handleVehicles)
	s.mux.HandleFunc("/api/vehicles/", s.handleVehicleByID)
	s.mux.HandleFunc("/api/maintenance", s.handleMaintenance)
	s.mux.HandleFunc("/api/maintenance/", s.handleMaintenanceByID)
	s.mux.HandleFunc("/api/parts", s.handleParts)
	s.mux.HandleFunc("/api/parts/", s.handlePartByID)
	s.mux.HandleFunc("/api/shops", s.handleShops)
	s.mux.HandleFunc("/api/shops/", s.handleShopByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.auth == nil {
		writeError(w, http.StatusNotFound, "auth is not configured")
		return
	}
	if !s.allowWrite(w, r) {
		s.audit(r, "auth.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, err := s.auth.Login(req.Password)
	if err != nil {
		s.audit(r, "auth.login", "fail")
		writeError(w, http.StatusUnauthorized, "bad credentials")
		return
	}
	s.audit(r, "auth.login", "success")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.app.Dashboard(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// protectWrite gates mutating requests behind the write rate limiter and
// bearer-token auth. Returns false after writing the error response.
func (s *Server) protectWrite(w http.ResponseWriter, r *http.Request) bool {
	if !s.allowWrite(w, r) {
		s.audit(r, "write", "rate_limited")
		return false
	}
	if s.auth == nil {
		return true
	}
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "write.authorize", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if err := s.auth.Verify(token); err != nil {
		s.audit(r, "write.authorize", "fail", "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func (s *Server) allowWrite(w http.ResponseWriter, r *http.Request) bool {
	if s.writeLimiter == nil {
		return true
	}
	key := util.ClientIP(r, s.trustedProxies)
	if s.writeLimiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "too many write requests")
	return false
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 20 * 1024 * 1024
	}
	return value
}

// splitResource splits the path remainder after a collection prefix into
// the entity ID and any sub-resource segments.
func splitResource(path, prefix string) (id string, rest []string) {
	trimmed := strings.TrimPrefix(path, prefix)
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return "", nil
	}
	parts := strings.Split(trimmed, "/")
	return parts[0], parts[1:]
}
