package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"garagelog/internal/app"
	"garagelog/internal/store"
)

func newLimitedServer(t *testing.T, redisAddr string) *httptest.Server {
	t.Helper()
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	s, err := New(Config{
		App:                     appCore,
		RedisAddr:               redisAddr,
		WriteRateLimitPerMinute: 1,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestWriteRateLimit(t *testing.T) {
	redis := miniredis.RunT(t)
	srv := newLimitedServer(t, redis.Addr())

	body := `{"name":"Joe's Garage"}`
	resp1 := postJSON(t, srv.URL+"/api/shops", body)
	resp1.Body.Close()
	if resp1.StatusCode != http.StatusCreated {
		t.Fatalf("first write expected 201, got %d", resp1.StatusCode)
	}

	resp2 := postJSON(t, srv.URL+"/api/shops", body)
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second write expected 429, got %d", resp2.StatusCode)
	}
	if resp2.Header.Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", resp2.Header.Get("Retry-After"))
	}

	// Reads are never rate limited.
	listResp, err := http.Get(srv.URL + "/api/shops")
	if err != nil {
		t.Fatalf("GET /api/shops: %v", err)
	}
	listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("read expected 200, got %d", listResp.StatusCode)
	}
}

func TestRateLimitWindowResets(t *testing.T) {
	redis := miniredis.RunT(t)
	srv := newLimitedServer(t, redis.Addr())

	resp := postJSON(t, srv.URL+"/api/shops", `{"name":"Al's"}`)
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/shops", `{"name":"Mo's"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside window, got %d", resp.StatusCode)
	}

	redis.FastForward(61 * time.Second)

	resp = postJSON(t, srv.URL+"/api/shops", `{"name":"Mo's"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 after window reset, got %d", resp.StatusCode)
	}
}
