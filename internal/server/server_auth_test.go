package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garagelog/internal/app"
	"garagelog/internal/auth"
	"garagelog/internal/store"
)

func newAuthedServer(t *testing.T) *httptest.Server {
	t.Helper()
	hash, err := auth.HashPassword("wrench-turner")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authenticator, err := auth.New("test-secret", hash, time.Hour)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	s, err := New(Config{App: appCore, Auth: authenticator})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestWritesRequireTokenWhenAuthConfigured(t *testing.T) {
	srv := newAuthedServer(t)

	resp := postJSON(t, srv.URL+"/api/vehicles", `{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated write expected 401, got %d", resp.StatusCode)
	}

	// Reads stay open.
	listResp, err := http.Get(srv.URL + "/api/vehicles")
	if err != nil {
		t.Fatalf("GET /api/vehicles: %v", err)
	}
	listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("read expected 200, got %d", listResp.StatusCode)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	srv := newAuthedServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/login", `{"password":"wrench-turner"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeInto(t, resp, &body)
	token := body["token"]
	if token == "" {
		t.Fatal("expected token in login response")
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/vehicles",
		bytes.NewReader([]byte(`{"make":"Honda","model":"Civic","year":"2001","type":"CAR"}`)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	createResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed POST: %v", err)
	}
	createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("authed write expected 201, got %d", createResp.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newAuthedServer(t)
	resp := postJSON(t, srv.URL+"/api/auth/login", `{"password":"wrong"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password expected 401, got %d", resp.StatusCode)
	}
}

func TestForgedTokenRejected(t *testing.T) {
	srv := newAuthedServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/shops",
		bytes.NewReader([]byte(`{"name":"Joe's"}`)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+forgedToken(t))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("forged token expected 401, got %d", resp.StatusCode)
	}
}

// forgedToken signs a structurally valid token with the wrong secret.
func forgedToken(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("whatever")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	other, err := auth.New("different-secret", hash, time.Hour)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	token, err := other.Login("whatever")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return token
}
