package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/db"
	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/session"
	"github.com/erazemk/armory/internal/store"
)

type fakeProvider struct {
	role string
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (*auth.Grant, error) {
	if password != "password" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Grant{
		AccessToken: "backend-token",
		ExpiresAt:   time.Now().Add(time.Hour),
		Email:       email,
		Role:        p.role,
	}, nil
}

func (p *fakeProvider) UpdatePassword(context.Context, string, string) error {
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// setupTestServer starts the API in front of a fake backend and signs in
// with the given role.
func setupTestServer(t *testing.T, role string, backendMux *http.ServeMux) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	key, err := store.GetSessionKey(context.Background(), database)
	if err != nil {
		t.Fatalf("GetSessionKey: %v", err)
	}

	be := httptest.NewServer(backendMux)
	t.Cleanup(be.Close)

	sessions := &session.Manager{
		Secret:   "test-secret",
		Store:    store.NewSessions(database, key),
		Provider: &fakeProvider{role: role},
		Backend:  backend.New(be.URL, nil),
		Rules:    finance.DefaultRules(),
	}
	server := httptest.NewServer(LoggingMiddleware(NewRouter(sessions)))
	t.Cleanup(server.Close)

	body, _ := json.Marshal(map[string]string{"email": "ann@example.com", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Success bool          `json:"success"`
		Data    loginResponse `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if !loginResp.Success || loginResp.Data.Token == "" {
		t.Fatal("empty token from login")
	}

	return server, loginResp.Data.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func decodeEnvelope(t *testing.T, resp *http.Response, data any) envelope {
	t.Helper()
	defer resp.Body.Close()
	var raw struct {
		Success bool              `json:"success"`
		Data    json.RawMessage   `json:"data"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
	}
	return envelope{Success: raw.Success, Error: raw.Error, Fields: raw.Fields}
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	body, _ := json.Marshal(map[string]string{"email": "ann@example.com", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp, nil)
	if env.Success || env.Error == "" {
		t.Errorf("expected failure envelope, got %+v", env)
	}

	body, _ = json.Marshal(map[string]string{"email": " "})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing credentials, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRequiresSession(t *testing.T) {
	server, _ := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	resp, _ := http.Get(server.URL + "/api/search/loans?q=smith")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := authRequest("GET", server.URL+"/api/search/loans?q=smith", "forged", nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for forged token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRequestID(t *testing.T) {
	server, _ := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	resp, _ := http.Get(server.URL + "/api/nope")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected request id header")
	}

	req, _ := http.NewRequest("GET", server.URL+"/api/nope", nil)
	req.Header.Set(RequestIDHeader, "01J0000000000000000000000A")
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "01J0000000000000000000000A" {
		t.Errorf("expected incoming request id to be kept, got %q", got)
	}
}

func TestSearchLoans(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer backend-token" {
			t.Errorf("expected session token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("q") != "Smith" {
			t.Errorf("expected term Smith, got %q", r.URL.Query().Get("q"))
		}
		writeJSON(w, []map[string]any{{"loan_id": "L1"}})
	})
	mux.HandleFunc("GET /api/v1/loans/L1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "data": map[string]any{
			"id":           "L1",
			"customer_id":  "C1",
			"firearm_cost": "1000",
			"loan_amount":  800,
			"duration":     12,
			"status":       "Grace",
			"customer":     map[string]any{"id": "C1", "full_name": "Ann Smith"},
		}})
	})
	server, token := setupTestServer(t, model.RoleStaff, mux)

	req, _ := authRequest("GET", server.URL+"/api/search/loans?full_name=Smith", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var loans []model.LoanData
	env := decodeEnvelope(t, resp, &loans)
	if !env.Success {
		t.Fatalf("expected success, got %+v", env)
	}
	if len(loans) != 1 || loans[0].LoanID != "L1" || loans[0].FullName != "Ann Smith" {
		t.Errorf("unexpected loans %+v", loans)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	server, token := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	req, _ := authRequest("GET", server.URL+"/api/search/loans", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var loans []model.LoanData
	decodeEnvelope(t, resp, &loans)
	if len(loans) != 0 {
		t.Errorf("expected no loans, got %d", len(loans))
	}
}

func TestSearchBackendFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]any{"message": "database down"})
	})
	server, token := setupTestServer(t, model.RoleStaff, mux)

	req, _ := authRequest("GET", server.URL+"/api/search/loans?q=Smith", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp, nil)
	if env.Success || env.Error == "" {
		t.Errorf("expected failure envelope, got %+v", env)
	}
}

func TestCalcLoanAmount(t *testing.T) {
	server, token := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	tests := []struct {
		query string
		want  string
	}{
		{"firearm_cost=1000&deposit_amount=200", "800"},
		{"firearm_cost=1,500.50&deposit_amount=", "1500.5"},
		{"firearm_cost=100&deposit_amount=500", "0"},
		{"firearm_cost=abc&deposit_amount=1", ""},
	}
	for _, tt := range tests {
		req, _ := authRequest("GET", server.URL+"/api/calc/loan-amount?"+tt.query, token, nil)
		resp, _ := http.DefaultClient.Do(req)
		var got loanAmountResponse
		decodeEnvelope(t, resp, &got)
		if got.LoanAmount != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.query, tt.want, got.LoanAmount)
		}
	}
}

func TestCalcPaidTime(t *testing.T) {
	server, token := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	req, _ := authRequest("GET", server.URL+"/api/calc/paid-time?progress=50&duration=12", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	var got paidTimeResponse
	decodeEnvelope(t, resp, &got)
	if got.PaidMonths != 6 || got.PaidDays != 0 || got.RemainingMonths != 6 || got.TotalDays != 360 {
		t.Errorf("unexpected paid time %+v", got)
	}

	req, _ = authRequest("GET", server.URL+"/api/calc/paid-time?progress=50&duration=0", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for zero duration, got %d", resp.StatusCode)
	}
}

func TestStaffRequiresAdmin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/admin/staff", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"id": "u1", "email": "bob@example.com", "role": "staff"}})
	})

	server, token := setupTestServer(t, model.RoleManager, mux)
	req, _ := authRequest("GET", server.URL+"/api/staff", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for manager, got %d", resp.StatusCode)
	}

	server, token = setupTestServer(t, model.RoleAdmin, mux)
	req, _ = authRequest("GET", server.URL+"/api/staff", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
	var staff []model.Staff
	decodeEnvelope(t, resp, &staff)
	if len(staff) != 1 {
		t.Errorf("expected 1 staff member, got %d", len(staff))
	}
}

func TestLogout(t *testing.T) {
	server, token := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/calc/loan-amount", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestSetPasswordTooShort(t *testing.T) {
	server, token := setupTestServer(t, model.RoleStaff, http.NewServeMux())

	req, _ := authRequest("PUT", server.URL+"/api/auth/password", token, map[string]string{"password": "short"})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
