package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"kasklub/internal/auth"
	applog "kasklub/internal/log"
	"kasklub/internal/services"
	"kasklub/internal/storage"
)

const (
	testUsername = "admin"
	testPassword = "admin"
	testToken    = "admin_session_token"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := storage.NewMemoryStore()
	svc := services.NewLedgerService(store, nil)
	gate := auth.NewGate(testUsername, testPassword, testToken)
	logger := applog.New(applog.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})

	srv := NewServer(":0", svc, gate, logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func createTransaction(t *testing.T, ts *httptest.Server, date, description, category string, amount float64) string {
	t.Helper()

	resp, raw := doJSON(t, ts, http.MethodPost, "/api/transactions", testToken, map[string]any{
		"date":        date,
		"description": description,
		"category":    category,
		"amount":      amount,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create transaction: status %d, body %s", resp.StatusCode, raw)
	}

	var stored struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("create response has empty id")
	}
	return stored.ID
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
	}{
		{"valid credentials", testUsername, testPassword, http.StatusOK},
		{"wrong password", testUsername, "nope", http.StatusUnauthorized},
		{"wrong username", "root", testPassword, http.StatusUnauthorized},
		{"empty credentials", "", "", http.StatusUnauthorized},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := doJSON(t, ts, http.MethodPost, "/api/login", "", map[string]string{
				"username": tt.username,
				"password": tt.password,
			})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, raw)
			}

			if tt.wantStatus == http.StatusOK {
				var body loginResponse
				if err := json.Unmarshal(raw, &body); err != nil {
					t.Fatalf("decode login response: %v", err)
				}
				if body.Token != testToken {
					t.Errorf("token = %q, want %q", body.Token, testToken)
				}
			} else {
				var body errorResponse
				if err := json.Unmarshal(raw, &body); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if body.Error == "" {
					t.Error("error response has empty error field")
				}
			}
		})
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"create without token", http.MethodPost, "/api/transactions", ""},
		{"create with wrong token", http.MethodPost, "/api/transactions", "not-the-token"},
		{"delete without token", http.MethodDelete, "/api/transactions/some-id", ""},
		{"delete with wrong token", http.MethodDelete, "/api/transactions/some-id", "not-the-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := doJSON(t, ts, tt.method, tt.path, tt.token, map[string]any{
				"date": "2024-03-01", "description": "x", "category": "income", "amount": 10,
			})
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401 (body %s)", resp.StatusCode, raw)
			}
		})
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	ts := newTestServer(t)

	createTransaction(t, ts, "2024-03-01", "Monthly dues", "income", 50000)
	createTransaction(t, ts, "2024-03-10", "Shuttlecocks", "expense", 75000)

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/transactions", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, body %s", resp.StatusCode, raw)
	}

	var rows []transactionResponse
	if err := json.Unmarshal(raw, &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	// Newest transaction date first
	if rows[0].Description != "Shuttlecocks" {
		t.Errorf("rows[0].Description = %q, want Shuttlecocks", rows[0].Description)
	}
	if rows[0].Date != "10 March 2024" {
		t.Errorf("rows[0].Date = %q, want 10 March 2024", rows[0].Date)
	}

	// Category mirror fields
	if rows[0].ExpenseAmount == nil || *rows[0].ExpenseAmount != 75000 {
		t.Errorf("expense row should mirror amount into expenseAmount, got %+v", rows[0])
	}
	if rows[0].IncomeAmount != nil {
		t.Errorf("expense row should not carry incomeAmount, got %v", *rows[0].IncomeAmount)
	}
	if rows[1].IncomeAmount == nil || *rows[1].IncomeAmount != 50000 {
		t.Errorf("income row should mirror amount into incomeAmount, got %+v", rows[1])
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "unknown category",
			body:       map[string]any{"date": "2024-03-01", "description": "x", "category": "transfer", "amount": 10},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "zero amount",
			body:       map[string]any{"date": "2024-03-01", "description": "x", "category": "income", "amount": 0},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "negative amount",
			body:       map[string]any{"date": "2024-03-01", "description": "x", "category": "expense", "amount": -5},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing description",
			body:       map[string]any{"date": "2024-03-01", "description": "  ", "category": "income", "amount": 10},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "bad date",
			body:       map[string]any{"date": "yesterday", "description": "x", "category": "income", "amount": 10},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := doJSON(t, ts, http.MethodPost, "/api/transactions", testToken, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, raw)
			}
		})
	}
}

func TestCreateTransactionMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/transactions", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateTransactionStringAmount(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doJSON(t, ts, http.MethodPost, "/api/transactions", testToken, map[string]any{
		"date":        "2024-03-01",
		"description": "Court rental",
		"category":    "expense",
		"amount":      "150000.50",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var stored storedTransactionResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stored.Amount != 150000.50 {
		t.Errorf("Amount = %v, want 150000.50", stored.Amount)
	}
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t)

	createTransaction(t, ts, "2024-03-01", "Dues", "income", 50000)
	createTransaction(t, ts, "2024-03-05", "Dues", "income", 75000)
	createTransaction(t, ts, "2024-03-10", "Court rental", "expense", 200000)

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/summary", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", resp.StatusCode, raw)
	}

	var s summaryResponse
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.TotalIncome != 125000 {
		t.Errorf("TotalIncome = %v, want 125000", s.TotalIncome)
	}
	if s.TotalExpense != 200000 {
		t.Errorf("TotalExpense = %v, want 200000", s.TotalExpense)
	}
	if s.Balance != -75000 {
		t.Errorf("Balance = %v, want -75000", s.Balance)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ts := newTestServer(t)

	id := createTransaction(t, ts, "2024-03-01", "Dues", "income", 50000)

	resp, raw := doJSON(t, ts, http.MethodDelete, "/api/transactions/"+id, testToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", resp.StatusCode, raw)
	}
	var msg messageResponse
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	if msg.Message == "" {
		t.Error("delete response has empty message")
	}

	// Second delete of the same id misses
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/transactions/"+id, testToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", resp.StatusCode)
	}

	resp, raw = doJSON(t, ts, http.MethodGet, "/api/transactions", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var rows []transactionResponse
	if err := json.Unmarshal(raw, &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d after delete, want 0", len(rows))
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodDelete, "/api/transactions/no-such-id", testToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPreflightRequest(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/transactions", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/api/"} {
		resp, raw := doJSON(t, ts, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, body %s", path, resp.StatusCode, raw)
		}
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("203.0.113.7") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("203.0.113.7") {
		t.Error("request 61 within a minute should be rejected")
	}
	if !rl.allow("203.0.113.8") {
		t.Error("other client should not be affected")
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct public peer", "203.0.113.7:1234", "", "203.0.113.7"},
		{"public peer forwarded header ignored", "203.0.113.7:1234", "198.51.100.1", "203.0.113.7"},
		{"trusted proxy honors forwarded header", "10.0.0.1:1234", "198.51.100.1", "198.51.100.1"},
		{"trusted proxy garbage header falls back", "10.0.0.1:1234", "not-an-ip", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
