package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/magnani/bb-pix/internal/adapters/bb"
	"github.com/magnani/bb-pix/internal/domain"
	"github.com/magnani/bb-pix/internal/metrics"
)

type fakeProvider struct {
	created     domain.PixData
	queried     string
	queriedCert string
	result      *domain.ChargeResult
	charge      *domain.Charge
	err         error
}

func (f *fakeProvider) CreateCharge(_ context.Context, data domain.PixData) (*domain.ChargeResult, error) {
	f.created = data
	return f.result, f.err
}

func (f *fakeProvider) GetCharge(_ context.Context, txid, certFile string) (*domain.Charge, error) {
	f.queried = txid
	f.queriedCert = certFile
	return f.charge, f.err
}

const validBody = `{"nome":"LOJA EXEMPLO","cpf":"12345678909","valor":"10.5","chave":"pagamentos@example.com","tipoChave":"email","txid":"abc123"}`

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateCharge(t *testing.T) {
	provider := &fakeProvider{result: &domain.ChargeResult{TxID: "abc123", CopyPasteKey: "00020101021226"}}
	router := NewRouter(RouterConfig{Provider: provider})

	rec := doRequest(t, router, http.MethodPost, "/api/charges", validBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got domain.ChargeResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.TxID != "abc123" || got.CopyPasteKey != "00020101021226" {
		t.Errorf("response = %+v", got)
	}

	if provider.created.KeyType != domain.PixKeyTypeEmail {
		t.Errorf("KeyType = %v, want email", provider.created.KeyType)
	}
	if provider.created.FormattedAmount() != "10.50" {
		t.Errorf("amount = %v, want 10.50", provider.created.FormattedAmount())
	}
	if provider.created.TxID != "abc123" {
		t.Errorf("TxID = %v", provider.created.TxID)
	}
}

func TestCreateChargeIgnoresCallerCertificate(t *testing.T) {
	provider := &fakeProvider{result: &domain.ChargeResult{TxID: "abc123", CopyPasteKey: "00020101021226"}}
	body := strings.Replace(validBody, `"txid":"abc123"`, `"txid":"abc123","certificado":"/etc/passwd"`, 1)

	rec := doRequest(t, NewRouter(RouterConfig{Provider: provider}), http.MethodPost, "/api/charges", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if provider.created.CertFile != "" {
		t.Errorf("CertFile = %q, want configured certificate", provider.created.CertFile)
	}
}

func TestGetChargeIgnoresCallerCertificate(t *testing.T) {
	provider := &fakeProvider{charge: &domain.Charge{TxID: "abc123", Status: domain.ChargeStatusActive}}

	rec := doRequest(t, NewRouter(RouterConfig{Provider: provider}), http.MethodGet, "/api/charges/abc123?certificado=/etc/passwd", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if provider.queriedCert != "" {
		t.Errorf("certFile = %q, want configured certificate", provider.queriedCert)
	}
}

func TestUnknownErrorDetailsAreHidden(t *testing.T) {
	err := fmt.Errorf("%w: erro ao ler certificado: open /etc/nope: no such file or directory", bb.ErrUnknown)
	router := NewRouter(RouterConfig{Provider: &fakeProvider{err: err}})

	rec := doRequest(t, router, http.MethodPost, "/api/charges", validBody)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "/etc/nope") {
		t.Errorf("response leaks local error: %s", rec.Body.String())
	}
}

func TestCreateChargeBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"nome":`},
		{"invalid key type", strings.Replace(validBody, `"email"`, `"pix"`, 1)},
		{"zero amount", strings.Replace(validBody, `"10.5"`, `"0"`, 1)},
		{"amount below one cent", strings.Replace(validBody, `"10.5"`, `"0.001"`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			rec := doRequest(t, NewRouter(RouterConfig{Provider: provider}), http.MethodPost, "/api/charges", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if provider.created.SenderName != "" {
				t.Error("provider should not be called")
			}
		})
	}
}

func TestCreateChargeErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantKind string
	}{
		{"validation", fmt.Errorf("rejeitada: %w", bb.ErrValidation), http.StatusUnprocessableEntity, "validation"},
		{"connectivity", fmt.Errorf("timeout: %w", bb.ErrConnectivity), http.StatusServiceUnavailable, "connectivity"},
		{"auth", fmt.Errorf("token: %w", bb.ErrAuth), http.StatusBadGateway, "auth"},
		{"unknown", fmt.Errorf("falha"), http.StatusBadGateway, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterConfig{Provider: &fakeProvider{err: tt.err}})

			rec := doRequest(t, router, http.MethodPost, "/api/charges", validBody)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}

			var resp ErrorResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", resp.Kind, tt.wantKind)
			}
		})
	}
}

func TestGetCharge(t *testing.T) {
	provider := &fakeProvider{charge: &domain.Charge{
		TxID:   "abc123",
		Status: domain.ChargeStatusActive,
		Amount: decimal.RequireFromString("10.50"),
	}}

	rec := doRequest(t, NewRouter(RouterConfig{Provider: provider}), http.MethodGet, "/api/charges/abc123", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if provider.queried != "abc123" {
		t.Errorf("queried txid = %v", provider.queried)
	}

	var resp ChargeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Paga || resp.Finalizada || resp.Expirada {
		t.Errorf("flags = paga:%v finalizada:%v expirada:%v", resp.Paga, resp.Finalizada, resp.Expirada)
	}
}

func TestGetChargeStateFlags(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		charge      domain.Charge
		wantPaid    bool
		wantExpired bool
		wantFinal   bool
	}{
		{"active expired", domain.Charge{Status: domain.ChargeStatusActive, CreatedAt: created, ExpiresIn: 3600}, false, true, false},
		{"completed", domain.Charge{Status: domain.ChargeStatusCompleted, CreatedAt: created, ExpiresIn: 3600}, true, false, true},
		{"removed", domain.Charge{Status: domain.ChargeStatusRemovedByPSP}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge := tt.charge
			charge.TxID = "abc123"
			h := NewChargeHandler(&fakeProvider{charge: &charge}, nil)
			h.now = func() time.Time { return created.Add(2 * time.Hour) }

			r := chi.NewRouter()
			r.Get("/api/charges/{txid}", h.Get)

			rec := doRequest(t, r, http.MethodGet, "/api/charges/abc123", "")
			var resp ChargeResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Paga != tt.wantPaid || resp.Expirada != tt.wantExpired || resp.Finalizada != tt.wantFinal {
				t.Errorf("flags = paga:%v expirada:%v finalizada:%v", resp.Paga, resp.Expirada, resp.Finalizada)
			}
		})
	}
}

func TestGetChargeNotFound(t *testing.T) {
	provider := &fakeProvider{err: &bb.APIError{HTTPStatus: http.StatusNotFound, Title: "Cobrança não encontrada."}}

	rec := doRequest(t, NewRouter(RouterConfig{Provider: provider}), http.MethodGet, "/api/charges/desconhecido", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewRecorder(reg).Observe("create_charge", "success", 0)

	router := NewRouter(RouterConfig{Provider: &fakeProvider{}, Registry: reg})

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bb_requests_total") {
		t.Errorf("metrics = %d %s", rec.Code, rec.Body.String())
	}
}
