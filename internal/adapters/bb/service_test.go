package bb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticTokens struct {
	token       string
	invalidated int
}

func (s *staticTokens) Token(context.Context) (string, error) {
	return s.token, nil
}

func (s *staticTokens) Invalidate() {
	s.invalidated++
}

func TestClientCreateCharge(t *testing.T) {
	var gotAuth string
	srv := newBankServer(t, http.StatusCreated, "valid-charge-payload.json", func(r *http.Request, _ []byte) {
		gotAuth = r.Header.Get("Authorization")
	})

	tokens := &staticTokens{token: "cached-token"}
	client := NewClient(tokens, testConfig(srv.URL), WithHTTPDoer(srv.Client()))

	result, err := client.CreateCharge(context.Background(), testPixData(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TxID == "" || result.CopyPasteKey == "" {
		t.Errorf("result = %+v", result)
	}
	if gotAuth != "Bearer cached-token" {
		t.Errorf("Authorization = %v", gotAuth)
	}
	if tokens.invalidated != 0 {
		t.Errorf("token should not be invalidated on success")
	}
}

func TestClientInvalidatesTokenOnUnauthorized(t *testing.T) {
	srv := newBankServer(t, http.StatusUnauthorized, "unauthorized-payload.json", nil)

	tokens := &staticTokens{token: "expired"}
	client := NewClient(tokens, testConfig(srv.URL), WithHTTPDoer(srv.Client()))

	if _, err := client.CreateCharge(context.Background(), testPixData(t)); err == nil {
		t.Fatal("expected error")
	}
	if _, err := client.GetCharge(context.Background(), "tx1", ""); err == nil {
		t.Fatal("expected error")
	}
	if tokens.invalidated != 2 {
		t.Errorf("invalidated = %d, want 2", tokens.invalidated)
	}
}

func TestClientGetCharge(t *testing.T) {
	var gotPath, gotMethod string
	srv := newBankServer(t, http.StatusOK, "valid-charge-payload.json", func(r *http.Request, _ []byte) {
		gotPath = r.URL.Path
		gotMethod = r.Method
	})

	client := NewClient(&staticTokens{token: "t"}, testConfig(srv.URL), WithHTTPDoer(srv.Client()))

	charge, err := client.GetCharge(context.Background(), "7978c0c97ea847e78e8849634473c1f1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodGet || gotPath != "/cob/7978c0c97ea847e78e8849634473c1f1" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if charge.Amount.StringFixed(2) != "10.00" {
		t.Errorf("Amount = %v", charge.Amount)
	}
	if charge.Status != "ATIVA" || charge.PayerDocument != "01234567890" {
		t.Errorf("charge = %+v", charge)
	}
	if charge.CreatedAt.IsZero() || charge.ExpiresIn != 3600 {
		t.Errorf("calendario not mapped: %+v", charge)
	}
}

func TestQueryGatewayErrors(t *testing.T) {
	srv := newBankServer(t, http.StatusNotFound, "", nil)
	gateway := NewQueryPixChargeGateway(testToken, testConfig(srv.URL), WithHTTPDoer(srv.Client()))

	_, err := gateway.GetCharge(context.Background(), "inexistente", "")
	if ErrorCode(err) != CodeQueryPixChargeFailed {
		t.Errorf("ErrorCode() = %d, want %d", ErrorCode(err), CodeQueryPixChargeFailed)
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound")
	}

	_, err = gateway.GetCharge(context.Background(), "", "")
	if !IsValidation(err) {
		t.Errorf("expected validation error for empty txid, got %v", err)
	}
}

func TestClientRegisterWebhook(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody WebhookRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(&staticTokens{token: "t"}, testConfig(srv.URL), WithHTTPDoer(srv.Client()))

	if err := client.RegisterWebhook(context.Background(), "loja@exemplo.com", "https://loja.exemplo.com/api/webhooks/bb"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/webhook/loja@exemplo.com" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody.WebhookURL != "https://loja.exemplo.com/api/webhooks/bb" {
		t.Errorf("webhookUrl = %v", gotBody.WebhookURL)
	}
}

func TestClientGetWebhookNotFound(t *testing.T) {
	srv := newBankServer(t, http.StatusNotFound, "", nil)
	client := NewClient(&staticTokens{token: "t"}, testConfig(srv.URL), WithHTTPDoer(srv.Client()))

	cfg, err := client.GetWebhook(context.Background(), "chave")
	if err != nil || cfg != nil {
		t.Errorf("GetWebhook() = %v, %v; want nil, nil", cfg, err)
	}
}
