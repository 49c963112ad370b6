package bb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/magnani/bb-pix/internal/domain"
)

// MaxWebhookBodySize limita o corpo aceito em uma notificação
const MaxWebhookBodySize = 1 << 20

// WebhookHandler processa notificações de PIX recebido enviadas pelo BB
type WebhookHandler struct {
	// OnPixPayment é chamado uma vez para cada PIX da notificação
	OnPixPayment func(ctx context.Context, pix domain.PixPayment) error

	// OnError é chamado quando o processamento de um PIX falha
	OnError func(ctx context.Context, err error)

	Logger *zap.Logger
}

// NewWebhookHandler cria um novo handler de webhook
func NewWebhookHandler(logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{Logger: logger}
}

// ServeHTTP implementa http.Handler. Monte em POST /api/webhooks/bb.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var payload PixWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	for _, pix := range payload.Pix {
		if err := h.processPix(ctx, pix); err != nil {
			h.Logger.Error("erro ao processar PIX recebido",
				zap.String("end_to_end_id", pix.EndToEndID),
				zap.String("txid", pix.TxID),
				zap.Error(err),
			)
			if h.OnError != nil {
				h.OnError(ctx, err)
			}
			// Retorna 200 mesmo assim para evitar reenvios do banco
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *WebhookHandler) processPix(ctx context.Context, pix PixRecebido) error {
	payment, err := toPixPayment(pix)
	if err != nil {
		return err
	}

	h.Logger.Info("PIX recebido",
		zap.String("end_to_end_id", payment.EndToEndID),
		zap.String("txid", payment.TxID),
		zap.String("valor", payment.Amount.StringFixed(2)),
	)

	if h.OnPixPayment == nil {
		return nil
	}
	return h.OnPixPayment(ctx, payment)
}

func toPixPayment(pix PixRecebido) (domain.PixPayment, error) {
	amount, err := decimal.NewFromString(pix.Valor)
	if err != nil {
		return domain.PixPayment{}, fmt.Errorf("valor inválido %q no PIX %s: %w", pix.Valor, pix.EndToEndID, err)
	}
	return domain.PixPayment{
		EndToEndID: pix.EndToEndID,
		TxID:       pix.TxID,
		Amount:     amount,
		Key:        pix.Chave,
		PaidAt:     pix.Horario,
		PayerInfo:  pix.InfoPagador,
	}, nil
}

// WebhookConfig contém a configuração de webhook registrada
type WebhookConfig struct {
	URL      string `json:"webhookUrl"`
	ChavePix string `json:"chave"`
	Criacao  string `json:"criacao,omitempty"`
}

// GetWebhook consulta o webhook registrado para uma chave PIX.
// Retorna nil, nil quando não há webhook registrado.
func (c *Client) GetWebhook(ctx context.Context, pixKey string) (*WebhookConfig, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, WrapAPIError(opGetWebhook, err)
	}

	client := newAPIClient(token, c.cfg, c.opts)
	respBody, err := client.do(ctx, opGetWebhook, http.MethodGet, "/webhook/"+url.PathEscape(pixKey), "", nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		c.invalidateOnAuth(err)
		return nil, WrapAPIError(opGetWebhook, err)
	}

	var config WebhookConfig
	if err := json.Unmarshal(respBody, &config); err != nil {
		return nil, WrapAPIError(opGetWebhook, err)
	}

	return &config, nil
}
