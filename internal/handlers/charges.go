package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/magnani/bb-pix/internal/adapters/bb"
	"github.com/magnani/bb-pix/internal/domain"
	"github.com/magnani/bb-pix/internal/logging"
	"github.com/magnani/bb-pix/internal/ports"
)

// CreateChargeRequest é o corpo de POST /api/charges.
// O certificado mTLS é sempre o configurado no servidor.
type CreateChargeRequest struct {
	Nome        string            `json:"nome"`
	CPF         string            `json:"cpf"`
	Valor       decimal.Decimal   `json:"valor"`
	Chave       string            `json:"chave"`
	TipoChave   domain.PixKeyType `json:"tipoChave"`
	TxID        string            `json:"txid,omitempty"`
	Solicitacao string            `json:"solicitacaoPagador,omitempty"`
	Expiracao   int               `json:"expiracao,omitempty"`
}

// ChargeResponse é o corpo de GET /api/charges/{txid}
type ChargeResponse struct {
	*domain.Charge
	Paga       bool `json:"paga"`
	Expirada   bool `json:"expirada"`
	Finalizada bool `json:"finalizada"`
}

// ErrorResponse é o corpo devolvido em falhas
type ErrorResponse struct {
	Code    int    `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// ChargeHandler expõe criação e consulta de cobranças
type ChargeHandler struct {
	provider ports.PixChargeProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewChargeHandler cria o handler de cobranças
func NewChargeHandler(provider ports.PixChargeProvider, logger *zap.Logger) *ChargeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChargeHandler{provider: provider, logger: logger, now: time.Now}
}

// Create processa POST /api/charges
func (h *ChargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "JSON inválido: " + err.Error()})
		return
	}

	data, err := domain.NewPixData(req.Nome, req.CPF, req.Valor, req.Chave, req.TipoChave, "")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}
	data = data.WithTxID(req.TxID).WithDescription(req.Solicitacao)
	if req.Expiracao > 0 {
		data = data.WithExpiration(req.Expiracao)
	}

	result, err := h.provider.CreateCharge(r.Context(), data)
	if err != nil {
		h.logger.Warn("falha ao criar cobrança",
			zap.String("cpf", logging.MaskDocument(req.CPF)),
			zap.String("valor", data.FormattedAmount()),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}

	h.logger.Info("cobrança criada", zap.String("txid", result.TxID))
	writeJSON(w, http.StatusCreated, result)
}

// Get processa GET /api/charges/{txid}
func (h *ChargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	txid := chi.URLParam(r, "txid")

	charge, err := h.provider.GetCharge(r.Context(), txid, "")
	if err != nil {
		if bb.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Code: bb.ErrorCode(err), Message: "cobrança não encontrada"})
			return
		}
		h.logger.Warn("falha ao consultar cobrança", zap.String("txid", txid), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChargeResponse{
		Charge:     charge,
		Paga:       charge.IsPaid(),
		Expirada:   charge.IsExpired(h.now()),
		Finalizada: charge.Status.IsFinal(),
	})
}

// statusForKind traduz a categoria do erro em status HTTP
func statusForKind(kind bb.ErrorKind) int {
	switch kind {
	case bb.KindValidation:
		return http.StatusUnprocessableEntity
	case bb.KindConnectivity:
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func writeError(w http.ResponseWriter, err error) {
	kind := bb.KindOf(err)
	resp := ErrorResponse{
		Code:    bb.ErrorCode(err),
		Kind:    string(kind),
		Message: err.Error(),
	}
	// Falhas locais (certificado, serialização) não são expostas ao chamador
	if kind == bb.KindUnknown {
		resp.Message = "erro interno ao processar cobrança"
	}
	if errors.Is(err, domain.ErrInvalidPixKeyType) || errors.Is(err, domain.ErrInvalidAmount) {
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}
	writeJSON(w, statusForKind(kind), resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
