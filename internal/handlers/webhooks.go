// Package handlers contém os handlers HTTP da aplicação
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/magnani/bb-pix/internal/adapters/bb"
	"github.com/magnani/bb-pix/internal/domain"
	"github.com/magnani/bb-pix/internal/ports"
)

// NewPixWebhookHandler monta o receptor de notificações do BB repassando
// cada PIX recebido para onPayment
func NewPixWebhookHandler(onPayment ports.PixPaymentHandler, logger *zap.Logger) *bb.WebhookHandler {
	wh := bb.NewWebhookHandler(logger)
	wh.OnPixPayment = onPayment
	return wh
}

// PixReceivedLogger devolve um handler que apenas registra o PIX recebido
func PixReceivedLogger(logger *zap.Logger) ports.PixPaymentHandler {
	return func(ctx context.Context, payment domain.PixPayment) error {
		if !payment.HasCharge() {
			logger.Info("PIX recebido sem cobrança associada",
				zap.String("end_to_end_id", payment.EndToEndID),
				zap.String("valor", payment.Amount.StringFixed(2)),
			)
			return nil
		}

		logger.Info("pagamento recebido",
			zap.String("txid", payment.TxID),
			zap.String("end_to_end_id", payment.EndToEndID),
			zap.String("valor", payment.Amount.StringFixed(2)),
			zap.Time("horario", payment.PaidAt),
		)
		return nil
	}
}

// HealthCheck endpoint para verificar se o servidor está funcionando
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "bb-pix",
	})
}
