// Package ports define as interfaces (portas) para adaptadores externos
// Seguindo o padrão Hexagonal Architecture / Ports & Adapters
package ports

import (
	"context"

	"github.com/magnani/bb-pix/internal/domain"
)

// PixChargeProvider define a interface para o gateway PIX do banco
type PixChargeProvider interface {
	// CreateCharge cria uma nova cobrança PIX imediata
	CreateCharge(ctx context.Context, data domain.PixData) (*domain.ChargeResult, error)

	// GetCharge consulta uma cobrança PIX pelo txid
	GetCharge(ctx context.Context, txid, certFile string) (*domain.Charge, error)
}

// WebhookRegistrar registra a URL que recebe notificações de PIX
type WebhookRegistrar interface {
	RegisterWebhook(ctx context.Context, pixKey, webhookURL string) error
}

// PixPaymentHandler processa um PIX recebido via webhook
type PixPaymentHandler func(ctx context.Context, payment domain.PixPayment) error
