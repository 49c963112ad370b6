package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PixPayment representa um PIX recebido, notificado pelo banco via webhook
type PixPayment struct {
	EndToEndID string          `json:"endToEndId"` // ID único da transação no SPI
	TxID       string          `json:"txid"`       // ID da cobrança (vazio para PIX sem cobrança)
	Amount     decimal.Decimal `json:"valor"`
	Key        string          `json:"chave"` // Chave PIX que recebeu
	PaidAt     time.Time       `json:"horario"`
	PayerInfo  string          `json:"infoPagador,omitempty"`
}

// HasCharge verifica se o pagamento está vinculado a uma cobrança
func (p *PixPayment) HasCharge() bool {
	return p.TxID != ""
}

