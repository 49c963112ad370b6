package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultChargeExpiration é a expiração padrão de uma cobrança imediata (1 hora)
const DefaultChargeExpiration = 3600

var (
	// ErrInvalidPixKeyType indica um tipo de chave PIX fora do conjunto suportado
	ErrInvalidPixKeyType = errors.New("tipo de chave PIX inválido")

	// ErrInvalidAmount indica valor nulo ou negativo
	ErrInvalidAmount = errors.New("valor da cobrança deve ser positivo")
)

// PixKeyType representa os tipos de chave PIX aceitos
type PixKeyType string

const (
	PixKeyTypeCPF       PixKeyType = "CPF"
	PixKeyTypeCNPJ      PixKeyType = "CNPJ"
	PixKeyTypePhone     PixKeyType = "PHONE"
	PixKeyTypeEmail     PixKeyType = "EMAIL"
	PixKeyTypeRandomKey PixKeyType = "RANDOM_KEY"
)

// PixKeyTypes lista todos os tipos de chave, na ordem do enum
var PixKeyTypes = []PixKeyType{
	PixKeyTypeCPF,
	PixKeyTypeCNPJ,
	PixKeyTypePhone,
	PixKeyTypeEmail,
	PixKeyTypeRandomKey,
}

// ParsePixKeyType converte uma string em PixKeyType.
// Apenas os cinco literais do enum são aceitos (comparação exata).
func ParsePixKeyType(s string) (PixKeyType, error) {
	k := PixKeyType(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPixKeyType, s)
	}
	return k, nil
}

// Valid retorna true se o tipo pertence ao enum
func (k PixKeyType) Valid() bool {
	switch k {
	case PixKeyTypeCPF, PixKeyTypeCNPJ, PixKeyTypePhone, PixKeyTypeEmail, PixKeyTypeRandomKey:
		return true
	}
	return false
}

func (k PixKeyType) String() string {
	return string(k)
}

// MarshalText implementa encoding.TextMarshaler
func (k PixKeyType) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPixKeyType, string(k))
	}
	return []byte(k), nil
}

// UnmarshalText implementa encoding.TextUnmarshaler
func (k *PixKeyType) UnmarshalText(text []byte) error {
	parsed, err := ParsePixKeyType(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// PixData descreve uma cobrança PIX a ser criada.
//
// Formato de CPF, e-mail ou telefone não é validado aqui: essas regras
// pertencem ao banco e são validadas por ele.
type PixData struct {
	SenderName     string          // Nome do pagador
	SenderCPF      string          // CPF do pagador (11 dígitos)
	Amount         decimal.Decimal // Valor em reais, sempre positivo
	DestinationKey string          // Chave PIX do recebedor
	KeyType        PixKeyType
	CertFile       string // Certificado mTLS (opcional)

	TxID        string // Identificador escolhido pelo integrador (opcional)
	Description string // Texto exibido ao pagador (opcional)
	ExpiresIn   int    // Expiração em segundos
}

// IsValidAmount verifica se o valor continua positivo após arredondar para centavos
func IsValidAmount(amount decimal.Decimal) bool {
	return amount.Round(2).IsPositive()
}

// NewPixData cria um PixData validando valor e tipo de chave
func NewPixData(senderName, senderCPF string, amount decimal.Decimal, destinationKey string, keyType PixKeyType, certFile string) (PixData, error) {
	if !IsValidAmount(amount) {
		return PixData{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	if !keyType.Valid() {
		return PixData{}, fmt.Errorf("%w: %q", ErrInvalidPixKeyType, string(keyType))
	}

	return PixData{
		SenderName:     senderName,
		SenderCPF:      senderCPF,
		Amount:         amount,
		DestinationKey: destinationKey,
		KeyType:        keyType,
		CertFile:       certFile,
		ExpiresIn:      DefaultChargeExpiration,
	}, nil
}

// WithTxID retorna uma cópia com o txid informado
func (p PixData) WithTxID(txid string) PixData {
	p.TxID = txid
	return p
}

// WithDescription retorna uma cópia com a solicitação ao pagador
func (p PixData) WithDescription(description string) PixData {
	p.Description = description
	return p
}

// WithExpiration retorna uma cópia com a expiração em segundos
func (p PixData) WithExpiration(seconds int) PixData {
	p.ExpiresIn = seconds
	return p
}

// FormattedAmount retorna o valor com exatamente duas casas decimais (ex: "10.00")
func (p PixData) FormattedAmount() string {
	return p.Amount.StringFixed(2)
}

// Expiration retorna a expiração efetiva em segundos
func (p PixData) Expiration() int {
	if p.ExpiresIn <= 0 {
		return DefaultChargeExpiration
	}
	return p.ExpiresIn
}

// ChargeResult é o resultado de uma cobrança criada com sucesso
type ChargeResult struct {
	TxID         string `json:"txid"`
	CopyPasteKey string `json:"pixCopiaECola"`
}

// ChargeStatus representa o status de uma cobrança imediata
type ChargeStatus string

const (
	ChargeStatusActive            ChargeStatus = "ATIVA"
	ChargeStatusCompleted         ChargeStatus = "CONCLUIDA"
	ChargeStatusRemovedByReceiver ChargeStatus = "REMOVIDA_PELO_USUARIO_RECEBEDOR"
	ChargeStatusRemovedByPSP      ChargeStatus = "REMOVIDA_PELO_PSP"
)

// IsFinal retorna true se a cobrança não pode mais ser paga
func (s ChargeStatus) IsFinal() bool {
	return s == ChargeStatusCompleted || s == ChargeStatusRemovedByReceiver || s == ChargeStatusRemovedByPSP
}

// Charge representa uma cobrança consultada no banco
type Charge struct {
	TxID           string          `json:"txid"`
	Status         ChargeStatus    `json:"status"`
	Amount         decimal.Decimal `json:"valor"`
	DestinationKey string          `json:"chave"`
	Location       string          `json:"location,omitempty"`
	CopyPasteKey   string          `json:"pixCopiaECola,omitempty"`
	PayerName      string          `json:"nomePagador,omitempty"`
	PayerDocument  string          `json:"documentoPagador,omitempty"`
	CreatedAt      time.Time       `json:"criacao"`
	ExpiresIn      int             `json:"expiracao"`
}

// IsPaid verifica se a cobrança foi paga
func (c *Charge) IsPaid() bool {
	return c.Status == ChargeStatusCompleted
}

// IsExpired verifica se a cobrança ativa passou do prazo
func (c *Charge) IsExpired(now time.Time) bool {
	if c.Status != ChargeStatusActive || c.CreatedAt.IsZero() || c.ExpiresIn <= 0 {
		return false
	}
	return now.After(c.CreatedAt.Add(time.Duration(c.ExpiresIn) * time.Second))
}
