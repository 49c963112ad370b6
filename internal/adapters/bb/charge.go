package bb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magnani/bb-pix/internal/domain"
)

// Nome da informação adicional que carrega o tipo da chave de destino
const infoKeyType = "tipoChave"

// CreatePixChargeGateway cria cobranças PIX imediatas no BB.
// Cada chamada faz exatamente uma requisição, sem retentativas.
type CreatePixChargeGateway struct {
	client apiClient
}

// NewCreatePixChargeGateway cria o gateway com um token já obtido
func NewCreatePixChargeGateway(accessToken string, cfg GatewayConfig, opts ...Option) *CreatePixChargeGateway {
	return &CreatePixChargeGateway{client: newAPIClient(accessToken, cfg, opts)}
}

// CreateCharge cria a cobrança e devolve txid e copia e cola.
// Toda falha é devolvida como *CreatePixChargeError (código 1001).
func (g *CreatePixChargeGateway) CreateCharge(ctx context.Context, data domain.PixData) (*domain.ChargeResult, error) {
	body, err := buildCobRequest(data)
	if err != nil {
		return nil, newCreatePixChargeError(fmt.Errorf("%w: %v", ErrValidation, err))
	}

	// Sem txid o BB gera o identificador
	method, path := http.MethodPost, "/cob"
	if data.TxID != "" {
		method, path = http.MethodPut, "/cob/"+url.PathEscape(data.TxID)
	}

	respBody, err := g.client.do(ctx, opCreateCharge, method, path, data.CertFile, body)
	if err != nil {
		return nil, newCreatePixChargeError(err)
	}

	var resp CobResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, newCreatePixChargeError(fmt.Errorf("%w: erro ao decodificar resposta: %v", ErrUnknown, err))
	}

	result := &domain.ChargeResult{
		TxID:         resp.TxID,
		CopyPasteKey: resp.CopyPasteKey(),
	}
	if result.TxID == "" || result.CopyPasteKey == "" {
		return nil, newCreatePixChargeError(fmt.Errorf("%w: resposta sem txid ou pixCopiaECola", ErrUnknown))
	}

	return result, nil
}

// buildCobRequest converte PixData no corpo esperado pelo BB
func buildCobRequest(data domain.PixData) (*CobRequest, error) {
	if !domain.IsValidAmount(data.Amount) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, data.Amount.String())
	}
	keyType, err := keyTypeDiscriminator(data.KeyType)
	if err != nil {
		return nil, err
	}

	return &CobRequest{
		Calendario: PixCalendario{
			Expiracao: data.Expiration(),
		},
		Devedor: &PixDevedor{
			CPF:  data.SenderCPF,
			Nome: data.SenderName,
		},
		Valor: PixValor{
			Original: data.FormattedAmount(),
		},
		Chave:          data.DestinationKey,
		SolicitacaoPag: data.Description,
		InfoAdicionais: []PixInfoAdicional{
			{Nome: infoKeyType, Valor: keyType},
		},
	}, nil
}

// keyTypeDiscriminator mapeia o tipo de chave para o valor usado pelo BB.
// Um novo PixKeyType precisa de um case aqui (coberto por teste).
func keyTypeDiscriminator(k domain.PixKeyType) (string, error) {
	switch k {
	case domain.PixKeyTypeCPF:
		return "cpf", nil
	case domain.PixKeyTypeCNPJ:
		return "cnpj", nil
	case domain.PixKeyTypePhone:
		return "telefone", nil
	case domain.PixKeyTypeEmail:
		return "email", nil
	case domain.PixKeyTypeRandomKey:
		return "aleatoria", nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidPixKeyType, string(k))
}
