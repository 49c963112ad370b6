package bb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magnani/bb-pix/internal/domain"
)

// QueryPixChargeGateway consulta cobranças imediatas pelo txid
type QueryPixChargeGateway struct {
	client apiClient
}

// NewQueryPixChargeGateway cria o gateway com um token já obtido
func NewQueryPixChargeGateway(accessToken string, cfg GatewayConfig, opts ...Option) *QueryPixChargeGateway {
	return &QueryPixChargeGateway{client: newAPIClient(accessToken, cfg, opts)}
}

// GetCharge consulta uma cobrança. Falhas são *QueryPixChargeError (código 1002).
func (g *QueryPixChargeGateway) GetCharge(ctx context.Context, txid, certFile string) (*domain.Charge, error) {
	if txid == "" {
		return nil, newQueryPixChargeError(fmt.Errorf("%w: txid é obrigatório", ErrValidation))
	}

	respBody, err := g.client.do(ctx, opGetCharge, http.MethodGet, "/cob/"+url.PathEscape(txid), certFile, nil)
	if err != nil {
		return nil, newQueryPixChargeError(err)
	}

	var resp CobResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, newQueryPixChargeError(fmt.Errorf("%w: erro ao decodificar resposta: %v", ErrUnknown, err))
	}

	return toCharge(&resp)
}

func toCharge(resp *CobResponse) (*domain.Charge, error) {
	charge := &domain.Charge{
		TxID:           resp.TxID,
		Status:         domain.ChargeStatus(resp.Status),
		DestinationKey: resp.Chave,
		Location:       resp.Location,
		CopyPasteKey:   resp.CopyPasteKey(),
		ExpiresIn:      resp.Calendario.Expiracao,
	}

	if resp.Valor.Original != "" {
		amount, err := decimal.NewFromString(resp.Valor.Original)
		if err != nil {
			return nil, newQueryPixChargeError(fmt.Errorf("%w: valor inválido %q", ErrUnknown, resp.Valor.Original))
		}
		charge.Amount = amount
	}

	if resp.Calendario.Criacao != "" {
		createdAt, err := time.Parse(time.RFC3339, resp.Calendario.Criacao)
		if err != nil {
			return nil, newQueryPixChargeError(fmt.Errorf("%w: data de criação inválida %q", ErrUnknown, resp.Calendario.Criacao))
		}
		charge.CreatedAt = createdAt
	}

	if resp.Devedor != nil {
		charge.PayerName = resp.Devedor.Nome
		charge.PayerDocument = resp.Devedor.CPF
		if charge.PayerDocument == "" {
			charge.PayerDocument = resp.Devedor.CNPJ
		}
	}

	return charge, nil
}
