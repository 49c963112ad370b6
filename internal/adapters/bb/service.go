package bb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magnani/bb-pix/internal/domain"
	"github.com/magnani/bb-pix/internal/ports"
)

// TokenSource fornece tokens de acesso (ex: *TokenManager)
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Client implementa ports.PixChargeProvider obtendo um token a cada chamada
// e montando o gateway correspondente.
type Client struct {
	tokens TokenSource
	cfg    GatewayConfig
	opts   []Option
}

// NewClient cria um cliente BB
func NewClient(tokens TokenSource, cfg GatewayConfig, opts ...Option) *Client {
	return &Client{tokens: tokens, cfg: cfg, opts: opts}
}

// CreateCharge cria uma cobrança imediata
func (c *Client) CreateCharge(ctx context.Context, data domain.PixData) (*domain.ChargeResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, newCreatePixChargeError(err)
	}

	result, err := NewCreatePixChargeGateway(token, c.cfg, c.opts...).CreateCharge(ctx, data)
	c.invalidateOnAuth(err)
	return result, err
}

// GetCharge consulta uma cobrança pelo txid
func (c *Client) GetCharge(ctx context.Context, txid, certFile string) (*domain.Charge, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, newQueryPixChargeError(err)
	}

	charge, err := NewQueryPixChargeGateway(token, c.cfg, c.opts...).GetCharge(ctx, txid, certFile)
	c.invalidateOnAuth(err)
	return charge, err
}

// RegisterWebhook registra a URL de webhook para uma chave PIX
func (c *Client) RegisterWebhook(ctx context.Context, pixKey, webhookURL string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return WrapAPIError(opRegisterWebhook, err)
	}

	client := newAPIClient(token, c.cfg, c.opts)
	path := fmt.Sprintf("/webhook/%s", url.PathEscape(pixKey))
	_, err = client.do(ctx, opRegisterWebhook, http.MethodPut, path, "", WebhookRequest{WebhookURL: webhookURL})
	c.invalidateOnAuth(err)
	if err != nil {
		return WrapAPIError(opRegisterWebhook, err)
	}
	return nil
}

func (c *Client) invalidateOnAuth(err error) {
	if err != nil && KindOf(err) == KindAuth {
		c.tokens.Invalidate()
	}
}

// Garante que Client implementa PixChargeProvider
var _ ports.PixChargeProvider = (*Client)(nil)
