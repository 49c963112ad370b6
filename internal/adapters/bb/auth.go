package bb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuthConfig configura a autenticação OAuth2 client-credentials
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	URLOverride  string
	Scopes       []string // vazio usa DefaultScopes

	CertificatePath     string
	CertificatePassword string
	Timeout             time.Duration
}

func (c AuthConfig) tokenURL() string {
	if c.URLOverride != "" {
		return c.URLOverride
	}
	if c.Sandbox {
		return OAuthURLSandbox
	}
	return OAuthURLProd
}

func (c AuthConfig) scope() string {
	if len(c.Scopes) == 0 {
		return strings.Join(DefaultScopes, " ")
	}
	return strings.Join(c.Scopes, " ")
}

// AuthenticationOutput é o token obtido no endpoint OAuth
type AuthenticationOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int // segundos
	Scope       string
}

// Authenticator obtém tokens de acesso
type Authenticator interface {
	Authenticate(ctx context.Context) (*AuthenticationOutput, error)
}

// AuthenticationGateway obtém tokens no OAuth do BB
type AuthenticationGateway struct {
	cfg    AuthConfig
	client apiClient
}

// NewAuthenticationGateway cria o gateway de autenticação
func NewAuthenticationGateway(cfg AuthConfig, opts ...Option) *AuthenticationGateway {
	gatewayCfg := GatewayConfig{
		Sandbox:             cfg.Sandbox,
		CertificatePath:     cfg.CertificatePath,
		CertificatePassword: cfg.CertificatePassword,
		Timeout:             cfg.Timeout,
	}
	return &AuthenticationGateway{
		cfg:    cfg,
		client: newAPIClient("", gatewayCfg, opts),
	}
}

// Authenticate solicita um novo token. Falhas são *AuthenticationError (código 1000).
func (g *AuthenticationGateway) Authenticate(ctx context.Context) (*AuthenticationOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, g.client.cfg.timeout())
	defer cancel()

	start := time.Now()
	out, err := g.requestToken(ctx)
	if err != nil {
		authErr := newAuthenticationError(err)
		g.client.metrics.Observe(opAuthenticate, string(authErr.Kind), time.Since(start))
		g.client.logger.Warn("falha ao obter token do BB",
			zap.String("kind", string(authErr.Kind)),
			zap.Error(err),
		)
		return nil, authErr
	}

	g.client.metrics.Observe(opAuthenticate, "success", time.Since(start))
	g.client.logger.Debug("token do BB obtido", zap.Int("expires_in", out.ExpiresIn))
	return out, nil
}

func (g *AuthenticationGateway) requestToken(ctx context.Context) (*AuthenticationOutput, error) {
	httpClient, err := g.client.httpClientFor("")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknown, err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", g.cfg.scope())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao criar requisição de auth: %v", ErrUnknown, err)
	}

	// Basic Auth com client_id:client_secret
	credentials := base64.StdEncoding.EncodeToString(
		[]byte(fmt.Sprintf("%s:%s", g.cfg.ClientID, g.cfg.ClientSecret)),
	)
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao ler resposta de auth: %v", ErrConnectivity, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("%w: erro ao decodificar token: %v", ErrUnknown, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: resposta sem access_token", ErrUnknown)
	}

	return &AuthenticationOutput{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
		ExpiresIn:   tokenResp.ExpiresIn,
		Scope:       tokenResp.Scope,
	}, nil
}

// TokenManager cacheia o token até próximo da expiração.
// É thread-safe.
type TokenManager struct {
	auth Authenticator
	now  func() time.Time

	mu          sync.RWMutex
	token       string
	expiresAt   time.Time
	refreshLead time.Duration // Tempo antes da expiração para fazer refresh
}

// NewTokenManager cria um novo gerenciador de tokens
func NewTokenManager(auth Authenticator) *TokenManager {
	return &TokenManager{
		auth:        auth,
		now:         time.Now,
		refreshLead: 60 * time.Second, // Renova 1 minuto antes de expirar
	}
}

// Token retorna um token válido, renovando se necessário
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.RLock()
	if tm.valid() {
		token := tm.token
		tm.mu.RUnlock()
		return token, nil
	}
	tm.mu.RUnlock()

	return tm.refresh(ctx)
}

func (tm *TokenManager) valid() bool {
	return tm.token != "" && tm.now().Add(tm.refreshLead).Before(tm.expiresAt)
}

func (tm *TokenManager) refresh(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	// Outra goroutine pode ter renovado enquanto esperávamos o lock
	if tm.valid() {
		return tm.token, nil
	}

	out, err := tm.auth.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	tm.token = out.AccessToken
	tm.expiresAt = tm.now().Add(time.Duration(out.ExpiresIn) * time.Second)

	return tm.token, nil
}

// Invalidate força a renovação do token na próxima chamada.
// Chamado quando o banco responde 401.
func (tm *TokenManager) Invalidate() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.token = ""
	tm.expiresAt = time.Time{}
}
