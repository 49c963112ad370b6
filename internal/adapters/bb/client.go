package bb

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/pkcs12"

	"github.com/magnani/bb-pix/internal/metrics"
)

const tracerName = "github.com/magnani/bb-pix/internal/adapters/bb"

// HTTPDoer é a capacidade de transporte usada pelos gateways.
// *http.Client satisfaz a interface; testes injetam implementações falsas.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GatewayConfig configura o acesso à API PIX do BB
type GatewayConfig struct {
	Sandbox         bool
	ApplicationID   string // gw-dev-app-key / gw-app-key
	BaseURLOverride string

	// Certificado padrão, usado quando PixData.CertFile não é informado
	CertificatePath     string
	CertificatePassword string

	Timeout time.Duration
}

// BaseURL retorna a URL base conforme o ambiente
func (c GatewayConfig) BaseURL() string {
	if c.BaseURLOverride != "" {
		return strings.TrimRight(c.BaseURLOverride, "/")
	}
	if c.Sandbox {
		return PixURLSandbox
	}
	return PixURLProd
}

// AppKeyParam retorna o nome do parâmetro da chave de aplicação
func (c GatewayConfig) AppKeyParam() string {
	if c.Sandbox {
		return AppKeyParamSandbox
	}
	return AppKeyParamProd
}

func (c GatewayConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Option customiza os gateways
type Option func(*apiClient)

// WithHTTPDoer substitui o transporte HTTP (o certificado deixa de ser carregado)
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *apiClient) {
		c.doer = doer
	}
}

// WithLogger define o logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *apiClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics define o coletor de métricas
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *apiClient) {
		c.metrics = rec
	}
}

// apiClient executa requisições autenticadas contra a API do BB.
// Não guarda estado mutável: pode ser usado por várias goroutines.
type apiClient struct {
	accessToken string
	cfg         GatewayConfig
	doer        HTTPDoer
	logger      *zap.Logger
	metrics     *metrics.Recorder
	tracer      trace.Tracer
}

func newAPIClient(accessToken string, cfg GatewayConfig, opts []Option) apiClient {
	c := apiClient{
		accessToken: accessToken,
		cfg:         cfg,
		logger:      zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// httpClientFor retorna o transporte para o certificado informado
func (c *apiClient) httpClientFor(certFile string) (HTTPDoer, error) {
	if c.doer != nil {
		return c.doer, nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	path := certFile
	if path == "" {
		path = c.cfg.CertificatePath
	}
	if path != "" {
		tlsConfig, err := loadCertificate(path, c.cfg.CertificatePassword)
		if err != nil {
			return nil, fmt.Errorf("erro ao carregar certificado: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{Transport: transport}, nil
}

// loadCertificate carrega um certificado .p12/.pfx ou .pem para mTLS.
// Arquivos PEM devem conter o certificado e a chave privada.
func loadCertificate(certPath, password string) (*tls.Config, error) {
	certData, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler certificado: %w", err)
	}

	var tlsCert tls.Certificate
	switch strings.ToLower(filepath.Ext(certPath)) {
	case ".p12", ".pfx":
		privateKey, certificate, err := pkcs12.Decode(certData, password)
		if err != nil {
			return nil, fmt.Errorf("erro ao decodificar certificado PKCS12: %w", err)
		}
		tlsCert = tls.Certificate{
			Certificate: [][]byte{certificate.Raw},
			PrivateKey:  privateKey,
			Leaf:        certificate,
		}
	default:
		if block, _ := pem.Decode(certData); block == nil {
			return nil, fmt.Errorf("certificado %s não está em formato PEM", filepath.Base(certPath))
		}
		tlsCert, err = tls.X509KeyPair(certData, certData)
		if err != nil {
			return nil, fmt.Errorf("erro ao decodificar certificado PEM: %w", err)
		}
	}

	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// requestURL monta a URL com a chave de aplicação na query
func (c *apiClient) requestURL(path string) string {
	u := c.cfg.BaseURL() + path
	if c.cfg.ApplicationID == "" {
		return u
	}
	q := url.Values{}
	q.Set(c.cfg.AppKeyParam(), c.cfg.ApplicationID)
	return u + "?" + q.Encode()
}

// do executa uma requisição autenticada e devolve o corpo de uma resposta 2xx.
//
// Os erros devolvidos já carregam a categoria: *APIError para respostas de
// erro, ErrConnectivity para falhas de transporte e ErrUnknown para falhas
// locais (certificado, serialização).
func (c *apiClient) do(ctx context.Context, operation, method, path, certFile string, body interface{}) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout())
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "bb."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("operation", operation),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	respBody, status, err := c.send(ctx, method, path, certFile, body, requestID)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
		attribute.String("bb.request_id", requestID),
	)

	if err != nil {
		kind, _ := classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		c.metrics.Observe(operation, string(kind), elapsed)
		log.Warn("chamada ao BB falhou",
			zap.Int("status", status),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.metrics.Observe(operation, "success", elapsed)
	log.Debug("chamada ao BB concluída",
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
	return respBody, nil
}

func (c *apiClient) send(ctx context.Context, method, path, certFile string, body interface{}, requestID string) ([]byte, int, error) {
	httpClient, err := c.httpClientFor(certFile)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnknown, err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: erro ao serializar body: %v", ErrUnknown, err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.requestURL(path), reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: erro ao criar requisição: %v", ErrUnknown, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: erro ao ler resposta: %v", ErrConnectivity, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, resp.StatusCode, nil
}
