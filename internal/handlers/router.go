package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/magnani/bb-pix/internal/ports"
)

// RouterConfig reúne as dependências das rotas HTTP
type RouterConfig struct {
	Provider       ports.PixChargeProvider
	Webhook        http.Handler // nil desabilita /api/webhooks/bb
	Registry       *prometheus.Registry
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

// NewRouter monta o roteador chi com todas as rotas da API
func NewRouter(rc RouterConfig) http.Handler {
	logger := rc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := rc.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", HealthCheck)
	r.Get("/api/health", HealthCheck)

	if rc.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rc.Registry, promhttp.HandlerOpts{}))
	}

	charges := NewChargeHandler(rc.Provider, logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/charges", charges.Create)
		r.Get("/charges/{txid}", charges.Get)

		if rc.Webhook != nil {
			r.Method(http.MethodPost, "/webhooks/bb", rc.Webhook)
		}
	})

	return r
}

// LoggerMiddleware registra cada requisição HTTP
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
