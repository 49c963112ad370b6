// Package main é o ponto de entrada da API de cobranças PIX do Banco do Brasil
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/magnani/bb-pix/internal/adapters/bb"
	"github.com/magnani/bb-pix/internal/config"
	"github.com/magnani/bb-pix/internal/handlers"
	"github.com/magnani/bb-pix/internal/logging"
	"github.com/magnani/bb-pix/internal/metrics"
)

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("erro ao carregar configurações: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("erro ao configurar logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("iniciando API PIX",
		zap.String("env", cfg.Env),
		zap.Bool("bb_sandbox", cfg.BB.Sandbox),
	)
	if cfg.IsProduction() && cfg.BB.Sandbox {
		logger.Warn("ambiente de produção apontando para o sandbox do BB")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []bb.Option{
		bb.WithLogger(logger),
		bb.WithMetrics(metrics.NewRecorder(reg)),
	}

	auth := bb.NewAuthenticationGateway(bb.AuthConfig{
		ClientID:            cfg.BB.ClientID,
		ClientSecret:        cfg.BB.ClientSecret,
		Sandbox:             cfg.BB.Sandbox,
		URLOverride:         cfg.BB.OAuthURL,
		CertificatePath:     cfg.BB.CertificatePath,
		CertificatePassword: cfg.BB.CertificatePassword,
		Timeout:             cfg.BB.Timeout,
	}, opts...)

	client := bb.NewClient(bb.NewTokenManager(auth), bb.GatewayConfig{
		Sandbox:             cfg.BB.Sandbox,
		ApplicationID:       cfg.BB.DevAppKey,
		BaseURLOverride:     cfg.BB.BaseURL,
		CertificatePath:     cfg.BB.CertificatePath,
		CertificatePassword: cfg.BB.CertificatePassword,
		Timeout:             cfg.BB.Timeout,
	}, opts...)

	if cfg.Webhook.URL != "" && cfg.BB.PixKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.BB.Timeout)
		if err := client.RegisterWebhook(ctx, cfg.BB.PixKey, cfg.Webhook.URL); err != nil {
			// Sem webhook a API continua funcionando via consulta de cobrança
			logger.Warn("falha ao registrar webhook", zap.String("url", cfg.Webhook.URL), zap.Error(err))
		} else {
			logger.Info("webhook registrado", zap.String("url", cfg.Webhook.URL))
		}
		cancel()
	}

	// Margem para a chamada ao BB, que já tem seu próprio timeout
	requestTimeout := cfg.BB.Timeout + 5*time.Second

	router := handlers.NewRouter(handlers.RouterConfig{
		Provider:       client,
		Webhook:        handlers.NewPixWebhookHandler(handlers.PixReceivedLogger(logger), logger),
		Registry:       reg,
		Logger:         logger,
		RequestTimeout: requestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("servidor rodando", zap.String("addr", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("erro ao iniciar servidor", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("encerrando servidor")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("erro no encerramento", zap.Error(err))
	}
}
