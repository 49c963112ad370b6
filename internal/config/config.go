// Package config gerencia as configurações do aplicativo
// carregando variáveis de ambiente do arquivo .env
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena todas as configurações da aplicação
type Config struct {
	// Servidor
	Port            string
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Banco do Brasil
	BB BBConfig

	// Webhook
	Webhook WebhookConfig
}

// BBConfig armazena configurações específicas da API PIX do Banco do Brasil
type BBConfig struct {
	ClientID            string
	ClientSecret        string
	DevAppKey           string
	CertificatePath     string
	CertificatePassword string
	Sandbox             bool
	BaseURL             string // vazio usa a URL padrão do ambiente
	OAuthURL            string
	Timeout             time.Duration
	PixKey              string // Chave PIX do recebedor
}

// WebhookConfig armazena configurações de webhook
type WebhookConfig struct {
	URL string // URL pública registrada no BB (opcional)
}

// Load carrega as configurações do arquivo .env e variáveis de ambiente
// O arquivo .env é opcional - variáveis de ambiente têm prioridade
func Load() (*Config, error) {
	// Tenta carregar .env (ignora erro se não existir)
	_ = godotenv.Load()

	timeout, err := getEnvDuration("BB_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdown, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: shutdown,
		BB: BBConfig{
			ClientID:            getEnv("BB_CLIENT_ID", ""),
			ClientSecret:        getEnv("BB_CLIENT_SECRET", ""),
			DevAppKey:           getEnv("BB_DEV_APP_KEY", ""),
			CertificatePath:     getEnv("BB_CERTIFICATE_PATH", ""),
			CertificatePassword: getEnv("BB_CERTIFICATE_PASSWORD", ""),
			Sandbox:             getEnvBool("BB_SANDBOX", true),
			BaseURL:             getEnv("BB_BASE_URL", ""),
			OAuthURL:            getEnv("BB_OAUTH_URL", ""),
			Timeout:             timeout,
			PixKey:              getEnv("BB_PIX_KEY", ""),
		},
		Webhook: WebhookConfig{
			URL: getEnv("WEBHOOK_URL", ""),
		},
	}

	// Validação básica
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate verifica se as configurações obrigatórias estão presentes
func (c *Config) validate() error {
	if c.BB.ClientID == "" {
		return fmt.Errorf("BB_CLIENT_ID é obrigatório")
	}
	if c.BB.ClientSecret == "" {
		return fmt.Errorf("BB_CLIENT_SECRET é obrigatório")
	}
	if c.BB.DevAppKey == "" {
		return fmt.Errorf("BB_DEV_APP_KEY é obrigatório")
	}
	if c.BB.Timeout <= 0 {
		return fmt.Errorf("BB_TIMEOUT deve ser maior que zero")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT deve ser maior que zero")
	}
	// Em produção o BB exige mTLS
	if !c.BB.Sandbox && c.BB.CertificatePath == "" {
		return fmt.Errorf("BB_CERTIFICATE_PATH é obrigatório em produção")
	}
	return nil
}

// IsProduction retorna true se estiver em ambiente de produção
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Address retorna o endereço de escuta do servidor
func (c *Config) Address() string {
	return ":" + c.Port
}

// getEnv obtém uma variável de ambiente ou retorna o valor padrão
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool obtém uma variável de ambiente como bool
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration aceita duração Go ("15s") ou número inteiro de segundos
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %w", key, err)
	}
	return d, nil
}
