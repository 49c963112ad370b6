// Package logging cria os loggers estruturados (zap) usados pela aplicação
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New cria um logger JSON de produção no nível informado.
// Níveis inválidos caem para info.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Nop retorna um logger que descarta tudo. Útil em testes.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// MaskDocument mascara um CPF/CNPJ para log, mantendo os dois últimos dígitos
func MaskDocument(doc string) string {
	if len(doc) <= 2 {
		return "**"
	}
	masked := make([]byte, len(doc))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(doc)-2:], doc[len(doc)-2:])
	return string(masked)
}
