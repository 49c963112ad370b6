// Package metrics expõe as métricas Prometheus das chamadas à API do banco
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder registra contadores e latência por operação
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder cria e registra as métricas no registerer informado
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bb_requests_total",
				Help: "Total de chamadas à API PIX do Banco do Brasil",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bb_request_duration_seconds",
				Help:    "Duração das chamadas à API PIX do Banco do Brasil",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe registra uma chamada concluída. Recorder nil é ignorado.
func (r *Recorder) Observe(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
