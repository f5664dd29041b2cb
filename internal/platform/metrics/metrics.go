package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registra el resultado y la latencia de cada escritura transaccional.
// Usa un registry propio para que los tests puedan crear varias instancias.
type Metrics struct {
	registry *prometheus.Registry

	Writes        *prometheus.CounterVec
	WriteDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vet_records_writes_total",
			Help: "Total number of coordinated writes by entity, action and outcome",
		}, []string{"entity", "action", "outcome"}),
		WriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vet_records_write_duration_seconds",
			Help:    "Duration of coordinated writes, from begin to commit or rollback",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"entity", "action"}),
	}
	reg.MustRegister(
		m.Writes,
		m.WriteDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveWrite implementa txn.Recorder.
func (m *Metrics) ObserveWrite(entity, action, outcome string, d time.Duration) {
	m.Writes.WithLabelValues(entity, action, outcome).Inc()
	m.WriteDuration.WithLabelValues(entity, action).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
