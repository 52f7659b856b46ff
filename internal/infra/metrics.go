package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: переходы жизненного цикла по исходам
	TransitionsTotal *prometheus.CounterVec

	// Latency: длительность HTTP-запросов
	RequestDuration *prometheus.HistogramVec

	// Errors: отказы доставки уведомлений (переход при этом уже зафиксирован)
	NotifyFailures prometheus.Counter

	// Saturation: заполненность буфера журнала переходов (backpressure)
	AuditBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern — если регистратор не передан, используем локальный,
	// который никуда не подключен (удобно в тестах)
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		TransitionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "traveldesk_transitions_total",
			Help: "Total lifecycle transition attempts by transition and result.",
		}, []string{"transition", "result"}), // result: applied, validation, authorization, invalid_state, not_found, conflict, error

		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "traveldesk_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route", "method", "code"}),

		NotifyFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "traveldesk_notify_failures_total",
			Help: "Total notification deliveries that failed after retries.",
		}),

		AuditBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "traveldesk_audit_buffer_utilization",
			Help: "Current number of events in the audit buffer.",
		}),
	}
}
