package utils

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Фазы ETL для меток метрик
const (
	PhaseExtract   = "extract"
	PhaseTransform = "transform"
	PhaseLoad      = "load"
	PhaseExport    = "export"
)

// ETLMetrics набор метрик Prometheus одного процесса ETL
type ETLMetrics struct {
	Registry *prometheus.Registry

	RecordsExtracted *prometheus.CounterVec
	RecordsRejected  *prometheus.CounterVec
	ClosuresRepaired prometheus.Counter
	UnparsableDates  prometheus.Counter
	RowsPublished    *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
	PhaseFailures    *prometheus.CounterVec
	LastSuccess      prometheus.Gauge
}

// NewETLMetrics регистрирует метрики в собственном реестре
func NewETLMetrics() *ETLMetrics {
	m := &ETLMetrics{
		Registry: prometheus.NewRegistry(),
		RecordsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm_etl",
			Name:      "records_extracted_total",
			Help:      "Количество записей, прочитанных из исходных файлов.",
		}, []string{"table"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm_etl",
			Name:      "records_rejected_total",
			Help:      "Количество строк, отклонённых структурной проверкой.",
		}, []string{"table"}),
		ClosuresRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crm_etl",
			Name:      "closures_repaired_total",
			Help:      "Количество закрытых сделок, получивших синтетическую дату закрытия.",
		}),
		UnparsableDates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crm_etl",
			Name:      "unparsable_dates_total",
			Help:      "Количество дат, которые не удалось разобрать.",
		}),
		RowsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm_etl",
			Name:      "rows_published_total",
			Help:      "Количество строк, записанных в хранилище.",
		}, []string{"table"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm_etl",
			Name:      "phase_duration_seconds",
			Help:      "Длительность фаз ETL.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		PhaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm_etl",
			Name:      "phase_failures_total",
			Help:      "Количество ошибок по фазам ETL.",
		}, []string{"phase"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crm_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Время последнего полностью успешного запуска.",
		}),
	}

	m.Registry.MustRegister(
		m.RecordsExtracted,
		m.RecordsRejected,
		m.ClosuresRepaired,
		m.UnparsableDates,
		m.RowsPublished,
		m.PhaseDuration,
		m.PhaseFailures,
		m.LastSuccess,
	)
	return m
}

// ObservePhase фиксирует длительность фазы, начавшейся в start
func (m *ETLMetrics) ObservePhase(phase string, start time.Time) {
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// Push отправляет метрики пакетного запуска в Pushgateway
func (m *ETLMetrics) Push(gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.Registry).Push(); err != nil {
		return fmt.Errorf("ошибка при отправке метрик в Pushgateway: %w", err)
	}
	return nil
}
