package physics

import "github.com/prometheus/client_golang/prometheus"

// schedulerMetrics — Prometheus-метрики планировщика физики: глубина
// очереди, обработанные обновления за тик, число срабатываний DISSIPATE.
// Тот же стиль группы метрик, что и у eventbus.MetricsExporter — отдельная
// struct с Gauge/Counter, регистрируемая один раз при создании.
type schedulerMetrics struct {
	queueDepth       prometheus.Gauge
	updatesProcessed prometheus.Counter
	updatesRequeued  prometheus.Counter
	dissipations     prometheus.Counter
	workerCount      prometheus.Gauge
	retryYields      prometheus.Counter
	batchesAbandoned prometheus.Counter
}

func newSchedulerMetrics() *schedulerMetrics {
	m := &schedulerMetrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "physics",
			Name:      "queue_depth",
			Help:      "Количество обновлений, ожидающих обработки в общей очереди.",
		}),
		updatesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "updates_processed_total",
			Help:      "Общее число обработанных обновлений (блочных и сущностных).",
		}),
		updatesRequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "updates_requeued_total",
			Help:      "Число обновлений, переставленных в очередь (ActionStrip keep или persistent re-tick).",
		}),
		dissipations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "dissipations_total",
			Help:      "Число срабатываний действия DISSIPATE.",
		}),
		workerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "physics",
			Name:      "worker_count",
			Help:      "Текущее число воркеров планировщика.",
		}),
		retryYields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "retry_yields_total",
			Help:      "Число 2мс-уступок воркера при неудачных TryPop подряд.",
		}),
		batchesAbandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "batches_abandoned_total",
			Help:      "Число тиков, прерванных досрочно после 60 неудачных TryPop подряд.",
		}),
	}

	prometheus.MustRegister(
		m.queueDepth, m.updatesProcessed, m.updatesRequeued,
		m.dissipations, m.workerCount, m.retryYields, m.batchesAbandoned,
	)
	return m
}
