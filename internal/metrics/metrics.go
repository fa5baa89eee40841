package metrics

import (
	"net/http"

	"feed_notifier/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feed_notifier"

// Metrics собирает счётчики циклов опроса и доставок в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	Cycles        prometheus.Counter
	FetchErrors   prometheus.Counter
	SelectedItems prometheus.Counter
	Deliveries    *prometheus.CounterVec
	CycleDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Number of completed poll cycles.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Number of poll cycles whose feed fetch failed.",
		}),
		SelectedItems: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selected_items_total",
			Help:      "Number of feed items selected as new.",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Message deliveries by outcome.",
		}, []string{"status"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of fetch-select-enqueue cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveDelivery учитывает результат отправки одного сообщения.
func (m *Metrics) ObserveDelivery(status models.DeliveryStatus) {
	m.Deliveries.WithLabelValues(string(status)).Inc()
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
