// Метрики Prometheus для сессий редактирования: операции по типам, размер документа и сохранения.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aisa-it/blocks/internal/blocks/editor"
)

const namespace = "blocks"

// Collector наблюдатель сессии, считающий примененные операции.
type Collector struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	topBlocks    prometheus.Gauge
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total count of applied editor operations by type",
		}, []string{"type"}),
		topBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_blocks",
			Help:      "Count of top-level blocks after the last operation",
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Total count of persisted document changes by result",
		}, []string{"result"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Duration of persisting document changes",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(c.operations, c.topBlocks, c.saves, c.saveDuration)
	return c
}

// Observe реализует editor.Observer.
func (c *Collector) Observe(s *editor.Session, op editor.Operation) {
	c.operations.WithLabelValues(string(op.Type)).Inc()
	c.topBlocks.Set(float64(len(s.Children())))
}

// ObserveSave учитывает сохранение, начатое в start.
func (c *Collector) ObserveSave(start time.Time, err error) {
	c.saveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.saves.WithLabelValues("error").Inc()
		return
	}
	c.saves.WithLabelValues("ok").Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile пишет метрики в формате textfile коллектора node_exporter.
func (c *Collector) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, c.registry)
}
