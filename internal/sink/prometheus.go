package sink

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus exposes the latest value of every scalar as a gauge
// labelled by tag.
type Prometheus struct {
	registry *prometheus.Registry
	usage    *prometheus.GaugeVec
	step     prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		usage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "runstats",
			Name:      "resource_usage_percent",
			Help:      "Latest resource usage reading in percent.",
		}, []string{"tag"}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "runstats",
			Name:      "poll_step",
			Help:      "Step of the latest poll.",
		}),
	}
	p.registry.MustRegister(p.usage, p.step)
	return p
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) WriteScalar(_ context.Context, tag string, value float64, step int64, _ time.Time) error {
	p.usage.WithLabelValues(tag).Set(value)
	p.step.Set(float64(step))
	return nil
}

func (p *Prometheus) Close() error { return nil }
