// Package metrics exposes per-target probe results in the Prometheus text
// format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

type Gauges struct {
	reg     *prometheus.Registry
	up      *prometheus.GaugeVec
	latency *prometheus.GaugeVec
}

func New() *Gauges {
	g := &Gauges{
		reg: prometheus.NewRegistry(),
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "uptime_target_up",
			Help: "Target status (1=up, 0=down)",
		}, []string{"name", "url"}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "uptime_target_latency_ms",
			Help: "Target latency in milliseconds",
		}, []string{"name", "url"}),
	}
	g.reg.MustRegister(g.up, g.latency)
	return g
}

// Observe is safe to call on a nil receiver.
func (g *Gauges) Observe(t domain.Target, o domain.ProbeOutcome) {
	if g == nil {
		return
	}
	up := 0.0
	if o.OK {
		up = 1
	}
	g.up.WithLabelValues(t.Name, t.URL).Set(up)
	g.latency.WithLabelValues(t.Name, t.URL).Set(float64(o.LatencyMS))
}

// Handler serves the text exposition. Compression is left to the router.
func (g *Gauges) Handler() http.Handler {
	return promhttp.HandlerFor(g.reg, promhttp.HandlerOpts{DisableCompression: true})
}
