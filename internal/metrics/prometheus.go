package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on its own registry.
type PrometheusRecorder struct {
	reg          *prom.Registry
	translations *prom.CounterVec
	duration     *prom.HistogramVec
}

// NewPrometheusRecorder registers the translation metrics on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		translations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "guidexml",
			Name:      "translations_total",
			Help:      "Translated documents by input format and outcome",
		}, []string{"format", "outcome"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "guidexml",
			Name:      "translate_duration_seconds",
			Help:      "Time to parse and translate one document",
			Buckets:   prom.DefBuckets,
		}, []string{"format"}),
	}
	reg.MustRegister(pr.translations, pr.duration)
	return pr
}

func (p *PrometheusRecorder) ObserveTranslation(format string, d time.Duration, outcome Outcome) {
	p.translations.WithLabelValues(format, string(outcome)).Inc()
	p.duration.WithLabelValues(format).Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
