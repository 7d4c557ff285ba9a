package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docgraph"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	stageDuration   *prom.HistogramVec
	versionDuration *prom.HistogramVec
	versionResults  *prom.CounterVec
	docs            *prom.GaugeVec
	docFailures     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual load stages",
			Buckets:   prom.DefBuckets,
		}, []string{"version", "stage"}),
		versionDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "version_load_duration_seconds",
			Help:      "Total duration of a version load",
			Buckets:   prom.DefBuckets,
		}, []string{"version"}),
		versionResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "version_loads_total",
			Help:      "Version loads by outcome",
		}, []string{"version", "result"}),
		docs: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "docs",
			Help:      "Documents in the last successful load of a version",
		}, []string{"version", "state"}),
		docFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "doc_failures_total",
			Help:      "Documents whose metadata could not be built",
		}, []string{"version"}),
	}
	reg.MustRegister(pr.stageDuration, pr.versionDuration, pr.versionResults, pr.docs, pr.docFailures)
	return pr
}

// Registry returns the registry the metrics live on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStageDuration(version, stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(version, stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveVersionDuration(version string, d time.Duration) {
	p.versionDuration.WithLabelValues(version).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncVersionResult(version string, result ResultLabel) {
	p.versionResults.WithLabelValues(version, string(result)).Inc()
}

func (p *PrometheusRecorder) SetVersionDocs(version string, published, drafts int) {
	p.docs.WithLabelValues(version, "published").Set(float64(published))
	p.docs.WithLabelValues(version, "draft").Set(float64(drafts))
}

func (p *PrometheusRecorder) IncDocFailure(version string) {
	p.docFailures.WithLabelValues(version).Inc()
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

// HTTPHandler serves the recorder's metrics.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
