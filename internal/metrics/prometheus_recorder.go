package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notes"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	registry       *prom.Registry
	renderDuration *prom.HistogramVec
	httpDuration   *prom.HistogramVec
	httpRequests   *prom.CounterVec
	logins         *prom.CounterVec
	operations     *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers the collectors on reg, or on a fresh
// registry with Go and process collectors when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	pr := &PrometheusRecorder{
		registry: reg,
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "markdown_render_duration_seconds",
			Help:      "Markdown render duration by engine",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"engine"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		logins: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "admin_login_attempts_total",
			Help:      "Admin login attempts by result",
		}, []string{"result"}),
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "admin_operations_total",
			Help:      "Recorded admin operations by type",
		}, []string{"type"}),
	}
	reg.MustRegister(pr.renderDuration, pr.httpDuration, pr.httpRequests, pr.logins, pr.operations)
	return pr
}

// Registry returns the registry the collectors live on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveRender(engine string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveLogin(result string) {
	if p == nil {
		return
	}
	p.logins.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) ObserveOperation(kind string) {
	if p == nil {
		return
	}
	p.operations.WithLabelValues(kind).Inc()
}
