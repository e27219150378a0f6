// Package metrics collects Prometheus metrics for provider calls and the
// HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voice_relay"

// Provider call outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Provider kinds.
const (
	KindSTT = "stt"
	KindTTS = "tts"
	KindLLM = "llm"
)

// Collector owns a registry and the relay's metric vectors.
// The zero value is not usable; a nil *Collector is, and records nothing.
type Collector struct {
	registry *prometheus.Registry

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	webhookFallbacks *prometheus.CounterVec
	audioBytes       prometheus.Counter
	audioEvicted     prometheus.Counter
}

// New creates a Collector with its own registry, including Go runtime and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		providerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Upstream provider calls by kind, provider and outcome.",
		}, []string{"kind", "provider", "status"}),
		providerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider call latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind", "provider"}),
		webhookFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_fallbacks_total",
			Help:      "Webhook replies that collapsed to a fallback phrase.",
		}, []string{"reason"}),
		audioBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesized_audio_bytes_total",
			Help:      "Bytes of audio written by TTS providers.",
		}),
		audioEvicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_files_evicted_total",
			Help:      "Generated audio files removed by the retention janitor.",
		}),
	}
}

// ObserveProvider records one provider call of the given kind.
func (c *Collector) ObserveProvider(kind, provider string, start time.Time, err error) {
	if c == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	c.providerCalls.WithLabelValues(kind, provider, status).Inc()
	c.providerDuration.WithLabelValues(kind, provider).Observe(time.Since(start).Seconds())
}

// WebhookFallback counts a webhook reply that fell back to a canned phrase.
func (c *Collector) WebhookFallback(reason string) {
	if c == nil {
		return
	}
	c.webhookFallbacks.WithLabelValues(reason).Inc()
}

// AudioWritten adds n synthesized bytes.
func (c *Collector) AudioWritten(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.audioBytes.Add(float64(n))
}

// AudioEvicted counts n files removed by retention.
func (c *Collector) AudioEvicted(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.audioEvicted.Add(float64(n))
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
