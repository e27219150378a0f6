package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveProvider(t *testing.T) {
	c := New()

	c.ObserveProvider("stt", "assemblyai", time.Now(), nil)
	c.ObserveProvider("stt", "assemblyai", time.Now(), errors.New("boom"))
	c.ObserveProvider("stt", "assemblyai", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.providerCalls.WithLabelValues("stt", "assemblyai", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerCalls.WithLabelValues("stt", "assemblyai", StatusError)))
}

func TestCounters(t *testing.T) {
	c := New()

	c.AudioWritten(1024)
	c.AudioWritten(0)
	c.AudioEvicted(3)
	c.WebhookFallback("empty_input")

	assert.Equal(t, 1024.0, testutil.ToFloat64(c.audioBytes))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.audioEvicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.webhookFallbacks.WithLabelValues("empty_input")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveProvider("tts", "gtts", time.Now(), nil)
		c.AudioWritten(10)
		c.AudioEvicted(1)
		c.WebhookFallback("x")
	})
}
