// Package reply turns a conversation into the assistant's next utterance.
//
// A Generator never fails: when the model is unreachable it answers with a
// short apology in the caller's apparent language, so a voice caller always
// hears something they can understand.
package reply

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/voice-relay/internal/metrics"
	"github.com/teslashibe/voice-relay/pkg/inference"
	"github.com/teslashibe/voice-relay/pkg/script"
)

// Apologies spoken when the model cannot answer.
const (
	ApologyHindi   = "क्षमा करें, तकनीकी समस्या आई है। कृपया बाद में प्रयास करें।"
	ApologyTelugu  = "క్షమించండి, సాంకేతిక సమస్య ఉంది. దయచేసి తర్వాత ప్రయత్నించండి."
	ApologyEnglish = "Sorry, we're experiencing technical difficulties. Please try again later."
)

// Generator wraps a chat provider with the apology fallback.
type Generator struct {
	provider inference.Provider
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithMetrics records provider calls on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(g *Generator) { g.metrics = m }
}

// New creates a Generator over provider.
func New(provider inference.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "reply")
	return g
}

// Respond returns the model's trimmed reply to messages, or an apology
// matched to the script of the last user message when the model fails.
func (g *Generator) Respond(ctx context.Context, messages []inference.Message) string {
	start := time.Now()
	resp, err := g.provider.Chat(ctx, &inference.ChatRequest{Messages: messages})
	g.metrics.ObserveProvider(metrics.KindLLM, g.provider.Name(), start, err)

	if err != nil {
		g.logger.Error("chat completion failed, sending apology",
			"error", err,
			"messages", len(messages),
		)
		return Apology(messages)
	}
	return strings.TrimSpace(resp.Message.Content)
}

// Apology picks the apology for the most recent user message's script.
// English is used when there is no user message or its script is neutral.
func Apology(messages []inference.Message) string {
	last, ok := inference.LastUserMessage(messages)
	if !ok {
		return ApologyEnglish
	}
	switch script.Detect(last.Content) {
	case script.Devanagari:
		return ApologyHindi
	case script.Telugu:
		return ApologyTelugu
	default:
		return ApologyEnglish
	}
}
