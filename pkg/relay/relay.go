// Package relay composes transcription, reply generation and synthesis into
// the direct and webhook flows.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/voice-relay/internal/metrics"
	"github.com/teslashibe/voice-relay/pkg/audiostore"
	"github.com/teslashibe/voice-relay/pkg/inference"
	"github.com/teslashibe/voice-relay/pkg/reply"
	"github.com/teslashibe/voice-relay/pkg/stt"
	"github.com/teslashibe/voice-relay/pkg/tts"
)

// ErrInput marks caller mistakes: missing or malformed request fields.
var ErrInput = errors.New("relay: invalid input")

// IsInputError reports whether err should be surfaced to the caller as a
// client error rather than an opaque server failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInput) ||
		errors.Is(err, tts.ErrEmptyText) ||
		errors.Is(err, tts.ErrUnsupportedLanguage)
}

// Relay wires the providers together. It holds no per-request state.
type Relay struct {
	stt     stt.Transcriber
	tts     tts.Synthesizer
	reply   *reply.Generator
	store   *audiostore.Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) { r.logger = l }
}

// WithMetrics records provider calls and fallbacks on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Relay) { r.metrics = m }
}

// New creates a Relay.
func New(transcriber stt.Transcriber, synth tts.Synthesizer, gen *reply.Generator, store *audiostore.Store, opts ...Option) *Relay {
	r := &Relay{
		stt:    transcriber,
		tts:    synth,
		reply:  gen,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "relay")
	return r
}

// Transcribe runs the configured STT provider over an audio file.
func (r *Relay) Transcribe(ctx context.Context, path string) (*stt.Result, error) {
	start := time.Now()
	res, err := r.stt.Transcribe(ctx, path)
	r.metrics.ObserveProvider(metrics.KindSTT, r.stt.Name(), start, err)
	if err != nil {
		r.logger.Error("transcription failed", "provider", r.stt.Name(), "error", err)
		return nil, err
	}

	r.logger.Info("transcribed",
		"provider", res.Provider,
		"language", res.Language,
		"chars", len(res.Text),
	)
	return res, nil
}

// Speak synthesizes text into the audio store and returns the file name.
func (r *Relay) Speak(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", tts.ErrEmptyText
	}

	lang := tts.NormalizeLanguage(language)
	if lang == "" {
		lang = "en"
	}

	voice, err := r.tts.Voice(lang)
	if err != nil {
		return "", err
	}

	name := audiostore.Filename(text, lang, voice)
	path, err := r.store.Path(name)
	if err != nil {
		return "", fmt.Errorf("relay: %w", err)
	}

	start := time.Now()
	n, err := r.tts.Synthesize(ctx, &tts.SynthesisRequest{
		Text:       text,
		Language:   lang,
		OutputPath: path,
	})
	r.metrics.ObserveProvider(metrics.KindTTS, r.tts.Name(), start, err)
	if err != nil {
		r.logger.Error("synthesis failed", "provider", r.tts.Name(), "language", lang, "error", err)
		return "", err
	}

	r.metrics.AudioWritten(n)
	return name, nil
}

// Reply generates the assistant's answer. It never fails.
func (r *Relay) Reply(ctx context.Context, messages []inference.Message) string {
	return r.reply.Respond(ctx, messages)
}
