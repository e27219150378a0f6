// Package tts synthesizes speech to MP3 files on disk.
//
// Two backends implement Synthesizer: ElevenLabs (per-language voices and
// tuning) and a free Google Translate fallback keyed only by language code.
// Both share one failure contract: a nil error means the file at OutputPath
// is complete, and the returned count is its size in bytes.
//
// Example usage:
//
//	synth, _ := tts.NewElevenLabs(
//	    tts.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	)
//
//	n, err := synth.Synthesize(ctx, &tts.SynthesisRequest{
//	    Text:       "नमस्ते",
//	    Language:   "hi",
//	    OutputPath: "audio_outputs/greeting.mp3",
//	})
package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/teslashibe/voice-relay/pkg/script"
)

// Provider names.
const (
	ProviderElevenLabs = "elevenlabs"
	ProviderGTTS       = "gtts"
)

// Synthesizer converts text to an audio file.
type Synthesizer interface {
	// Synthesize renders req.Text in req.Language to req.OutputPath and
	// returns the number of bytes written.
	Synthesize(ctx context.Context, req *SynthesisRequest) (int64, error)

	// Voice returns the voice identity used for a language. Backends without
	// voices return their name and the normalized language.
	Voice(language string) (string, error)

	// Name returns the provider name.
	Name() string
}

// SynthesisRequest describes one synthesis call.
type SynthesisRequest struct {
	Text       string
	Language   string
	OutputPath string
}

// prepare enforces the preconditions shared by every backend: non-blank text
// and an existing output directory. Script mismatches are only logged.
func prepare(req *SynthesisRequest, logger *slog.Logger) error {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if req.OutputPath == "" {
		return ErrNoOutputPath
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("tts: create output dir: %w", err)
	}

	lang := NormalizeLanguage(req.Language)
	if want := script.ForLanguage(lang); want != script.None && !script.Contains(req.Text, want) {
		logger.Warn("text does not match language script",
			"language", lang,
			"script", want.String(),
		)
	}
	return nil
}

// writeFile streams fill's output into a temporary file beside path and
// renames it into place once complete, so readers never see partial audio.
func writeFile(path string, fill func(w io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tts-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := &countingWriter{w: tmp}
	if err := fill(cw); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename output: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
