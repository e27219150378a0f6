package stt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/voice-relay/internal/config"
)

// New builds the Transcriber the configuration selects.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Transcriber, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.STTProvider() {
	case config.STTAssemblyAI:
		return NewAssemblyAI(
			WithAPIKey(cfg.AssemblyAI.APIKey),
			WithBaseURL(cfg.AssemblyAI.BaseURL),
			WithLogger(logger),
		)
	case config.STTGoogle:
		return NewGoogle(ctx,
			WithCredentialsFile(cfg.Google.CredentialsFile),
			WithLogger(logger),
		)
	case config.STTWhisper:
		return NewWhisper(
			WithBaseURL(cfg.Whisper.URL),
			WithModel(cfg.Whisper.Model),
			WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("stt: unknown provider %q", cfg.STTProvider())
	}
}
