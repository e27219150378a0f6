package tts

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/voice-relay/internal/config"
)

// New builds the Synthesizer the configuration selects.
func New(cfg *config.Config, logger *slog.Logger) (Synthesizer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.TTSProvider() {
	case config.TTSElevenLabs:
		return NewElevenLabs(
			WithAPIKey(cfg.ElevenLabs.APIKey),
			WithBaseURL(cfg.ElevenLabs.BaseURL),
			WithVoices(cfg.ElevenLabs.Voices),
			WithTimeout(cfg.ElevenLabs.Timeout),
			WithLogger(logger),
		)
	case config.TTSGTTS:
		return NewGTTS(
			WithTimeout(cfg.ElevenLabs.Timeout),
			WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("tts: unknown provider %q", cfg.TTSProvider())
	}
}
