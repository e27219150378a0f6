package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/voice-relay/internal/httpc"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabs model IDs
const (
	// ModelMultilingualV2 is the highest quality multilingual model.
	ModelMultilingualV2 = "eleven_multilingual_v2"

	// ModelFlashV2_5 is the fastest multilingual model.
	ModelFlashV2_5 = "eleven_flash_v2_5"
)

// ElevenLabs implements Synthesizer for ElevenLabs TTS.
type ElevenLabs struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewElevenLabs creates a new ElevenLabs synthesizer.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &ElevenLabs{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "tts.elevenlabs"),
		baseURL: baseURL,
	}, nil
}

// Name returns the provider name.
func (e *ElevenLabs) Name() string {
	return ProviderElevenLabs
}

// Voice resolves the voice for a language from overrides and fallbacks.
func (e *ElevenLabs) Voice(language string) (string, error) {
	return ResolveVoice(language, e.config.Voices)
}

// Synthesize renders the request with the language's voice and writes the
// returned MP3 verbatim to the output path.
func (e *ElevenLabs) Synthesize(ctx context.Context, req *SynthesisRequest) (int64, error) {
	if err := prepare(req, e.logger); err != nil {
		return 0, err
	}

	lang := NormalizeLanguage(req.Language)
	voiceID, err := e.Voice(lang)
	if err != nil {
		return 0, err
	}

	start := time.Now()

	body, err := json.Marshal(e.buildPayload(req.Text, lang))
	if err != nil {
		return 0, WrapError(ProviderElevenLabs, fmt.Errorf("marshal payload: %w", err))
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, WrapError(ProviderElevenLabs, fmt.Errorf("create request: %w", err))
	}
	e.setHeaders(httpReq)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, WrapError(ProviderElevenLabs, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := e.parseError(resp)
		e.logger.Error("synthesis rejected",
			"status", resp.StatusCode,
			"error", apiErr,
		)
		return 0, WrapError(ProviderElevenLabs, apiErr)
	}

	n, err := writeFile(req.OutputPath, func(w io.Writer) error {
		_, err := io.Copy(w, resp.Body)
		return err
	})
	if err != nil {
		return 0, WrapError(ProviderElevenLabs, err)
	}

	e.logger.Info("synthesized audio",
		"language", lang,
		"voice", voicePrefix(voiceID),
		"chars", len(req.Text),
		"bytes", n,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

// buildPayload constructs the API request payload.
func (e *ElevenLabs) buildPayload(text, lang string) map[string]interface{} {
	s := e.config.VoiceSettings
	return map[string]interface{}{
		"text":     text,
		"model_id": e.config.ModelID,
		"voice_settings": map[string]interface{}{
			"stability":        s.Stability,
			"similarity_boost": s.SimilarityBoost,
			"speed":            s.SpeedFor(lang),
		},
	}
}

// setHeaders sets required HTTP headers.
func (e *ElevenLabs) setHeaders(req *http.Request) {
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
}

// parseError reads and parses an error response.
func (e *ElevenLabs) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Detail struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"detail"`
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		Provider:   ProviderElevenLabs,
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Detail.Message != "" {
		apiErr.Message = errResp.Detail.Message
		apiErr.Code = errResp.Detail.Status
	}
	return apiErr
}

// voicePrefix shortens a voice ID for logs.
func voicePrefix(id string) string {
	if len(id) > 4 {
		return id[:4] + "..."
	}
	return id
}

// Verify ElevenLabs implements Synthesizer at compile time.
var _ Synthesizer = (*ElevenLabs)(nil)
