package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teslashibe/voice-relay/internal/httpc"
)

const whisperBaseURL = "http://localhost:8000/v1"

// Whisper implements Transcriber against a locally hosted Whisper model
// served over the OpenAI-compatible /audio/transcriptions route
// (faster-whisper-server, whisper.cpp server and similar).
//
// The model's own language head is trusted; no script correction is applied.
type Whisper struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewWhisper creates a new local Whisper transcriber.
func NewWhisper(opts ...Option) (*Whisper, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = whisperBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &Whisper{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "stt.whisper"),
		baseURL: baseURL,
	}, nil
}

// Name returns the provider name.
func (w *Whisper) Name() string {
	return ProviderWhisper
}

type verboseTranscription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

// Transcribe runs the local model over the file and joins its segments.
func (w *Whisper) Transcribe(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, WrapError(ProviderWhisper, fmt.Errorf("stat audio: %w", err))
	}

	body, contentType, err := w.buildForm(path)
	if err != nil {
		return nil, WrapError(ProviderWhisper, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, WrapError(ProviderWhisper, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	if w.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.APIKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, WrapError(ProviderWhisper, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, WrapError(ProviderWhisper, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(raw),
			Provider:   ProviderWhisper,
		})
	}

	var out verboseTranscription
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, WrapError(ProviderWhisper, fmt.Errorf("decode response: %w", err))
	}

	text := joinSegments(out)
	w.logger.Debug("transcribed locally",
		"segments", len(out.Segments),
		"language", out.Language,
		"model", w.config.Model,
	)

	return &Result{Text: text, Language: out.Language, Provider: ProviderWhisper}, nil
}

// joinSegments concatenates segment texts in order, separated by one space.
// Servers that omit segments fall back to the flat text field.
func joinSegments(t verboseTranscription) string {
	if len(t.Segments) == 0 {
		return strings.TrimSpace(t.Text)
	}
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if seg := strings.TrimSpace(s.Text); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, " ")
}

func (w *Whisper) buildForm(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy audio: %w", err)
	}

	fields := map[string]string{
		"model":           w.config.Model,
		"beam_size":       strconv.Itoa(w.config.BeamSize),
		"response_format": "verbose_json",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// Verify Whisper implements Transcriber at compile time.
var _ Transcriber = (*Whisper)(nil)
