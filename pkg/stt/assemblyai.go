package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/teslashibe/voice-relay/internal/httpc"
	"github.com/teslashibe/voice-relay/pkg/script"
)

const assemblyAIBaseURL = "https://api.assemblyai.com/v2"

// AssemblyAI transcription job states.
const (
	statusCompleted = "completed"
	statusError     = "error"
)

// AssemblyAI implements Transcriber with upload, job creation and status
// polling against the AssemblyAI v2 API.
//
// Automatic language detection is enabled, but its verdict is not trusted for
// short Hindi or Telugu utterances: when it reports English and the transcript
// contains Devanagari or Telugu characters, the language is corrected.
type AssemblyAI struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewAssemblyAI creates a new AssemblyAI transcriber.
func NewAssemblyAI(opts ...Option) (*AssemblyAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = assemblyAIBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &AssemblyAI{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "stt.assemblyai"),
		baseURL: baseURL,
	}, nil
}

// Name returns the provider name.
func (a *AssemblyAI) Name() string {
	return ProviderAssemblyAI
}

type transcriptJob struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Error        string `json:"error"`
}

// Transcribe uploads the file, starts a job and polls until it completes,
// fails, or the attempt ceiling is reached.
func (a *AssemblyAI) Transcribe(ctx context.Context, path string) (*Result, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, WrapError(ProviderAssemblyAI, fmt.Errorf("read audio: %w", err))
	}

	uploadURL, err := a.upload(ctx, audio)
	if err != nil {
		return nil, err
	}

	job, err := a.createJob(ctx, uploadURL)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("transcription job created", "id", job.ID, "bytes", len(audio))

	for attempt := 1; attempt <= a.config.MaxPolls; attempt++ {
		job, err = a.poll(ctx, job.ID)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case statusCompleted:
			lang := CorrectLanguage(job.LanguageCode, job.Text)
			if lang != job.LanguageCode {
				a.logger.Info("language corrected from script",
					"reported", job.LanguageCode,
					"corrected", lang,
				)
			}
			return &Result{Text: job.Text, Language: lang, Provider: ProviderAssemblyAI}, nil
		case statusError:
			msg := job.Error
			if msg == "" {
				msg = "transcription failed"
			}
			return nil, WrapError(ProviderAssemblyAI, fmt.Errorf("job %s: %s", job.ID, msg))
		}

		if attempt == a.config.MaxPolls {
			break
		}
		select {
		case <-ctx.Done():
			return nil, WrapError(ProviderAssemblyAI, ctx.Err())
		case <-time.After(a.config.PollInterval):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTimeout, a.config.MaxPolls)
}

// CorrectLanguage overrides an English-like language tag when the transcript
// is written in Devanagari (hi) or Telugu (te). Other tags pass through.
func CorrectLanguage(reported, text string) string {
	if !strings.Contains(strings.ToLower(reported), "en") {
		return reported
	}
	switch {
	case script.Contains(text, script.Devanagari):
		return "hi"
	case script.Contains(text, script.Telugu):
		return "te"
	default:
		return reported
	}
}

func (a *AssemblyAI) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/upload", bytes.NewReader(audio))
	if err != nil {
		return "", WrapError(ProviderAssemblyAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", WrapError(ProviderAssemblyAI, fmt.Errorf("upload returned no url"))
	}
	return out.UploadURL, nil
}

func (a *AssemblyAI) createJob(ctx context.Context, audioURL string) (*transcriptJob, error) {
	body, err := json.Marshal(map[string]interface{}{
		"audio_url":          audioURL,
		"language_detection": true,
	})
	if err != nil {
		return nil, WrapError(ProviderAssemblyAI, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(ProviderAssemblyAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	var job transcriptJob
	if err := a.do(req, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, WrapError(ProviderAssemblyAI, fmt.Errorf("transcript returned no id"))
	}
	return &job, nil
}

func (a *AssemblyAI) poll(ctx context.Context, id string) (*transcriptJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/transcript/"+id, nil)
	if err != nil {
		return nil, WrapError(ProviderAssemblyAI, fmt.Errorf("create request: %w", err))
	}

	var job transcriptJob
	if err := a.do(req, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		job.ID = id
	}
	return &job, nil
}

// do sends an authorized request and decodes a JSON response into out.
func (a *AssemblyAI) do(req *http.Request, out interface{}) error {
	req.Header.Set("authorization", a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return WrapError(ProviderAssemblyAI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return WrapError(ProviderAssemblyAI, parseAssemblyAIError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return WrapError(ProviderAssemblyAI, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func parseAssemblyAIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error string `json:"error"`
	}
	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		message = errResp.Error
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   ProviderAssemblyAI,
	}
}

// Verify AssemblyAI implements Transcriber at compile time.
var _ Transcriber = (*AssemblyAI)(nil)
