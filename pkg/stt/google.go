package stt

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"github.com/teslashibe/voice-relay/pkg/script"
)

// Google recognition settings.
const (
	googleEncoding   = "LINEAR16"
	googleSampleRate = 16000
	googleModel      = "latest_long"
	googleEnglish    = "en-US"
	googleHindi      = "hi-IN"
)

// Google implements Transcriber with Google Cloud Speech-to-Text.
//
// Audio must already be 16 kHz mono LINEAR16; the relay does not transcode.
// Recognition runs English-first with Hindi as an alternative. Devanagari in
// the result triggers a Hindi-only second pass; an empty first pass falls back
// to Hindi-only recognition.
type Google struct {
	svc    *speech.Service
	logger *slog.Logger
}

// NewGoogle creates a Google Speech transcriber using a service-account key.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	clientOpts := cfg.GoogleOptions
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("stt: read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, speech.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("stt: parse credentials: %w", err)
		}
		clientOpts = append([]option.ClientOption{option.WithTokenSource(creds.TokenSource)}, clientOpts...)
	} else if len(clientOpts) == 0 {
		return nil, ErrNoCredentials
	}

	if cfg.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := speech.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("stt: create speech service: %w", err)
	}

	return &Google{
		svc:    svc,
		logger: cfg.Logger.With("component", "stt.google"),
	}, nil
}

// Name returns the provider name.
func (g *Google) Name() string {
	return ProviderGoogle
}

// Transcribe recognizes the file in up to two passes.
func (g *Google) Transcribe(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, WrapError(ProviderGoogle, fmt.Errorf("read audio: %w", err))
	}
	audio := &speech.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(data)}

	transcript, err := g.recognize(ctx, audio, googleEnglish, googleHindi)
	if err != nil {
		return nil, err
	}

	if transcript != "" {
		if !script.Contains(transcript, script.Devanagari) {
			return g.result(transcript, "en"), nil
		}
		g.logger.Debug("devanagari in english pass, re-recognizing as hindi")
		hindi, err := g.recognize(ctx, audio, googleHindi)
		if err != nil {
			return nil, err
		}
		if hindi != "" {
			return g.result(hindi, "hi"), nil
		}
		return g.result(transcript, "en"), nil
	}

	hindi, err := g.recognize(ctx, audio, googleHindi)
	if err != nil {
		return nil, err
	}
	if hindi != "" {
		return g.result(hindi, "hi"), nil
	}
	return g.result("", "en"), nil
}

func (g *Google) result(text, lang string) *Result {
	return &Result{Text: text, Language: lang, Provider: ProviderGoogle}
}

// recognize runs one synchronous recognition and joins the top alternatives.
func (g *Google) recognize(ctx context.Context, audio *speech.RecognitionAudio, lang string, alternatives ...string) (string, error) {
	req := &speech.RecognizeRequest{
		Audio: audio,
		Config: &speech.RecognitionConfig{
			Encoding:                   googleEncoding,
			SampleRateHertz:            googleSampleRate,
			LanguageCode:               lang,
			AlternativeLanguageCodes:   alternatives,
			EnableAutomaticPunctuation: true,
			Model:                      googleModel,
		},
	}

	resp, err := g.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", WrapError(ProviderGoogle, fmt.Errorf("recognize %s: %w", lang, err))
	}

	parts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		parts = append(parts, r.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// Verify Google implements Transcriber at compile time.
var _ Transcriber = (*Google)(nil)
