package tts_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/teslashibe/voice-relay/internal/config"
	"github.com/teslashibe/voice-relay/pkg/tts"
)

func TestMockSynthesizer(t *testing.T) {
	mock := tts.NewMock()
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "nested", "a.mp3")

	t.Run("Synthesize writes file", func(t *testing.T) {
		n, err := mock.Synthesize(ctx, &tts.SynthesisRequest{Text: "hello", Language: "en", OutputPath: out})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 5 {
			t.Errorf("expected 5 bytes, got %d", n)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("expected output file: %v", err)
		}
	})

	t.Run("Calls are tracked", func(t *testing.T) {
		if mock.CallCount() != 1 {
			t.Errorf("expected 1 call, got %d", mock.CallCount())
		}
		if last := mock.LastCall(); last == nil || last.Language != "en" {
			t.Errorf("unexpected last call: %+v", last)
		}
	})

	t.Run("Reset clears calls", func(t *testing.T) {
		mock.Reset()
		if len(mock.Calls()) != 0 {
			t.Error("expected calls to be cleared")
		}
	})
}

func TestMockWithError(t *testing.T) {
	testErr := errors.New("test error")
	mock := tts.WithError(testErr)

	_, err := mock.Synthesize(context.Background(), &tts.SynthesisRequest{Text: "hi", OutputPath: "x.mp3"})
	if !errors.Is(err, testErr) {
		t.Errorf("expected test error, got %v", err)
	}
}

func TestResolveVoice(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		overrides map[string]string
		want      string
		wantErr   error
	}{
		{"hindi fallback", "hi", nil, "Zp1aWhL05Pi5BkhizFC3", nil},
		{"telugu fallback", "te", map[string]string{}, "ktIdXisRrub2VKRszryF", nil},
		{"region tag normalized", "EN-us", nil, "bajNon13EdhNMndG3z05", nil},
		{"override wins", "hi", map[string]string{"hi": "custom-hindi"}, "custom-hindi", nil},
		{"override for other language ignored", "hi", map[string]string{"en": "custom-en"}, "Zp1aWhL05Pi5BkhizFC3", nil},
		{"unknown language", "fr", nil, "", tts.ErrUnsupportedLanguage},
		{"empty language", "", nil, "", tts.ErrUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tts.ResolveVoice(tt.lang, tt.overrides)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDefaultVoiceSettings(t *testing.T) {
	settings := tts.DefaultVoiceSettings()

	if settings.Stability != 0.7 {
		t.Errorf("expected stability 0.7, got %f", settings.Stability)
	}
	if settings.SimilarityBoost != 0.8 {
		t.Errorf("expected similarity 0.8, got %f", settings.SimilarityBoost)
	}
	if got := settings.SpeedFor("hi"); got != 0.95 {
		t.Errorf("expected hindi speed 0.95, got %f", got)
	}
	for _, lang := range []string{"en", "te", ""} {
		if got := settings.SpeedFor(lang); got != 1.0 {
			t.Errorf("expected speed 1.0 for %q, got %f", lang, got)
		}
	}
}

func TestSplitText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		got := tts.SplitText("  hello   world ", 100)
		if len(got) != 1 || got[0] != "hello world" {
			t.Errorf("unexpected chunks: %q", got)
		}
	})

	t.Run("chunks respect limit and keep order", func(t *testing.T) {
		text := strings.Repeat("नमस्ते दोस्त ", 30)
		chunks := tts.SplitText(text, 100)
		if len(chunks) < 2 {
			t.Fatalf("expected several chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if n := utf8.RuneCountInString(c); n > 100 {
				t.Errorf("chunk %d has %d runes", i, n)
			}
		}
		if strings.Join(chunks, " ") != strings.Join(strings.Fields(text), " ") {
			t.Error("chunks do not reassemble to the input")
		}
	})

	t.Run("long word is cut", func(t *testing.T) {
		got := tts.SplitText(strings.Repeat("a", 250), 100)
		if len(got) != 3 || len(got[2]) != 50 {
			t.Errorf("unexpected chunks: %d", len(got))
		}
	})

	t.Run("blank text has no chunks", func(t *testing.T) {
		if got := tts.SplitText(" \t\n", 100); len(got) != 0 {
			t.Errorf("expected no chunks, got %q", got)
		}
	})
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	synth, err := tts.New(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synth.Name() != tts.ProviderGTTS {
		t.Errorf("expected gtts without key, got %s", synth.Name())
	}

	cfg.ElevenLabs.APIKey = "key"
	synth, err = tts.New(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synth.Name() != tts.ProviderElevenLabs {
		t.Errorf("expected elevenlabs with key, got %s", synth.Name())
	}
}

func TestAPIError(t *testing.T) {
	t.Run("IsUnauthorized", func(t *testing.T) {
		err := &tts.APIError{StatusCode: 401, Message: "unauthorized"}
		if !err.IsUnauthorized() {
			t.Error("expected IsUnauthorized true")
		}
		if err.IsRateLimited() {
			t.Error("expected IsRateLimited false")
		}
	})

	t.Run("IsServerError", func(t *testing.T) {
		for _, code := range []int{500, 502, 503, 504} {
			err := &tts.APIError{StatusCode: code}
			if !err.IsServerError() {
				t.Errorf("expected IsServerError true for %d", code)
			}
		}
	})

	t.Run("Error message format", func(t *testing.T) {
		err := &tts.APIError{
			StatusCode: 400,
			Message:    "bad request",
			Code:       "invalid_input",
			Provider:   "elevenlabs",
		}
		msg := err.Error()
		if msg != "tts [elevenlabs]: API error 400 (invalid_input): bad request" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})
}

func TestProviderError(t *testing.T) {
	inner := errors.New("connection failed")
	err := tts.WrapError("elevenlabs", inner)

	if err.Error() != "tts [elevenlabs]: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	var pe *tts.ProviderError
	if !errors.As(err, &pe) {
		t.Error("expected ProviderError")
	}
	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to match inner")
	}
	if tts.WrapError("x", nil) != nil {
		t.Error("expected nil for nil error")
	}
}
