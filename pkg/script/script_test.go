package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/teslashibe/voice-relay/pkg/script"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want script.Script
	}{
		{"empty", "", script.None},
		{"english", "hello there", script.None},
		{"hindi", "नमस्ते दोस्त", script.Devanagari},
		{"telugu", "నమస్కారం", script.Telugu},
		{"latin then hindi", "ok नमस्ते", script.Devanagari},
		{"telugu first wins", "నమస్కారం नमस्ते", script.Telugu},
		{"block edges", "\u0900\u0C7F", script.Devanagari},
		{"just outside", "\u08FF\u0980\u0BFF\u0C80", script.None},
		{"other indic (bengali)", "নমস্কার", script.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, script.Detect(tt.text))
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, script.Contains("hello नमस्ते", script.Devanagari))
	assert.False(t, script.Contains("hello नमस्ते", script.Telugu))
	assert.True(t, script.Contains("నమస్కారం and नमस्ते", script.Telugu))
	assert.False(t, script.Contains("anything", script.None))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "hi", script.DetectLanguage("नमस्ते दोस्त"))
	assert.Equal(t, "te", script.DetectLanguage("నమస్కారం"))
	assert.Equal(t, "", script.DetectLanguage("hello"))
	assert.Equal(t, script.Devanagari, script.ForLanguage("hi"))
	assert.Equal(t, script.Telugu, script.ForLanguage("te"))
	assert.Equal(t, script.None, script.ForLanguage("en"))
	assert.Equal(t, "devanagari", script.Devanagari.String())
}

func runesIn(lo, hi int32) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		cps := rapid.SliceOfN(rapid.Int32Range(lo, hi), 1, 64).Draw(t, "codepoints")
		rs := make([]rune, len(cps))
		for i, cp := range cps {
			rs[i] = rune(cp)
		}
		return string(rs)
	})
}

func TestDetectAllDevanagari(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := runesIn(0x0900, 0x097F).Draw(t, "text")
		if got := script.DetectLanguage(text); got != "hi" {
			t.Fatalf("DetectLanguage(%q) = %q, want hi", text, got)
		}
	})
}

func TestDetectAllTelugu(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := runesIn(0x0C00, 0x0C7F).Draw(t, "text")
		if got := script.DetectLanguage(text); got != "te" {
			t.Fatalf("DetectLanguage(%q) = %q, want te", text, got)
		}
	})
}

func TestDetectNeitherScript(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		want := script.None
		for _, r := range text {
			if s := script.Of(r); s != script.None {
				want = s
				break
			}
		}
		if got := script.Detect(text); got != want {
			t.Fatalf("Detect(%q) = %v, want %v", text, got, want)
		}
	})
}

func TestForeignCharactersNeverChangeResult(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hindi := runesIn(0x0900, 0x097F).Draw(t, "hindi")
		latin := rapid.StringMatching(`[a-zA-Z0-9 .,!?]{0,20}`).Draw(t, "latin")
		if got := script.Detect(latin + hindi + latin); got != script.Devanagari {
			t.Fatalf("Detect with latin padding = %v, want devanagari", got)
		}
	})
}
