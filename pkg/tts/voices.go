package tts

import (
	"fmt"
	"strings"
)

// FallbackVoices maps two-letter language codes to the ElevenLabs voices used
// when no override is configured.
var FallbackVoices = map[string]string{
	"en": "bajNon13EdhNMndG3z05",
	"hi": "Zp1aWhL05Pi5BkhizFC3",
	"te": "ktIdXisRrub2VKRszryF",
}

// NormalizeLanguage lowercases a language tag and keeps its first two
// characters, so "hi-IN" and "HI" both become "hi".
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if len(lang) > 2 {
		lang = lang[:2]
	}
	return lang
}

// ResolveVoice returns the voice for a language: overrides first, then
// FallbackVoices. It is evaluated on every call and never cached.
func ResolveVoice(lang string, overrides map[string]string) (string, error) {
	lang = NormalizeLanguage(lang)
	if id := overrides[lang]; id != "" {
		return id, nil
	}
	if id := FallbackVoices[lang]; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}
