// Package script classifies text by Unicode block.
//
// Script detection is a cheap language-identification proxy used to correct
// provider language tags and to pick apology phrases: Devanagari text is
// treated as Hindi and Telugu text as Telugu. Characters outside both blocks
// never influence the result.
package script

// Script identifies a writing system the relay recognizes.
type Script int

const (
	// None means no recognized script character was found.
	None Script = iota
	// Devanagari covers U+0900..U+097F.
	Devanagari
	// Telugu covers U+0C00..U+0C7F.
	Telugu
)

// Unicode block bounds, inclusive.
const (
	devanagariFirst = '\u0900'
	devanagariLast  = '\u097F'
	teluguFirst     = '\u0C00'
	teluguLast      = '\u0C7F'
)

// String returns the script name.
func (s Script) String() string {
	switch s {
	case Devanagari:
		return "devanagari"
	case Telugu:
		return "telugu"
	default:
		return "none"
	}
}

// Of returns the script of a single rune.
func Of(r rune) Script {
	switch {
	case r >= devanagariFirst && r <= devanagariLast:
		return Devanagari
	case r >= teluguFirst && r <= teluguLast:
		return Telugu
	default:
		return None
	}
}

// Detect returns the script of the first recognized character in text.
func Detect(text string) Script {
	for _, r := range text {
		if s := Of(r); s != None {
			return s
		}
	}
	return None
}

// Contains reports whether any character of text belongs to s.
// Contains(text, None) is always false.
func Contains(text string, s Script) bool {
	if s == None {
		return false
	}
	for _, r := range text {
		if Of(r) == s {
			return true
		}
	}
	return false
}

// Language maps a script to its two-letter language code, or "" for None.
func Language(s Script) string {
	switch s {
	case Devanagari:
		return "hi"
	case Telugu:
		return "te"
	default:
		return ""
	}
}

// ForLanguage maps a two-letter language code to the script it is written in.
func ForLanguage(lang string) Script {
	switch lang {
	case "hi":
		return Devanagari
	case "te":
		return Telugu
	default:
		return None
	}
}

// DetectLanguage is Language(Detect(text)).
func DetectLanguage(text string) string {
	return Language(Detect(text))
}
