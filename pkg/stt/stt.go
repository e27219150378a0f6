// Package stt provides a unified interface for speech-to-text providers.
//
// Three backends are supported: AssemblyAI (cloud transcription with status
// polling), Google Cloud Speech, and a locally hosted Whisper model. All of
// them implement Transcriber and normalize their output to a Result holding
// the transcript and a two-letter language code.
//
// Example usage:
//
//	t, _ := stt.NewAssemblyAI(stt.WithAPIKey(os.Getenv("ASSEMBLYAI_API_KEY")))
//	res, err := t.Transcribe(ctx, "/tmp/utterance.wav")
//	// res.Text, res.Language ("hi" when Devanagari was heard)
package stt

import "context"

// Provider names.
const (
	ProviderAssemblyAI = "assemblyai"
	ProviderGoogle     = "google"
	ProviderWhisper    = "whisper"
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	// Transcribe reads the audio file at path and returns its transcript.
	// All failures match ErrTranscription via errors.Is.
	Transcribe(ctx context.Context, path string) (*Result, error)

	// Name identifies the provider for logs and metrics.
	Name() string
}

// Result is a normalized transcription.
type Result struct {
	// Text is the transcript.
	Text string

	// Language is the detected language code, script-corrected where the
	// provider applies correction.
	Language string

	// Provider names the backend that produced the result.
	Provider string
}
