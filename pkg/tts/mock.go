package tts

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/teslashibe/voice-relay/internal/log"
)

// Mock implements Synthesizer for testing.
// It applies the same preconditions as the real backends.
type Mock struct {
	// SynthesizeFunc is called after the preconditions pass.
	// If nil, writes Text to OutputPath as the "audio".
	SynthesizeFunc func(ctx context.Context, req *SynthesisRequest) (int64, error)

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Text     string
	Language string
	Path     string
	Time     time.Time
}

// NewMock creates a new mock synthesizer with sensible defaults.
func NewMock() *Mock {
	return &Mock{}
}

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, req *SynthesisRequest) (int64, error) {
			return 0, err
		},
	}
}

// Name returns "mock".
func (m *Mock) Name() string {
	return "mock"
}

// Voice resolves against FallbackVoices.
func (m *Mock) Voice(language string) (string, error) {
	return ResolveVoice(language, nil)
}

// Synthesize records the call and runs SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, req *SynthesisRequest) (int64, error) {
	if req != nil {
		m.mu.Lock()
		m.calls = append(m.calls, MockCall{
			Text:     req.Text,
			Language: req.Language,
			Path:     req.OutputPath,
			Time:     time.Now(),
		})
		m.mu.Unlock()
	}

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, req)
	}
	if err := prepare(req, log.Discard()); err != nil {
		return 0, err
	}
	if err := os.WriteFile(req.OutputPath, []byte(req.Text), 0o644); err != nil {
		return 0, err
	}
	return int64(len(req.Text)), nil
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of Synthesize calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent call, or nil if none.
func (m *Mock) LastCall() *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Synthesizer at compile time.
var _ Synthesizer = (*Mock)(nil)
