package stt

import (
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/option"
)

// Config holds STT provider configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials
	APIKey          string
	BaseURL         string
	CredentialsFile string

	// Model selects the local Whisper model size.
	Model string

	// BeamSize is the local decoder beam width.
	BeamSize int

	// Polling
	PollInterval time.Duration
	MaxPolls     int

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// GoogleOptions are extra client options for the Google Speech service.
	GoogleOptions []option.ClientOption

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring STT providers.
type Option func(*Config)

// WithAPIKey sets the API key for the provider.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithCredentialsFile sets a Google service-account key file.
func WithCredentialsFile(path string) Option {
	return func(c *Config) { c.CredentialsFile = path }
}

// WithModel sets the local model size.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithBeamSize sets the local decoder beam width.
func WithBeamSize(n int) Option {
	return func(c *Config) { c.BeamSize = n }
}

// WithPolling sets the polling interval and attempt ceiling.
func WithPolling(interval time.Duration, maxPolls int) Option {
	return func(c *Config) {
		c.PollInterval = interval
		c.MaxPolls = maxPolls
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// WithGoogleOptions appends Google API client options.
func WithGoogleOptions(opts ...option.ClientOption) Option {
	return func(c *Config) { c.GoogleOptions = append(c.GoogleOptions, opts...) }
}

// WithLogger sets the structured logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:        "small",
		BeamSize:     5,
		PollInterval: 2 * time.Second,
		MaxPolls:     30,
		Timeout:      60 * time.Second,
		Logger:       slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
