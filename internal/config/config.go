// Package config loads the relay configuration once at startup.
//
// Sources, lowest to highest priority: defaults, an optional YAML file named by
// RELAY_CONFIG, a .env file in the working directory, then the process
// environment. The resulting Config is passed by pointer into every adapter
// constructor; nothing re-reads the environment per request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names reported by the selection helpers.
const (
	STTAssemblyAI = "assemblyai"
	STTGoogle     = "google"
	STTWhisper    = "whisper"

	TTSElevenLabs = "elevenlabs"
	TTSGTTS       = "gtts"
)

// Defaults.
const (
	DefaultPort         = "5000"
	DefaultOpenAIModel  = "gpt-4"
	DefaultTTSTimeout   = 30 * time.Second
	DefaultWhisperURL   = "http://localhost:8000/v1"
	DefaultWhisperModel = "small"
	DefaultAudioDir     = "audio_outputs"
)

// voiceEnv maps a two-letter language to its voice override variable.
var voiceEnv = map[string]string{
	"en": "ENGLISH_VOICE_ID",
	"hi": "HINDI_VOICE_ID",
	"te": "TELUGU_VOICE_ID",
}

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	AssemblyAI AssemblyAIConfig `yaml:"assemblyai"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Google     GoogleConfig     `yaml:"google"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Audio      AudioConfig      `yaml:"audio"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port string `yaml:"port"`
	// HostedURL overrides the request host when building audio URLs.
	HostedURL string `yaml:"hosted_url"`
}

// AssemblyAIConfig configures the polling STT provider.
type AssemblyAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// WhisperConfig configures the local inference STT provider.
type WhisperConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// GoogleConfig configures the Google Speech STT provider.
type GoogleConfig struct {
	// CredentialsFile is a service-account JSON key.
	CredentialsFile string `yaml:"credentials_file"`
}

// ElevenLabsConfig configures the cloud TTS provider.
type ElevenLabsConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Voices holds per-language voice overrides keyed by two-letter code.
	Voices map[string]string `yaml:"voices"`
}

// OpenAIConfig configures the chat-completion provider.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// AudioConfig configures synthesized audio storage.
type AudioConfig struct {
	Dir string `yaml:"dir"`
	// Retention is the age after which generated files are deleted.
	// Zero keeps files forever.
	Retention time.Duration `yaml:"retention"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	Production bool   `yaml:"production"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Port: DefaultPort},
		Whisper:    WhisperConfig{URL: DefaultWhisperURL, Model: DefaultWhisperModel},
		ElevenLabs: ElevenLabsConfig{Timeout: DefaultTTSTimeout, Voices: map[string]string{}},
		OpenAI:     OpenAIConfig{Model: DefaultOpenAIModel},
		Audio:      AudioConfig{Dir: DefaultAudioDir},
		Log:        LogConfig{Level: "info"},
	}
}

// Load builds the configuration from the optional YAML file, .env and the
// process environment.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("RELAY_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges a YAML file into cfg.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if c.ElevenLabs.Voices == nil {
		c.ElevenLabs.Voices = map[string]string{}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
// Empty values are treated as unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	set := func(dst *string, key string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	set(&c.Server.Port, "PORT")
	set(&c.Server.HostedURL, "HOSTED_URL")
	set(&c.AssemblyAI.APIKey, "ASSEMBLYAI_API_KEY")
	set(&c.AssemblyAI.BaseURL, "ASSEMBLYAI_BASE_URL")
	set(&c.Whisper.URL, "WHISPER_URL")
	set(&c.Whisper.Model, "WHISPER_MODEL")
	set(&c.Google.CredentialsFile, "GOOGLE_SPEECH_CREDENTIALS")
	set(&c.ElevenLabs.APIKey, "ELEVENLABS_API_KEY")
	set(&c.ElevenLabs.BaseURL, "ELEVENLABS_BASE_URL")
	set(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	set(&c.OpenAI.Model, "OPENAI_MODEL")
	set(&c.Audio.Dir, "AUDIO_DIR")
	set(&c.Log.Level, "LOG_LEVEL")

	if v, ok := get("GO_ENV"); ok {
		c.Log.Production = v == "production"
	}

	if v, ok := get("TTS_TIMEOUT"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return fmt.Errorf("config: TTS_TIMEOUT must be a positive number of seconds, got %q", v)
		}
		c.ElevenLabs.Timeout = time.Duration(secs) * time.Second
	}

	if v, ok := get("AUDIO_RETENTION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("config: AUDIO_RETENTION must be a non-negative duration, got %q", v)
		}
		c.Audio.Retention = d
	}

	if c.ElevenLabs.Voices == nil {
		c.ElevenLabs.Voices = map[string]string{}
	}
	for lang, key := range voiceEnv {
		if v, ok := get(key); ok {
			c.ElevenLabs.Voices[lang] = v
		}
	}

	return c.Validate()
}

// Validate checks invariants that would otherwise surface mid-request.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: port required")
	}
	if c.Audio.Dir == "" {
		return errors.New("config: audio dir required")
	}
	if c.ElevenLabs.Timeout <= 0 {
		c.ElevenLabs.Timeout = DefaultTTSTimeout
	}
	return nil
}

// STTProvider names the transcription backend this configuration selects.
// AssemblyAI wins when its key is present, then Google Speech, then the local
// Whisper model.
func (c *Config) STTProvider() string {
	switch {
	case c.AssemblyAI.APIKey != "":
		return STTAssemblyAI
	case c.Google.CredentialsFile != "":
		return STTGoogle
	default:
		return STTWhisper
	}
}

// TTSProvider names the synthesis backend this configuration selects.
func (c *Config) TTSProvider() string {
	if c.ElevenLabs.APIKey != "" {
		return TTSElevenLabs
	}
	return TTSGTTS
}
