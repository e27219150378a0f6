package stt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/voice-relay/internal/config"
)

func TestNewSelectsProvider(t *testing.T) {
	t.Run("assemblyai when key present", func(t *testing.T) {
		cfg := config.Default()
		cfg.AssemblyAI.APIKey = "k"
		cfg.Google.CredentialsFile = "/does/not/matter.json"

		tr, err := New(context.Background(), cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, ProviderAssemblyAI, tr.Name())
	})

	t.Run("whisper by default", func(t *testing.T) {
		tr, err := New(context.Background(), config.Default(), nil)
		require.NoError(t, err)
		assert.Equal(t, ProviderWhisper, tr.Name())
		assert.Equal(t, config.DefaultWhisperURL, tr.(*Whisper).baseURL)
	})

	t.Run("google with unreadable credentials fails", func(t *testing.T) {
		cfg := config.Default()
		cfg.Google.CredentialsFile = t.TempDir() + "/missing.json"

		_, err := New(context.Background(), cfg, nil)
		assert.Error(t, err)
	})
}
