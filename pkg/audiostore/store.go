// Package audiostore names, locates and expires synthesized audio files.
package audiostore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teslashibe/voice-relay/internal/metrics"
)

const (
	prefix = "tts_"
	ext    = ".mp3"
)

// ErrInvalidName is returned for names that are not plain files in the store.
var ErrInvalidName = errors.New("audiostore: invalid file name")

// Filename derives the file name for a synthesis. It is keyed on language and
// voice as well as text, so the same words in two voices never collide.
func Filename(text, language, voice string) string {
	sum := sha256.Sum256([]byte(language + "|" + voice + "|" + text))
	return prefix + hex.EncodeToString(sum[:8]) + ext
}

// Store is a directory of generated audio.
type Store struct {
	dir     string
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string, m *metrics.Collector, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audiostore: create %s: %w", dir, err)
	}
	return &Store{
		dir:     dir,
		metrics: m,
		logger:  logger.With("component", "audiostore"),
	}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk path for name.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Open opens a stored file for reading. Missing files return an error
// matching os.ErrNotExist.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Sweep deletes generated files last modified before now minus ttl and
// returns how many it removed.
func (s *Store) Sweep(ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("audiostore: read %s: %w", s.dir, err)
	}

	cutoff := now.Add(-ttl)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("evict failed", "file", name, "error", err)
			continue
		}
		removed++
	}

	s.metrics.AudioEvicted(removed)
	return removed, nil
}

// Janitor sweeps every interval until ctx is done. A ttl of zero disables
// eviction and returns immediately.
func (s *Store) Janitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = ttl / 2
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.Sweep(ttl, now)
			if err != nil {
				s.logger.Error("sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("evicted expired audio", "files", n, "ttl", ttl)
			}
		}
	}
}
