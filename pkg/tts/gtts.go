package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teslashibe/voice-relay/internal/httpc"
)

const (
	gttsBaseURL = "https://translate.google.com"

	// gttsMaxChars is the longest text the translate endpoint accepts per call.
	gttsMaxChars = 100

	gttsUserAgent = "Mozilla/5.0 (X11; Linux x86_64) voice-relay"
)

// GTTS implements Synthesizer with the free Google Translate speech endpoint.
// It is keyed only by two-letter language code: no voices, no tuning.
type GTTS struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewGTTS creates the free fallback synthesizer. It needs no credentials.
func NewGTTS(opts ...Option) *GTTS {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = gttsBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &GTTS{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "tts.gtts"),
		baseURL: baseURL,
	}
}

// Name returns the provider name.
func (g *GTTS) Name() string {
	return ProviderGTTS
}

// Voice returns "gtts:<lang>"; the endpoint has one voice per language.
func (g *GTTS) Voice(language string) (string, error) {
	lang := NormalizeLanguage(language)
	if lang == "" {
		lang = "en"
	}
	return ProviderGTTS + ":" + lang, nil
}

// Synthesize fetches one MP3 segment per text chunk and appends them in order.
func (g *GTTS) Synthesize(ctx context.Context, req *SynthesisRequest) (int64, error) {
	if err := prepare(req, g.logger); err != nil {
		return 0, err
	}

	lang := NormalizeLanguage(req.Language)
	if lang == "" {
		lang = "en"
	}

	start := time.Now()
	chunks := SplitText(req.Text, gttsMaxChars)

	n, err := writeFile(req.OutputPath, func(w io.Writer) error {
		for i, chunk := range chunks {
			if err := g.fetch(ctx, w, chunk, lang, i, len(chunks)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, WrapError(ProviderGTTS, err)
	}

	g.logger.Info("synthesized audio",
		"language", lang,
		"chunks", len(chunks),
		"bytes", n,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

func (g *GTTS) fetch(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", gttsUserAgent)
	req.Header.Set("Referer", g.baseURL+"/")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Provider:   ProviderGTTS,
		}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read chunk %d: %w", idx, err)
	}
	return nil
}

// SplitText breaks text into chunks of at most max runes, cutting on
// whitespace. A single word longer than max is cut mid-word.
func SplitText(text string, max int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)

		for wordLen > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
			wordLen -= max
		}

		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+wordLen > max {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
		curLen += sep + wordLen
	}
	flush()
	return chunks
}

// Verify GTTS implements Synthesizer at compile time.
var _ Synthesizer = (*GTTS)(nil)
