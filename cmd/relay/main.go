// relay: HTTP voice relay between a voice-assistant platform and the
// speech and language providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/voice-relay/internal/config"
	"github.com/teslashibe/voice-relay/internal/log"
	"github.com/teslashibe/voice-relay/internal/metrics"
	"github.com/teslashibe/voice-relay/pkg/audiostore"
	"github.com/teslashibe/voice-relay/pkg/inference"
	"github.com/teslashibe/voice-relay/pkg/relay"
	"github.com/teslashibe/voice-relay/pkg/reply"
	"github.com/teslashibe/voice-relay/pkg/stt"
	"github.com/teslashibe/voice-relay/pkg/tts"
	"github.com/teslashibe/voice-relay/pkg/web"
)

var (
	version = "1.0.0"
	port    = flag.String("port", "", "HTTP server port (overrides PORT)")
	debug   = flag.Bool("debug", false, "Enable debug logging and access logs")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	log.Init(cfg.Log.Level, cfg.Log.Production)
	logger := log.Component("main")

	if err := run(cfg); err != nil {
		logger.Error("relay stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := log.Component("main")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	store, err := audiostore.New(cfg.Audio.Dir, m, log.L())
	if err != nil {
		return err
	}

	transcriber, err := stt.New(ctx, cfg, log.L())
	if err != nil {
		return err
	}

	synth, err := tts.New(cfg, log.L())
	if err != nil {
		return err
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, replies will fall back to apologies")
	}
	llm, err := inference.NewClient(
		inference.WithAPIKey(cfg.OpenAI.APIKey),
		inference.WithBaseURL(cfg.OpenAI.BaseURL),
		inference.WithModel(cfg.OpenAI.Model),
		inference.WithLogger(log.L()),
	)
	if err != nil {
		return err
	}

	gen := reply.New(llm, reply.WithLogger(log.L()), reply.WithMetrics(m))
	r := relay.New(transcriber, synth, gen, store,
		relay.WithLogger(log.L()),
		relay.WithMetrics(m),
	)

	if cfg.Audio.Retention > 0 {
		go store.Janitor(ctx, cfg.Audio.Retention, cfg.Audio.Retention/2)
	}

	srv := web.NewServer(r, store,
		web.WithHostedURL(cfg.Server.HostedURL),
		web.WithMetrics(m),
		web.WithAccessLog(*debug),
		web.WithLogger(log.L()),
	)

	logger.Info("voice relay starting",
		"version", version,
		"port", cfg.Server.Port,
		"stt", transcriber.Name(),
		"tts", synth.Name(),
		"model", llm.Model(),
		"audio_dir", store.Dir(),
		"retention", cfg.Audio.Retention,
	)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
