// Command lyre-studio serves the effects API: the effect catalogue, the
// language list, the voice reference upload and effect application on
// uploaded audio.
//
// Configuration comes from an optional YAML file named by LYRE_CONFIG, a
// .env file in the working directory and the process environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dscruggs/lyre-studio/dsp/effectchain"
	"github.com/dscruggs/lyre-studio/internal/api"
	"github.com/dscruggs/lyre-studio/internal/config"
	"github.com/dscruggs/lyre-studio/internal/logger"
	"github.com/dscruggs/lyre-studio/internal/metrics"
	"github.com/dscruggs/lyre-studio/internal/voiceref"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lyre-studio: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	defs, err := effectchain.LoadDefinitionsFile(cfg.Effects.File)
	if err != nil {
		return err
	}

	langs, err := config.LoadLanguagesFile(cfg.Languages.File)
	if err != nil {
		return err
	}

	voice, err := voiceref.NewStore(cfg.VoiceRef.Dir, cfg.VoiceRef.SampleRate, log.Named("voiceref"))
	if err != nil {
		return err
	}

	builder := effectchain.NewBuilder(defs,
		effectchain.WithLogger(log.Named("effects")),
		effectchain.WithValidationSampleRate(cfg.Effects.ValidationSampleRate),
	)

	handler := api.NewHandler(api.HandlerConfig{
		Applicator:     effectchain.NewApplicator(builder),
		Languages:      langs,
		VoiceRef:       voice,
		Metrics:        metrics.NewCollector("lyre"),
		Log:            log.Named("api"),
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
	})

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(handler, api.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.Int("effects", defs.Len()),
			zap.Strings("origins", cfg.Server.AllowedOrigins),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("grace", cfg.Server.ShutdownGrace))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	voice.Clear()

	return nil
}
