package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcribe-flow/internal/naming"
	"github.com/nguyentantai21042004/transcribe-flow/internal/watcher"
)

func newWatchCommand(app *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process every new media file dropped into the input folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, app)
		},
	}
}

func runWatch(ctx context.Context, app *commandContext) error {
	cfg := app.cfg
	log := app.log

	app.banner(ctx, "Transcription Pipeline")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "CPU Cores: %d", runtime.NumCPU())
	log.Info(ctx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)

	if err := ensureDirectories(cfg.Paths.Input, cfg.Paths.Output); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		return err
	}

	proc, err := app.newProcessor()
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{
		InputDir:      cfg.Paths.Input,
		Extensions:    cfg.Watch.Extensions,
		SettleDelay:   cfg.Watch.SettleDelay,
		MaxConcurrent: cfg.Performance.MaxConcurrent,
		Ignore:        naming.Layout{AudioFormat: cfg.Audio.Format}.IsOutput,
	}, proc.Process, log)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return err
	}
	defer w.Stop()

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn(ctx, "Metrics server stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info(ctx, "Metrics: http://%s/metrics", cfg.Metrics.Addr)
	}

	output := cfg.Paths.Output
	if output == "" {
		output = "(beside each input)"
	}
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", output)
	log.Info(ctx, "Languages: %s", strings.Join(cfg.Whisper.Languages, ", "))
	log.Info(ctx, "Press Ctrl+C to stop")

	err = w.Start(ctx)
	log.Info(ctx, "Shutting down gracefully...")
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return err
	}
	log.Info(ctx, "Transcription Pipeline stopped")
	return nil
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
