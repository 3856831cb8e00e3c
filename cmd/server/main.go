// Command server runs the CCTV surveillance backend: camera capture, the
// three-stage detection pipeline, alerting and the HTTP/MJPEG interface.
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // pprof on its own listener
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/camera"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/camera/webcam"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/config"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/detect"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/evidence"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/metrics"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/notify"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/pipeline"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/server"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/store/sqlite"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/stream"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Vision-based CCTV surveillance backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}
	log := logger.Named("main")
	log.Infow("surveillance server starting", "http_addr", cfg.HTTPAddr)

	m := metrics.New()
	store := framestore.New()
	hub := server.NewHub()

	recorders := alert.MultiRecorder{hub}
	var alertLog server.AlertLog
	var db *sqlite.DB
	if cfg.DatabasePath != "" {
		db, err = sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := sqlite.NewAlertRepository(db)
		recorders = append(recorders, repo)
		alertLog = repo
	}

	var sinks notify.Fanout
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		sinks = append(sinks, notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID))
	} else {
		log.Warnw("telegram credentials missing, notifications disabled")
	}
	if cfg.EvidencePath != "" {
		ev := evidence.NewWriter(cfg.EvidencePath, cfg.JPEGQuality)
		if err := ev.Start(); err != nil {
			return err
		}
		defer ev.Close()
		sinks = append(sinks, ev)
	}
	var notifier notify.Notifier
	if len(sinks) > 0 {
		notifier = sinks
	}

	gate := alert.NewGate(cfg.AlertCooldown, cfg.Location, notifier, recorders, m)

	loader := &detect.Loader{
		BaseURL:       cfg.InferenceBaseURL,
		GalleryPath:   cfg.GalleryPath,
		FaceTolerance: cfg.FaceTolerance,
	}
	openDevice := func() (camera.Device, error) {
		return webcam.Open(cfg.CameraDevice)
	}

	engine := pipeline.NewEngine(cfg, loader, openDevice, store, gate, m)
	muxer := stream.NewMultiplexer(store, cfg.StreamIdle, cfg.JPEGQuality, m)
	srv := server.New(cfg, engine, muxer, alertLog, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", m.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
			log.Warnw("metrics server error", "error", err)
		}
	}()
	go func() {
		if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
			log.Warnw("pprof server error", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infow("shutting down", "signal", sig)
	case err := <-errCh:
		log.Errorw("http server failed", "error", err)
	}

	cancel()
	if err := engine.Stop(); err != nil {
		log.Warnw("engine stop error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
