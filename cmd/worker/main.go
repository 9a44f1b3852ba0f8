package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/trainforge/pkg/config"
	"github.com/Abraxas-365/trainforge/pkg/logx"
)

func main() {
	cfg := config.Load()

	logx.Info("starting trainforge worker...")

	container := NewContainer(cfg)
	defer container.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics are served on a side port so the worker stays scrapeable.
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", container.Metrics.Handler())
			logx.Infof("metrics listening on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				logx.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	if err := container.Consumer.Start(ctx); err != nil {
		logx.Fatalf("consumer error: %v", err)
	}

	logx.Info("worker exited")
}
