// Latest-post endpoint: serves the newest newsletter issue as JSON.
//
// Usage: go run ./cmd/latestpost -config config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/newsletter"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	listen := flag.String("listen", "", "Listen address (empty = use config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath, ""); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg().Newsletter
	addr := cfg.Listen
	if *listen != "" {
		addr = *listen
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/latest-post", newsletter.NewHandler(newsletter.NewClient(cfg, nil), cfg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("serving latest post", "addr", addr, "sitemap", cfg.SitemapURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
