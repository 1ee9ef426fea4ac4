// Package server assembles the HTTP handlers and starts the servers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matthewbaird/opsconsole/internal/activity"
	"github.com/matthewbaird/opsconsole/internal/console"
	"github.com/matthewbaird/opsconsole/internal/console/wire"
	"github.com/matthewbaird/opsconsole/internal/entities"
	"github.com/matthewbaird/opsconsole/internal/event"
	"github.com/matthewbaird/opsconsole/internal/handler"
	"github.com/matthewbaird/opsconsole/internal/store"
)

// Config holds the records API configuration.
type Config struct {
	Port     int
	Store    *store.Store
	Activity activity.Store
	Events   event.Publisher
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Handler returns the records API routes wrapped with middleware.
func Handler(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", healthz)
	handler.NewRecordsHandler(cfg.Store, entities.Collections(), cfg.Events).RegisterRoutes(r)
	handler.NewActivityHandler(cfg.Activity).RegisterRoutes(r)
	return handler.Recovery(handler.Logging(r))
}

// Run starts the records API and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s (%d collections)", addr, len(entities.Collections()))
	return serve(ctx, &http.Server{Addr: addr, Handler: Handler(cfg)})
}

// ConsoleConfig holds the console server configuration.
type ConsoleConfig struct {
	Port     int
	Options  wire.Options
	Registry *prometheus.Registry
}

// RunConsole starts the WebSocket console with /metrics and blocks until
// ctx is cancelled.
func RunConsole(ctx context.Context, cfg ConsoleConfig) error {
	r := chi.NewRouter()
	r.Get("/healthz", healthz)
	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}
	sessions := console.RegisterRoutes(r, cfg.Options)
	go sessions.Run(ctx, time.Minute)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting console on %s", addr)
	return serve(ctx, &http.Server{Addr: addr, Handler: handler.Recovery(handler.Logging(r))})
}

func serve(ctx context.Context, srv *http.Server) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
