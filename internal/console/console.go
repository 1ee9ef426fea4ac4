// Package console serves the operations console over WebSocket. Every
// connection gets its own session holding one screen per entity.
package console

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/opsconsole/internal/console/session"
	"github.com/matthewbaird/opsconsole/internal/console/wire"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// RegisterRoutes registers the console HTTP and WebSocket routes on the
// given router. The returned manager should be cleaned up periodically.
func RegisterRoutes(r chi.Router, opts wire.Options) *session.Manager {
	// 30 min idle, 24 hr max
	sessions := session.NewManager(24*time.Hour, 30*time.Minute)
	wsHandler := wire.NewHandler(sessions, opts)

	r.Route("/console", func(r chi.Router) {
		r.Get("/ws", wsHandler.ServeHTTP)

		// Screens the configured actor may enter, for clients building
		// their navigation before connecting.
		r.Get("/screens", func(w http.ResponseWriter, r *http.Request) {
			out := []wire.ScreenInfo{}
			for _, s := range opts.Screens(screen.Deps{Actor: opts.Actor, Oracle: opts.Oracle}) {
				if permission.CanEnter(opts.Oracle, opts.Actor, s.Name()) {
					out = append(out, wire.ScreenInfo{Name: s.Name(), Title: s.Title()})
				}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)
		})
	})
	return sessions
}
