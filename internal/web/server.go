// Package web provides the HTTP server exposing the message protocol
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"download-router/internal/bridge"
	"download-router/internal/companion"
	"download-router/internal/config"
	"download-router/internal/lifecycle"
	"download-router/internal/store"
	"download-router/internal/web/handlers"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	handlers *handlers.Handlers
	logger   *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(machine *lifecycle.Machine, st *store.Store, client companion.Client, queue *handlers.NotificationQueue, br *bridge.Bridge, cfg *config.Config, gatherer prometheus.Gatherer) *Server {
	h := handlers.NewHandlers(machine, st, client, queue, br, cfg.DownloadsDir)

	mux := http.NewServeMux()

	// Download lifecycle
	mux.HandleFunc("POST /api/intercept", h.Intercept)
	mux.HandleFunc("GET /api/downloads/{id}", h.GetPending)
	mux.HandleFunc("POST /api/downloads/{id}/proceed", h.Proceed)
	mux.HandleFunc("POST /api/downloads/{id}/timeout/pause", h.PauseTimeout)
	mux.HandleFunc("POST /api/downloads/{id}/timeout/resume", h.ResumeTimeout)
	mux.HandleFunc("POST /api/downloads/{id}/timeout/cancel", h.CancelTimeout)
	mux.HandleFunc("POST /api/downloads/{id}/info", h.UpdateInfo)
	mux.HandleFunc("POST /api/downloads/{id}/save-as", h.SaveAs)
	mux.HandleFunc("POST /api/downloads/{id}/changed", h.DownloadChanged)
	mux.HandleFunc("DELETE /api/downloads/{id}", h.CancelDownload)

	// Rules and groups
	mux.HandleFunc("GET /api/rules", h.ListRules)
	mux.HandleFunc("POST /api/rules", h.AddRule)
	mux.HandleFunc("POST /api/groups/{name}/extensions", h.AddToGroup)

	// Folder browsing fallback
	mux.HandleFunc("GET /api/folders", h.BrowseFolders)
	mux.HandleFunc("POST /api/folders", h.CreateFolder)
	mux.HandleFunc("GET /api/folders/suggest", h.SuggestFolder)

	// Extension command bridge
	mux.HandleFunc("GET /api/commands", h.PollCommands)
	mux.HandleFunc("POST /api/commands/{id}/result", h.ResolveCommand)

	// Stats and notifications
	mux.HandleFunc("GET /api/stats", h.GetStats)
	mux.HandleFunc("POST /api/notify", h.Notify)
	mux.HandleFunc("GET /api/notifications", h.Notifications)

	// Companion helper passthrough
	mux.HandleFunc("GET /api/companion/status", h.CompanionStatus)
	mux.HandleFunc("POST /api/companion/pick-folder", h.PickFolder)
	mux.HandleFunc("POST /api/companion/verify-folder", h.VerifyFolder)
	mux.HandleFunc("POST /api/companion/move-file", h.MoveFile)
	mux.HandleFunc("POST /api/companion/open-folder", h.OpenFolder)

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", h.Healthz)

	server := &http.Server{
		Addr:        "127.0.0.1:" + cfg.ServerPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Intercept and save-as long-polls outlive any fixed write deadline
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server:   server,
		handlers: h,
		logger:   slog.Default(),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
