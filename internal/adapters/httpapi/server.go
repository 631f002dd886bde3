// Package httpapi exposes the daemon's trigger and query surface over
// HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/tycoonsim/tycoon-go/internal/adapters/sync"
	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/config"
)

// Server serves the tick trigger, facility endpoints, the websocket
// subscription, and prometheus metrics.
type Server struct {
	mediator    common.Mediator
	hub         *sync.Hub
	logger      *slog.Logger
	manualLimit *rate.Limiter
	upgrader    websocket.Upgrader
	httpServer  *http.Server
}

// NewServer wires the HTTP surface.
func NewServer(
	cfg *config.ServerConfig,
	mediator common.Mediator,
	hub *sync.Hub,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	s := &Server{
		mediator:    mediator,
		hub:         hub,
		logger:      logger,
		manualLimit: rate.NewLimiter(rate.Limit(cfg.ManualTickRate), cfg.ManualTickBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tick", s.handleRunTick)
	mux.HandleFunc("GET /api/clock", s.handleGetClock)
	mux.HandleFunc("GET /api/facilities", s.handleListFacilities)
	mux.HandleFunc("POST /api/facilities", s.handleCreateFacility)
	mux.HandleFunc("GET /api/facilities/{id}", s.handleGetFacility)
	mux.HandleFunc("POST /api/facilities/{id}/recipe", s.handleSetRecipe)
	mux.HandleFunc("POST /api/facilities/{id}/start", s.handleStartProduction)
	mux.HandleFunc("POST /api/facilities/{id}/stop", s.handleStopProduction)
	mux.HandleFunc("GET /ws", s.handleWebsocket)

	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving requests.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := sync.NewClient(s.hub, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}
