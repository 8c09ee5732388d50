package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the REST API server
type Server struct {
	addr   string
	server *http.Server
	log    *logger.Logger
}

// NewServer creates a new REST API server
func NewServer(addr string, stats *service.StatsService, props *service.PropsService, log *logger.Logger) *Server {
	log = log.Named("rest")
	handler := NewHandler(stats, props, log)

	return &Server{
		addr: addr,
		log:  log,
		server: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(handler, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter registers every route on a gorilla/mux router.
func NewRouter(handler *Handler, log *logger.Logger) *mux.Router {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET", "OPTIONS")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Players
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET", "OPTIONS")
	api.HandleFunc("/players/gamelogs", handler.GetPlayerGameLogs).Methods("GET", "OPTIONS")
	api.HandleFunc("/players/gamelogs/batch", handler.GetMultiplePlayersGameLogs).Methods("POST", "OPTIONS")

	// Props
	api.HandleFunc("/props/today", handler.GetTodaysProps).Methods("GET", "OPTIONS")

	return router
}

// Start starts the REST API server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
