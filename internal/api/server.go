package api

import (
	"context"
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slipstream/couchlist/internal/api/ratelimit"
	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/listsync"
	"github.com/slipstream/couchlist/internal/movielist"
	"github.com/slipstream/couchlist/internal/scheduler"
	"github.com/slipstream/couchlist/internal/websocket"
)

// Services are the components the API exposes. Scheduler, Hub and Logs may
// be nil; their routes are then not registered.
type Services struct {
	Sync      *listsync.Service
	Lists     *movielist.Service
	Scheduler *scheduler.Scheduler
	Hub       *websocket.Hub
	Logs      LogsProvider
}

// Server handles HTTP requests for the couchlist API.
type Server struct {
	echo      *echo.Echo
	db        *sql.DB
	cfg       *config.Config
	logger    zerolog.Logger
	startTime time.Time

	syncService *listsync.Service
	listService *movielist.Service
	scheduler   *scheduler.Scheduler
	hub         *websocket.Hub
	logs        LogsProvider
	keyLimiter  *ratelimit.KeyLimiter
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, cfg *config.Config, svc Services, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		db:          db,
		cfg:         cfg,
		logger:      logger.With().Str("component", "api").Logger(),
		startTime:   time.Now(),
		syncService: svc.Sync,
		listService: svc.Lists,
		scheduler:   svc.Scheduler,
		hub:         svc.Hub,
		logs:        svc.Logs,
		keyLimiter:  ratelimit.NewKeyLimiter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// KeyLimiter returns the limiter guarding API key checks.
func (s *Server) KeyLimiter() *ratelimit.KeyLimiter {
	return s.keyLimiter
}
