package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slipstream/couchlist/internal/api/handlers"
	apimw "github.com/slipstream/couchlist/internal/api/middleware"
	"github.com/slipstream/couchlist/internal/listsync"
	"github.com/slipstream/couchlist/internal/movielist"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// Request body size limit (1MB)
	s.echo.Use(middleware.BodyLimit("1M"))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	keyCheck := apimw.APIKey(s.cfg.Server.APIKey, s.keyLimiter, s.logger)

	if s.hub != nil {
		s.echo.GET("/ws", s.hub.HandleWebSocket, keyCheck)
	}

	api := s.echo.Group("/api/v1", keyCheck)
	api.GET("/status", s.getStatus)

	listsync.NewHandlers(s.syncService).RegisterRoutes(api.Group("/sources"))
	movielist.NewHandlers(s.listService, nil).RegisterRoutes(api.Group("/lists"))

	s.setupSchedulerRoutes(api)
	s.setupSystemRoutes(api)
}

func (s *Server) setupSchedulerRoutes(api *echo.Group) {
	if s.scheduler == nil {
		return
	}
	handlers.NewSchedulerHandler(s.scheduler).RegisterRoutes(api.Group("/scheduler"))
}

func (s *Server) setupSystemRoutes(api *echo.Group) {
	if s.logs == nil {
		return
	}
	NewLogsHandlers(s.logs).RegisterRoutes(api.Group("/system/logs"))
}
