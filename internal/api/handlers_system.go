package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/couchpotato"
	"github.com/slipstream/couchlist/internal/plugin"
)

func (s *Server) healthCheck(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	ctx := c.Request().Context()

	lists, err := s.listService.Lists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sources := make([]string, 0, len(s.cfg.Sources))
	for _, src := range s.cfg.Sources {
		sources = append(sources, src.Name)
	}

	response := map[string]any{
		"version":    config.Version,
		"startTime":  s.startTime.Format(time.RFC3339),
		"plugin":     couchpotato.PluginName,
		"plugins":    plugin.InGroup(plugin.GroupList),
		"sources":    sources,
		"lists":      lists,
		"apiKeyAuth": s.cfg.Server.APIKey != "",
	}
	if s.hub != nil {
		response["wsClients"] = s.hub.ClientCount()
	}
	return c.JSON(http.StatusOK, response)
}
