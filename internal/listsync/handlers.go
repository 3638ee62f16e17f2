package listsync

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/couchlist/internal/couchpotato"
)

// Handlers provides HTTP handlers for configured sources.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new source handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers source routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:name/entries", h.Entries)
	g.POST("/:name/sync", h.Sync)
	g.GET("/:name/history", h.History)
}

// SourceResponse is a configured source with its API key masked.
type SourceResponse struct {
	Name        string `json:"name"`
	BaseURL     string `json:"baseUrl"`
	Port        int    `json:"port"`
	APIKey      string `json:"apiKey"`
	IncludeData bool   `json:"includeData"`
	Timeout     int    `json:"timeout"`
}

// List returns the configured sources.
// GET /api/v1/sources
func (h *Handlers) List(c echo.Context) error {
	sources := h.service.Sources()
	out := make([]SourceResponse, 0, len(sources))
	for i := range sources {
		src := &sources[i]
		out = append(out, SourceResponse{
			Name:        src.Name,
			BaseURL:     src.BaseURL,
			Port:        src.Port,
			APIKey:      src.MaskedAPIKey(),
			IncludeData: src.IncludeData,
			Timeout:     src.Timeout,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Entries fetches the source's current entries live.
// GET /api/v1/sources/:name/entries
func (h *Handlers) Entries(c echo.Context) error {
	entries, err := h.service.Fetch(c.Request().Context(), c.Param("name"))
	if err != nil {
		return sourceError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Sync syncs the source into its stored list.
// POST /api/v1/sources/:name/sync
func (h *Handlers) Sync(c echo.Context) error {
	report, err := h.service.SyncSource(c.Request().Context(), c.Param("name"))
	if errors.Is(err, ErrUnknownSource) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		// the report carries the failure
		return c.JSON(statusFor(err), report)
	}
	return c.JSON(http.StatusOK, report)
}

// History returns recent sync runs of the source.
// GET /api/v1/sources/:name/history?limit=
func (h *Handlers) History(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	reports, err := h.service.History(c.Request().Context(), c.Param("name"), limit)
	if err != nil {
		return sourceError(err)
	}
	return c.JSON(http.StatusOK, reports)
}

func sourceError(err error) error {
	if errors.Is(err, ErrUnknownSource) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(statusFor(err), err.Error())
}

func statusFor(err error) int {
	if couchpotato.IsUpstreamError(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
