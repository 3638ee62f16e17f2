package movielist

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/couchlist/internal/entry"
	"github.com/slipstream/couchlist/internal/validation"
)

// Handlers provides HTTP handlers for list operations.
type Handlers struct {
	service   *Service
	validator entry.Validator
}

// NewHandlers creates a new list handlers instance. Entries posted through
// the API are checked with validator.
func NewHandlers(service *Service, validator entry.Validator) *Handlers {
	if validator == nil {
		validator = entry.DefaultValidator{}
	}
	return &Handlers{service: service, validator: validator}
}

// RegisterRoutes registers list routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Lists)
	g.GET("/:name", h.Entries)
	g.POST("/:name/entries", h.Add)
	g.GET("/:name/contains", h.Contains)
	g.DELETE("/:name/entries", h.Discard)
	g.DELETE("/:name", h.Clear)
}

// Lists returns every stored list with its size.
// GET /api/v1/lists
func (h *Handlers) Lists(c echo.Context) error {
	lists, err := h.service.Lists(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, lists)
}

// Entries returns the items of one list.
// GET /api/v1/lists/:name
func (h *Handlers) Entries(c echo.Context) error {
	items, err := h.service.Entries(c.Request().Context(), c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Add stores an entry. The body is checked against the struct tags first,
// then against the entry validator.
// POST /api/v1/lists/:name/entries
func (h *Handlers) Add(c echo.Context) error {
	var e entry.Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.ValidateStruct(&e); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"message": verr.Error(),
				"fields":  verr.Fields,
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validator.Valid(e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.service.Add(c.Request().Context(), c.Param("name"), e)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

// Contains reports whether the list holds a matching entry.
// GET /api/v1/lists/:name/contains?imdb_id=&tmdb_id=&title=
func (h *Handlers) Contains(c echo.Context) error {
	probe, err := probeFromQuery(c)
	if err != nil {
		return err
	}

	found, err := h.service.Contains(c.Request().Context(), c.Param("name"), probe)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"contains": found})
}

// Discard removes the matching entry.
// DELETE /api/v1/lists/:name/entries?imdb_id=&tmdb_id=&title=
func (h *Handlers) Discard(c echo.Context) error {
	probe, err := probeFromQuery(c)
	if err != nil {
		return err
	}

	err = h.service.Discard(c.Request().Context(), c.Param("name"), probe)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear deletes every entry of the list.
// DELETE /api/v1/lists/:name
func (h *Handlers) Clear(c echo.Context) error {
	if err := h.service.Clear(c.Request().Context(), c.Param("name")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func probeFromQuery(c echo.Context) (entry.Entry, error) {
	probe := entry.Entry{
		Title:  c.QueryParam("title"),
		IMDBID: c.QueryParam("imdb_id"),
		TMDBID: c.QueryParam("tmdb_id"),
	}
	if probe.Title == "" && probe.IMDBID == "" && probe.TMDBID == "" {
		return probe, echo.NewHTTPError(http.StatusBadRequest, "one of imdb_id, tmdb_id or title is required")
	}
	return probe, nil
}
