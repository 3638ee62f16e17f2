package movielist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/couchlist/internal/entry"
	"github.com/slipstream/couchlist/internal/testutil"
	"github.com/slipstream/couchlist/internal/validation"
)

func newTestHandlers(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	tdb := testutil.NewTestDB(t)

	service := NewService(tdb.Conn, tdb.Logger)
	e := echo.New()
	NewHandlers(service, nil).RegisterRoutes(e.Group("/api/v1/lists"))
	return e, service
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlers_AddAndContains(t *testing.T) {
	e, _ := newTestHandlers(t)

	rec := serve(e, http.MethodPost, "/api/v1/lists/cp/entries",
		`{"title": "The Matrix", "imdbId": "tt0133093"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "cp", item.ListName)
	assert.Equal(t, "tt0133093", item.IMDBID)

	rec = serve(e, http.MethodGet, "/api/v1/lists/cp/contains?imdb_id=tt0133093", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contains": true}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/api/v1/lists/cp/contains?title=heat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contains": false}`, rec.Body.String())
}

func TestHandlers_AddInvalid(t *testing.T) {
	e, _ := newTestHandlers(t)

	tests := []struct {
		name string
		body string
	}{
		{"no ids", `{"title": "Nameless"}`},
		{"no title", `{"imdbId": "tt0133093"}`},
		{"bad imdb", `{"title": "X", "imdbId": "nope"}`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/api/v1/lists/cp/entries", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlers_AddChecksStructTags(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)

	// accept everything so only the struct tags can reject
	allowAll := entry.ValidatorFunc(func(entry.Entry) error { return nil })
	e := echo.New()
	NewHandlers(service, allowAll).RegisterRoutes(e.Group("/api/v1/lists"))

	rec := serve(e, http.MethodPost, "/api/v1/lists/cp/entries", `{"imdbId": "tt0133093"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var body struct {
		Message string                  `json:"message"`
		Fields  []validation.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "required", body.Fields[0].Tag)
	assert.Contains(t, body.Fields[0].Field, "title")
	assert.Contains(t, body.Message, "is required")

	items, err := service.Entries(context.Background(), "cp")
	require.NoError(t, err)
	assert.Empty(t, items)

	rec = serve(e, http.MethodPost, "/api/v1/lists/cp/entries", `{"title": "Nameless"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "custom validator still decides the rest")
}

func TestHandlers_ListsDiscardClear(t *testing.T) {
	e, service := newTestHandlers(t)
	ctx := context.Background()

	_, err := service.Replace(ctx, "cp", []entry.Entry{
		{Title: "The Matrix", IMDBID: "tt0133093"},
		{Title: "Alien", TMDBID: "348"},
	})
	require.NoError(t, err)

	rec := serve(e, http.MethodGet, "/api/v1/lists", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name": "cp", "count": 2}]`, rec.Body.String())

	rec = serve(e, http.MethodDelete, "/api/v1/lists/cp/entries?tmdb_id=348", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodDelete, "/api/v1/lists/cp/entries?tmdb_id=348", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodDelete, "/api/v1/lists/cp/entries", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/api/v1/lists/cp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "The Matrix", items[0].Title)

	rec = serve(e, http.MethodDelete, "/api/v1/lists/cp", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodGet, "/api/v1/lists/cp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
