package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/slipstream/couchlist/internal/api/ratelimit"
)

func newEcho(key string) *echo.Echo {
	return newEchoWithLogger(key, zerolog.Nop())
}

func newEchoWithLogger(key string, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.Use(SecurityHeaders())
	g := e.Group("/api/v1", APIKey(key, ratelimit.NewKeyLimiter(), logger))
	g.GET("/status", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func do(e *echo.Echo, target string, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	req.RemoteAddr = "192.0.2.10:4000"
	if header != "" {
		req.Header.Set(HeaderAPIKey, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAPIKey_Disabled(t *testing.T) {
	e := newEcho("")
	rec := do(e, "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAPIKey_Checks(t *testing.T) {
	e := newEcho("s3cret")

	assert.Equal(t, http.StatusUnauthorized, do(e, "/api/v1/status", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/api/v1/status", "wrong").Code)
	assert.Equal(t, http.StatusOK, do(e, "/api/v1/status", "s3cret").Code)
	assert.Equal(t, http.StatusOK, do(e, "/api/v1/status?apikey=s3cret", "").Code)
}

func TestAPIKey_RejectionLogOmitsQuery(t *testing.T) {
	var logs bytes.Buffer
	e := newEchoWithLogger("s3cret", zerolog.New(&logs))

	rec := do(e, "/api/v1/status?apikey=s3cre7-typo", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Contains(t, logs.String(), `"path":"/api/v1/status"`)
	assert.NotContains(t, logs.String(), "s3cre7-typo")
}

func TestAPIKey_Lockout(t *testing.T) {
	e := newEcho("s3cret")

	for i := 0; i < ratelimit.DefaultMaxFailedAttempts; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(e, "/api/v1/status", "wrong").Code)
	}

	rec := do(e, "/api/v1/status", "s3cret")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
