package middleware

import (
	"crypto/subtle"
	"fmt"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slipstream/couchlist/internal/api/ratelimit"
)

// HeaderAPIKey carries the API key. Websocket clients that cannot set
// headers pass it as the apikey query parameter instead.
const HeaderAPIKey = "X-Api-Key"

// APIKey rejects requests that do not present key. An empty key disables
// the check. Clients that fail repeatedly are locked out by limiter.
func APIKey(key string, limiter *ratelimit.KeyLimiter, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if key == "" {
			return next
		}

		return func(c echo.Context) error {
			client := c.RealIP()

			if remaining := limiter.LockoutRemaining(client); remaining > 0 {
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(remaining.Seconds()))))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many failed attempts, try again later")
			}

			presented := c.Request().Header.Get(HeaderAPIKey)
			if presented == "" {
				presented = c.QueryParam("apikey")
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				limiter.RecordFailure(client)
				logger.Warn().Str("client", client).Str("path", c.Request().URL.Path).Msg("Rejected request with invalid API key")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing API key")
			}

			limiter.RecordSuccess(client)
			return next(c)
		}
	}
}
