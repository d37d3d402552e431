package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/ports"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// InFlight rejects a request whose Idempotency-Key is already being
// processed for the same user. Requests without the header pass through.
// The key is released when the handler returns, so a retry after completion
// runs again.
func InFlight(guard ports.InFlightGuard, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderIdempotencyKey)
			if key == "" {
				return next(c)
			}
			userID, _ := c.Get("user_id").(string)
			key = userID + ":" + c.Path() + ":" + key

			ctx := c.Request().Context()
			ok, err := guard.Acquire(ctx, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("in-flight guard unavailable, processing without it")
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusConflict, "request already in progress")
			}
			defer func() {
				if err := guard.Release(ctx, key); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("in-flight guard release failed")
				}
			}()

			return next(c)
		}
	}
}
