package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// livePathSuffix marks the long-lived appointment feed.
const livePathSuffix = "/appointments/live"

// RequestTimeout puts a deadline on the request context and answers 504 when
// the handler has not finished by then. A non-positive timeout disables it.
// The live feed and any WebSocket upgrade are left without a deadline.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if timeout <= 0 {
			return next
		}
		return func(c echo.Context) error {
			if isLongLived(c.Request()) {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")
				}
				return ctx.Err()
			}
		}
	}
}

func isLongLived(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, livePathSuffix) ||
		strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
