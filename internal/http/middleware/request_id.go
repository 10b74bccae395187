package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an X-Request-ID, honoring one supplied
// by the client and minting a fresh UUID otherwise. The ID is echoed on the
// response and stored on the context for log correlation.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}

			c.Response().Header().Set(requestIDHeader, id)
			c.Set("request_id", id)

			return next(c)
		}
	}
}
