package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireTipo returns a middleware function that enforces that the
// authenticated user has one of the specified account types.  The
// values correspond to the JWT's "tipo" claim ("admin" or "comum").
// If the user's tipo is not in the allowed set, the request is
// aborted with a 403 Forbidden response.  It assumes JWTAuth has
// already extracted the claim into the context.
func RequireTipo(tipos ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(tipos))
	for _, t := range tipos {
		allowed[t] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("tipo")
			tipo, ok := v.(string)
			if !ok || !allowed[tipo] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
