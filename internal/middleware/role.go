package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole restricts a route to users whose "role" claim is in the allowed
// set. JWTAuth must run first so the role is present in context; a missing or
// foreign role answers 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
