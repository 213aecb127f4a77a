// Package middleware provides reusable HTTP middleware: JWT authentication,
// role enforcement, Redis-backed rate limiting and response caching.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var errInvalidToken = errors.New("invalid token")

// ParseAccessToken validates an HS256 access token and returns the user id
// and role claims. It is shared by the HTTP middleware and the WebSocket
// upgrade handler, which receives the token as a query parameter because
// browsers cannot set custom headers on WebSocket requests.
func ParseAccessToken(secret, raw string) (uint64, string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, "", errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errInvalidToken
	}
	// Numeric JSON claims decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, "", errInvalidToken
	}
	role, _ := claims["role"].(string)
	return uint64(sub), role, nil
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the authenticated user id and role in the request context under
// "user_id" and "role". Protected handlers read them back via c.Get.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			userID, role, err := ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}
