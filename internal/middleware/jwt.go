// Package middleware provides shared request processing: JWT
// authentication, role enforcement, Redis response caching and rate
// limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/model"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the authenticated principal into the request
// context.  The secret must match the one used when issuing tokens.
// Handlers downstream obtain the principal via CurrentPrincipal.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Reject any signing method other than HMAC.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			sub, ok := claims["sub"].(float64)
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			roleStr, _ := claims["role"].(string)
			role, errRole := model.ParseRole(roleStr)
			if errRole != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role"})
			}

			c.Set("principal", model.Principal{UserID: uint64(sub), Role: role})
			return next(c)
		}
	}
}

// CurrentPrincipal extracts the principal stored by JWTAuth.  The
// boolean is false when no authenticated principal is present.
func CurrentPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get("principal").(model.Principal)
	return p, ok
}
