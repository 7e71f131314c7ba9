package middleware // reusable HTTP middleware for the echo server

import (
    "net/http" // HTTP status codes for responses
    "strings"  // prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // parsing and validating tokens
    "github.com/labstack/echo/v4"  // middleware signature
)

// JWTAuth returns an Echo middleware that validates a Bearer token signed
// with secret (HS256 only) and stores its subject, role and token ID in the
// request context.  Handlers read them through Subject and Role.  An empty
// secret rejects every request, which keeps the admin API closed when
// JWT_SECRET is not configured.
func JWTAuth(secret string) echo.MiddlewareFunc {
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if secret == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin api disabled"})
            }
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            // claims the rest of the chain relies on
            if sub, ok := claims["sub"].(string); ok {
                c.Set(ctxSubject, sub)
            }
            if role, ok := claims["role"].(string); ok {
                c.Set(ctxRole, role)
            }
            if jti, ok := claims["jti"].(string); ok {
                c.Set(ctxTokenID, jti)
            }
            return next(c)
        }
    }
}
