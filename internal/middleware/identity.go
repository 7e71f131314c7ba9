package middleware

// identity.go holds the context keys JWTAuth fills in and the accessors the
// rest of the chain uses to read them.

import "github.com/labstack/echo/v4"

const (
    ctxSubject = "subject"
    ctxRole    = "role"
    ctxTokenID = "token_id"
)

// Subject returns the authenticated subject, or "guest" for anonymous
// requests.
func Subject(c echo.Context) string {
    if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
        return s
    }
    return "guest"
}

// Role returns the role claim of the authenticated token, or "".
func Role(c echo.Context) string {
    s, _ := c.Get(ctxRole).(string)
    return s
}

// TokenID returns the jti claim of the authenticated token, or "".
func TokenID(c echo.Context) string {
    s, _ := c.Get(ctxTokenID).(string)
    return s
}
