package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-space-recommender/internal/catalog"    // catalog store read by the health check
	"github.com/iliyamo/event-space-recommender/internal/handler"    // HTTP handlers
	"github.com/iliyamo/event-space-recommender/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/event-space-recommender/internal/utils"      // role names
)

// RegisterRoutes registers routes that do not belong to any API group.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo, store *catalog.Store) {
	e.GET("/healthz", handler.Health(store))
}

// RegisterCatalog registers the read-only catalog endpoints.  cache wraps
// every route; pass nil to serve uncached.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	mw := chain(cache)
	e.GET("/v1/rooms", h.ListRooms, mw...)
	e.GET("/v1/rooms/:id", h.GetRoom, mw...)
	e.GET("/v1/styles/:style/rooms", h.RoomsByStyle, mw...)
}

// RegisterRecommend registers the recommendation and document endpoints.
// The limiter applies to all of them; the cache only to the JSON
// recommendation endpoint since uploads are not replayed.
func RegisterRecommend(e *echo.Echo, r *handler.RecommendHandler, d *handler.DocumentHandler, cache, limiter echo.MiddlewareFunc) {
	e.POST("/v1/recommendations", r.Recommend, chain(limiter, cache)...)
	e.POST("/v1/documents/extract", d.Extract, chain(limiter)...)
	e.POST("/v1/documents/analyze", d.Analyze, chain(limiter)...)
}

// chain drops nil middleware so optional features can be passed as nil.
func chain(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterAdmin registers operator endpoints.  Every route needs a bearer
// token signed with jwtSecret and carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(utils.RoleAdmin))
	g.GET("/catalog", a.Status)
	g.POST("/catalog/reload", a.Reload)
}
