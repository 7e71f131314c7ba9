package handler // HTTP handlers

import (
    "net/http" // status codes

    "github.com/labstack/echo/v4" // web framework

    "github.com/iliyamo/event-space-recommender/internal/catalog" // catalog store reported by the check
)

// Health is the liveness endpoint used by load balancers.  It reports the
// catalog being served; the service is healthy even before a catalog is
// loaded, in which case catalog_version is empty.
func Health(store *catalog.Store) echo.HandlerFunc {
    return func(c echo.Context) error {
        body := echo.Map{"status": "ok", "catalog_version": "", "rooms": 0}
        if cat := store.Load(); cat != nil {
            body["catalog_version"] = cat.Version()
            body["rooms"] = cat.Len()
        }
        return c.JSON(http.StatusOK, body)
    }
}
