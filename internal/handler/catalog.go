// Package handler exposes the HTTP handlers of the recommender API.  Every
// handler reads the current catalog once from the Store and uses that
// reference for the whole request.
package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-space-recommender/internal/catalog"
    "github.com/iliyamo/event-space-recommender/internal/model"
)

// CatalogHandler serves read-only views of the capacity catalog.
type CatalogHandler struct {
    Store *catalog.Store
}

// styleRoom is a room listed under one seating style.
type styleRoom struct {
    RoomID   string `json:"room_id"`
    Name     string `json:"name"`
    Area     string `json:"area,omitempty"`
    Capacity int    `json:"capacity"`
}

// ListRooms returns every room in catalog order.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
    cat := h.Store.Load()
    if cat == nil {
        return noCatalog(c)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":           cat.Rooms(),
        "count":           cat.Len(),
        "catalog_version": cat.Version(),
        "built_at":        cat.BuiltAt().UTC().Format(time.RFC3339),
    })
}

// GetRoom returns one room by room_id.
func (h *CatalogHandler) GetRoom(c echo.Context) error {
    cat := h.Store.Load()
    if cat == nil {
        return noCatalog(c)
    }
    room, err := cat.Get(c.Param("id"))
    if err != nil {
        return errorJSON(c, err)
    }
    return c.JSON(http.StatusOK, room)
}

// RoomsByStyle lists the rooms supporting a style with their capacity for
// it.  The style accepts the same synonyms as request documents
// ("banquet", "u-shape", ...).
func (h *CatalogHandler) RoomsByStyle(c echo.Context) error {
    cat := h.Store.Load()
    if cat == nil {
        return noCatalog(c)
    }
    style, ok := model.LookupSeatingStyle(c.Param("style"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error":        "unknown seating style",
            "known_styles": model.KnownStyles,
        })
    }
    rooms := cat.QueryByStyle(style)
    items := make([]styleRoom, 0, len(rooms))
    for _, r := range rooms {
        n, _ := r.Capacity(style)
        items = append(items, styleRoom{RoomID: r.ID, Name: r.Name, Area: r.Area, Capacity: n})
    }
    return c.JSON(http.StatusOK, echo.Map{"style": style, "items": items, "catalog_version": cat.Version()})
}
