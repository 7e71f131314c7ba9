package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-space-recommender/internal/catalog"
    "github.com/iliyamo/event-space-recommender/internal/document"
    "github.com/iliyamo/event-space-recommender/internal/recommend"
)

// errorJSON maps domain errors onto HTTP responses.  Anything it does not
// recognise becomes a 500 whose cause the request logger records.
func errorJSON(c echo.Context, err error) error {
    var ie *catalog.IngestionError
    switch {
    case errors.As(err, &ie):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":  "catalog ingestion failed",
            "reason": ie.Reason,
            "issues": ie.Issues,
        })
    case errors.Is(err, document.ErrUnreadable):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, recommend.ErrInvalidRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, catalog.ErrRoomNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
    }
    return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}

// noCatalog answers requests that arrive before any catalog was loaded.
func noCatalog(c echo.Context) error {
    return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "catalog not loaded"})
}
