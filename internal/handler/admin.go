package handler

import (
    "bytes"
    "context"
    "errors"
    "io"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/event-space-recommender/internal/catalog"
    "github.com/iliyamo/event-space-recommender/internal/middleware"
    "github.com/iliyamo/event-space-recommender/internal/model"
    "github.com/iliyamo/event-space-recommender/internal/queue"
    "github.com/iliyamo/event-space-recommender/internal/repository"
    "github.com/iliyamo/event-space-recommender/internal/service"
)

// maxChartBytes caps an uploaded capacity chart.
const maxChartBytes = 5 << 20

// CatalogLoader builds a catalog from the configured source (the chart file
// or MySQL) and names that source.
type CatalogLoader func(ctx context.Context) (*catalog.Catalog, string, error)

// CatalogPersister stores an accepted catalog.  *repository.RoomRepo
// implements it.
type CatalogPersister interface {
    ReplaceAll(ctx context.Context, rooms []model.Room, version string) error
    LatestImport(ctx context.Context) (repository.Import, error)
}

// AdminHandler serves the operator endpoints behind JWT auth.
type AdminHandler struct {
    Store  *catalog.Store
    Load   CatalogLoader
    Repo   CatalogPersister // nil when MySQL is not configured
    Events service.EventPublisher
    Log    *zap.Logger
}

// Reload handles POST /v1/admin/catalog/reload.  A JSON chart in the body
// is validated and swapped in; an empty body re-reads the configured source.
// On any failure the catalog being served stays in place.
func (h *AdminHandler) Reload(c echo.Context) error {
    ctx := c.Request().Context()
    body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxChartBytes+1))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "read body"})
    }
    if len(body) > maxChartBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "chart too large"})
    }

    var (
        next   *catalog.Catalog
        source string
    )
    if len(bytes.TrimSpace(body)) > 0 {
        next, err = catalog.Build(body)
        source = "upload"
    } else if h.Load != nil {
        next, source, err = h.Load(ctx)
    } else {
        err = &catalog.IngestionError{Reason: "no chart in body and no catalog source configured"}
    }
    if err != nil {
        h.logger().Warn("catalog reload rejected", zap.String("source", source), zap.Error(err))
        return errorJSON(c, err)
    }

    persisted := false
    if h.Repo != nil && source != "mysql" {
        if err := h.Repo.ReplaceAll(ctx, next.Rooms(), next.Version()); err != nil {
            // the new catalog is still served; the database keeps the old rows
            h.logger().Error("persist catalog failed", zap.String("version", next.Version()), zap.Error(err))
        } else {
            persisted = true
        }
    }

    prev := h.Store.Swap(next)
    prevVersion := ""
    if prev != nil {
        prevVersion = prev.Version()
    }
    h.logger().Info("catalog reloaded",
        zap.String("version", next.Version()),
        zap.String("previous_version", prevVersion),
        zap.Int("rooms", next.Len()),
        zap.Int("issues", len(next.Issues())),
        zap.String("source", source),
        zap.String("subject", middleware.Subject(c)),
        zap.String("token_id", middleware.TokenID(c)),
    )

    if h.Events != nil {
        ev := queue.CatalogReloadedEvent{
            Version:         next.Version(),
            PreviousVersion: prevVersion,
            RoomCount:       next.Len(),
            IssueCount:      len(next.Issues()),
            Source:          source,
            Subject:         middleware.Subject(c),
        }
        service.Go(h.Log, func(ctx context.Context) error { return h.Events.PublishCatalogReloaded(ctx, ev) })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "catalog_version":  next.Version(),
        "previous_version": prevVersion,
        "room_count":       next.Len(),
        "issues":           next.Issues(),
        "source":           source,
        "persisted":        persisted,
    })
}

// Status handles GET /v1/admin/catalog: the catalog being served, the rows
// skipped when it was built and, with MySQL, the latest stored import.
func (h *AdminHandler) Status(c echo.Context) error {
    cat := h.Store.Load()
    if cat == nil {
        return noCatalog(c)
    }
    body := echo.Map{
        "catalog_version": cat.Version(),
        "built_at":        cat.BuiltAt().UTC().Format(time.RFC3339),
        "room_count":      cat.Len(),
        "issues":          cat.Issues(),
    }
    if h.Repo != nil {
        im, err := h.Repo.LatestImport(c.Request().Context())
        switch {
        case err == nil:
            body["last_import"] = im
        case errors.Is(err, repository.ErrNoImport):
            body["last_import"] = nil
        default:
            h.logger().Warn("latest import lookup failed", zap.Error(err))
        }
    }
    return c.JSON(http.StatusOK, body)
}

func (h *AdminHandler) logger() *zap.Logger {
    if h.Log == nil {
        return zap.NewNop()
    }
    return h.Log
}
