package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/event-space-recommender/internal/catalog"
    "github.com/iliyamo/event-space-recommender/internal/model"
    "github.com/iliyamo/event-space-recommender/internal/queue"
    "github.com/iliyamo/event-space-recommender/internal/recommend"
    "github.com/iliyamo/event-space-recommender/internal/service"
)

const noSuitableRoom = "no suitable room"

// RecommendHandler answers best-fit recommendation requests.
type RecommendHandler struct {
    Store  *catalog.Store
    Events service.EventPublisher
    Log    *zap.Logger
}

type recommendRequest struct {
    AttendeeCount int    `json:"attendee_count"`
    Style         string `json:"style"`
    Limit         int    `json:"limit"`
}

type optionView struct {
    RoomID           string             `json:"room_id"`
    Name             string             `json:"name"`
    Area             string             `json:"area,omitempty"`
    Style            model.SeatingStyle `json:"style"`
    CapacityForStyle int                `json:"capacity_for_style"`
    Slack            int                `json:"slack"`
    ScoreRank        int                `json:"score_rank"`
    Fit              recommend.Fit      `json:"fit"`
}

type resultView struct {
    Items          []optionView `json:"items"`
    StyleRelaxed   bool         `json:"style_relaxed"`
    CatalogVersion string       `json:"catalog_version"`
    Message        string       `json:"message,omitempty"`
}

func viewOf(res recommend.Result, version string) resultView {
    v := resultView{Items: make([]optionView, 0, len(res.Items)), StyleRelaxed: res.StyleRelaxed, CatalogVersion: version}
    for _, o := range res.Items {
        v.Items = append(v.Items, optionView{
            RoomID:           o.Room.ID,
            Name:             o.Room.Name,
            Area:             o.Room.Area,
            Style:            o.Style,
            CapacityForStyle: o.Capacity,
            Slack:            o.Slack,
            ScoreRank:        o.Rank,
            Fit:              o.Fit,
        })
    }
    if res.Empty() {
        v.Message = noSuitableRoom
    }
    return v
}

// Recommend handles POST /v1/recommendations.  An unknown or empty style is
// not an error: every style is considered and style_relaxed is set.  An
// empty result is still 200.
func (h *RecommendHandler) Recommend(c echo.Context) error {
    var in recommendRequest
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
    }
    cat := h.Store.Load()
    if cat == nil {
        return noCatalog(c)
    }
    req := recommend.Request{
        AttendeeCount: in.AttendeeCount,
        Style:         model.ParseSeatingStyle(in.Style),
        Limit:         in.Limit,
    }
    res, err := recommend.Recommend(req, cat)
    if err != nil {
        return errorJSON(c, err)
    }
    h.issued(cat.Version(), req, res, "api")
    return c.JSON(http.StatusOK, viewOf(res, cat.Version()))
}

// issued publishes a recommendation.issued event in the background.
func (h *RecommendHandler) issued(version string, req recommend.Request, res recommend.Result, origin string) {
    if h.Events == nil {
        return
    }
    ids := make([]string, 0, len(res.Items))
    for _, o := range res.Items {
        ids = append(ids, o.Room.ID)
    }
    ev := queue.RecommendationIssuedEvent{
        CatalogVersion: version,
        AttendeeCount:  req.AttendeeCount,
        Style:          req.Style.String(),
        StyleRelaxed:   res.StyleRelaxed,
        RoomIDs:        ids,
        Origin:         origin,
    }
    service.Go(h.Log, func(ctx context.Context) error {
        return h.Events.PublishRecommendationIssued(ctx, ev)
    })
}
