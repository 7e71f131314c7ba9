package handler

import (
    "errors"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-space-recommender/internal/availability"
    "github.com/iliyamo/event-space-recommender/internal/document"
    "github.com/iliyamo/event-space-recommender/internal/extract"
    "github.com/iliyamo/event-space-recommender/internal/recommend"
)

// DefaultMaxUpload caps a single uploaded document.
const DefaultMaxUpload = 10 << 20

// defaultAnalyzeLimit is how many rooms are suggested per requirement.
const defaultAnalyzeLimit = 5

var errNoUpload = errors.New("no document uploaded")

// DocumentHandler runs the extractors on uploaded request documents.
// Uploads are processed in memory and never stored.
type DocumentHandler struct {
    Recommender *RecommendHandler
    Extractor   *extract.Extractor
    MaxUpload   int64
}

type requirementResult struct {
    Requirement     extract.Requirement     `json:"requirement"`
    Recommendations resultView              `json:"recommendations"`
    Conflicts       []availability.Conflict `json:"conflicts"`
    Notes           []string                `json:"notes"`
}

func (h *DocumentHandler) extractor() *extract.Extractor {
    if h.Extractor != nil {
        return h.Extractor
    }
    return extract.DefaultExtractor()
}

func (h *DocumentHandler) maxUpload() int64 {
    if h.MaxUpload > 0 {
        return h.MaxUpload
    }
    return DefaultMaxUpload
}

// readUpload returns the first multipart file found under fields, or the raw
// request body when the request is not multipart.  errNoUpload is returned
// when nothing was sent.
func (h *DocumentHandler) readUpload(c echo.Context, fields ...string) ([]byte, string, error) {
    limit := h.maxUpload()
    if isMultipart(c) {
        for _, name := range fields {
            fh, err := c.FormFile(name)
            if err != nil {
                continue
            }
            f, err := fh.Open()
            if err != nil {
                return nil, "", fmt.Errorf("open %s: %w", name, err)
            }
            data, err := readLimited(f, limit)
            _ = f.Close()
            return data, fh.Filename, err
        }
        return nil, "", errNoUpload
    }
    if len(fields) == 0 || c.Request().Body == nil {
        return nil, "", errNoUpload
    }
    data, err := readLimited(c.Request().Body, limit)
    if err != nil {
        return nil, "", err
    }
    if len(data) == 0 {
        return nil, "", errNoUpload
    }
    return data, c.QueryParam("filename"), nil
}

func isMultipart(c echo.Context) bool {
    return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
    data, err := io.ReadAll(io.LimitReader(r, limit+1))
    if err != nil {
        return nil, fmt.Errorf("read upload: %w", err)
    }
    if int64(len(data)) > limit {
        return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document too large")
    }
    return data, nil
}

func uploadError(c echo.Context, err error) error {
    var he *echo.HTTPError
    switch {
    case errors.Is(err, errNoUpload):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.As(err, &he):
        return c.JSON(he.Code, echo.Map{"error": he.Message})
    }
    return errorJSON(c, err)
}

// Extract handles POST /v1/documents/extract: multipart field "document"
// (or a raw text body) in, header fields and requirement rows out.  Absent
// header fields are null.
func (h *DocumentHandler) Extract(c echo.Context) error {
    data, name, err := h.readUpload(c, "document", "rfp")
    if err != nil {
        return uploadError(c, err)
    }
    text, err := document.Text(data, name)
    if err != nil {
        return errorJSON(c, err)
    }
    headers := h.extractor().Extract(text)
    reqs := extract.ParseRequirements(text)
    if reqs == nil {
        reqs = []extract.Requirement{}
    }
    return c.JSON(http.StatusOK, echo.Map{
        "headers":        headers,
        "missing":        headers.Missing(),
        "requirements":   reqs,
        "looks_like_rfp": extract.LooksLikeRFP(text),
    })
}

// Analyze handles POST /v1/documents/analyze: an RFP ("rfp") and an
// optional function diary ("diary").  Each requirement row is recommended
// on its own.  Outdoor rooms are offered only in season and never for
// meetings or breakouts; when a diary is given, rooms booked during the
// row's window are removed and reported as conflicts.  Breakfasts and
// lunches get a note suggesting the next same-day meeting room.  ?limit=
// caps rooms per row.
func (h *DocumentHandler) Analyze(c echo.Context) error {
    limit := defaultAnalyzeLimit
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a non-negative integer"})
        }
        limit = n
    }

    data, name, err := h.readUpload(c, "rfp", "document")
    if err != nil {
        return uploadError(c, err)
    }
    text, err := document.Text(data, name)
    if err != nil {
        return errorJSON(c, err)
    }

    var bookings []availability.Booking
    haveDiary := false
    if isMultipart(c) {
        diary, diaryName, err := h.readUpload(c, "diary")
        switch {
        case err == nil:
            if bookings, err = availability.ParseDiary(diary, diaryName); err != nil {
                return errorJSON(c, err)
            }
            haveDiary = true
        case !errors.Is(err, errNoUpload):
            return uploadError(c, err)
        }
    }

    cat := h.Recommender.Store.Load()
    if cat == nil {
        return noCatalog(c)
    }

    headers := h.extractor().Extract(text)
    reqs := extract.ParseRequirements(text)
    results := make([]requirementResult, 0, len(reqs))
    steps := make([]availability.Step, 0, len(reqs))
    for _, r := range reqs {
        // rooms are dropped before the limit applies
        rr := recommend.Request{AttendeeCount: r.Attendees, Style: r.Style}
        res, err := recommend.Recommend(rr, cat)
        if err != nil {
            return errorJSON(c, err)
        }
        w := availability.WindowFor(r, headers.ArrivalDate.Date)
        res = availability.Filter(res, availability.OutdoorMask(res, r.Purpose, w.Date))

        conflicts := []availability.Conflict{}
        if haveDiary {
            mask, found := availability.Mask(res, cat, w, bookings)
            res = availability.Filter(res, mask)
            if found != nil {
                conflicts = found
            }
        }
        if limit > 0 && len(res.Items) > limit {
            res.Items = res.Items[:limit]
        }
        rr.Limit = limit
        h.Recommender.issued(cat.Version(), rr, res, "document")
        steps = append(steps, availability.Step{Requirement: r, Date: w.Date, Result: res})
        results = append(results, requirementResult{
            Requirement:     r,
            Recommendations: viewOf(res, cat.Version()),
            Conflicts:       conflicts,
        })
    }
    for i, notes := range availability.SequenceNotes(steps) {
        results[i].Notes = notes
    }

    body := echo.Map{
        "headers":         headers,
        "missing":         headers.Missing(),
        "requirements":    results,
        "catalog_version": cat.Version(),
        "diary_bookings":  len(bookings),
    }
    if len(reqs) == 0 {
        body["message"] = "no meeting room requirements found"
    }
    return c.JSON(http.StatusOK, body)
}
