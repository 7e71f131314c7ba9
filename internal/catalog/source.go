package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

// DefaultExcludeTokens drop chart rows that describe circulation space or
// totals rather than bookable rooms.
var DefaultExcludeTokens = []string{"pre-function", "total indoor space"}

// reserved source keys that are never seating styles
var reservedKeys = map[string]bool{
	"room_id": true, "id": true, "name": true, "area": true,
	"sq_ft": true, "sqft": true, "capacities": true,
	"ceiling": true, "ceiling_height": true, "floor": true,
	"dimensions": true, "length": true, "width": true, "height": true,
}

type options struct {
	exclude []string
	aliases map[string]string
	now     func() time.Time
}

// Option customises Build and New.
type Option func(*options)

// WithExcludeTokens replaces DefaultExcludeTokens.  Rows whose name contains
// any token (case-insensitive) are skipped.
func WithExcludeTokens(tokens ...string) Option {
	return func(o *options) { o.exclude = tokens }
}

// WithAliases adds room-name aliases used by ResolveName.
func WithAliases(aliases map[string]string) Option {
	return func(o *options) {
		for k, v := range aliases {
			o.aliases[k] = v
		}
	}
}

// WithClock overrides the build timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		exclude: DefaultExcludeTokens,
		aliases: map[string]string{},
		now:     time.Now,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o options) rejectReason(r model.Room) string {
	if strings.TrimSpace(r.Name) == "" {
		return "missing name"
	}
	if strings.TrimSpace(r.ID) == "" {
		return "missing room_id"
	}
	lower := strings.ToLower(r.Name)
	for _, tok := range o.exclude {
		if tok != "" && strings.Contains(lower, strings.ToLower(tok)) {
			return "excluded by token " + strconv.Quote(tok)
		}
	}
	if len(r.Capacities) == 0 {
		return "no seating capacities"
	}
	for s, n := range r.Capacities {
		if !s.Known() {
			return "unknown seating style " + strconv.Quote(string(s))
		}
		if n < 0 {
			return fmt.Sprintf("negative capacity %d for %s", n, s)
		}
	}
	return ""
}

type sourceDoc struct {
	Rooms   []json.RawMessage `json:"rooms"`
	Aliases map[string]string `json:"aliases"`
}

// Build parses a JSON capacity chart.  The source is either an array of
// rooms or an object {"rooms": [...], "aliases": {...}}.  Each room carries
// its capacities either in a "capacities" object or as flat style keys next
// to "name".  Invalid rows are skipped and reported through Issues; Build
// fails with an *IngestionError when nothing valid remains.
func Build(src []byte, opts ...Option) (*Catalog, error) {
	o := buildOptions(opts)
	trimmed := bytes.TrimSpace(src)
	if len(trimmed) == 0 {
		return nil, &IngestionError{Reason: "empty source"}
	}

	var doc sourceDoc
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &doc.Rooms); err != nil {
			return nil, &IngestionError{Reason: "malformed JSON", Err: err}
		}
	case '{':
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &IngestionError{Reason: "malformed JSON", Err: err}
		}
		if doc.Rooms == nil {
			return nil, &IngestionError{Reason: `missing "rooms" array`}
		}
	default:
		return nil, &IngestionError{Reason: "source is not a JSON array or object"}
	}

	var (
		issues []Issue
		rooms  = make([]model.Room, 0, len(doc.Rooms))
		rows   = make([]int, 0, len(doc.Rooms))
	)
	for i, raw := range doc.Rooms {
		r, rowIssues, err := parseRoom(raw)
		for _, is := range rowIssues {
			is.Row = i
			issues = append(issues, is)
		}
		if err != nil {
			issues = append(issues, Issue{Row: i, Name: r.Name, Reason: err.Error()})
			continue
		}
		if reason := o.rejectReason(r); reason != "" {
			issues = append(issues, Issue{Row: i, Name: r.Name, Reason: reason})
			continue
		}
		rooms = append(rooms, r)
		rows = append(rows, i)
	}
	return assemble(rooms, rows, issues, doc.Aliases, o)
}

// LoadFile reads and builds a chart stored on disk.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IngestionError{Reason: "read " + path, Err: err}
	}
	return Build(b, opts...)
}

// parseRoom decodes one source row.  Warnings that do not invalidate the row
// (an unknown style key) come back as issues; a non-nil error rejects it.
func parseRoom(raw json.RawMessage) (model.Room, []Issue, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Room{}, nil, fmt.Errorf("row is not an object: %w", err)
	}
	var r model.Room
	r.Name = strings.TrimSpace(stringField(fields, "name"))
	r.ID = strings.TrimSpace(stringField(fields, "room_id"))
	if r.ID == "" {
		r.ID = strings.TrimSpace(stringField(fields, "id"))
	}
	if r.ID == "" {
		r.ID = Slug(r.Name)
	}
	r.Area = strings.TrimSpace(stringField(fields, "area"))
	r.SqFt = lenientInt(fields["sq_ft"])
	if r.SqFt == 0 {
		r.SqFt = lenientInt(fields["sqft"])
	}

	capFields := fields
	nested := false
	if rawCaps, ok := fields["capacities"]; ok {
		capFields = nil
		if err := json.Unmarshal(rawCaps, &capFields); err != nil {
			return r, nil, fmt.Errorf("capacities is not an object: %w", err)
		}
		nested = true
	}

	var issues []Issue
	r.Capacities = make(map[model.SeatingStyle]int)
	for key, val := range capFields {
		if !nested && reservedKeys[strings.ToLower(key)] {
			continue
		}
		if isNull(val) {
			continue
		}
		style := model.ParseSeatingStyle(key)
		if style != model.StyleUnknown && isPlaceholder(val) {
			issues = append(issues, Issue{Name: r.Name, Reason: fmt.Sprintf("%s not offered (%s)", style, bytes.TrimSpace(val))})
			continue
		}
		n, err := capacityValue(val)
		if err != nil {
			if !nested && style == model.StyleUnknown {
				continue // descriptive column, not a capacity
			}
			return r, issues, fmt.Errorf("capacity %q: %w", key, err)
		}
		if style == model.StyleUnknown {
			issues = append(issues, Issue{Name: r.Name, Reason: "unknown seating style " + strconv.Quote(key) + " ignored"})
			continue
		}
		if prev, dup := r.Capacities[style]; dup && prev >= n {
			continue // two source columns for one style: keep the larger ceiling
		}
		r.Capacities[style] = n
	}
	return r, issues, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func capacityValue(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int(f), nil
}

func lenientInt(raw json.RawMessage) int {
	if len(raw) == 0 || isNull(raw) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f >= 0 {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}

// isPlaceholder reports a string cell such as "-" or "N/A" that marks a
// setup the room does not offer.
func isPlaceholder(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return unsupportedCells[strings.ToLower(strings.TrimSpace(s))]
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
