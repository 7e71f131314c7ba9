// Package catalog holds the capacity catalog: the read-only table of meeting
// rooms and their maximum occupancy per seating style.  A Catalog is built
// once from a source chart and never mutated; re-ingestion produces a new
// Catalog which is swapped in through a Store.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

// Catalog is an immutable set of rooms in source order.
type Catalog struct {
	rooms   []model.Room
	byID    map[string]int
	names   map[string]int    // canonical name -> index
	aliases map[string]string // canonical alias -> canonical room name
	issues  []Issue
	version string
	builtAt time.Time
}

// New builds a catalog from rooms that were already parsed, e.g. loaded back
// from the database.  The same row rules as Build apply.
func New(rooms []model.Room, opts ...Option) (*Catalog, error) {
	o := buildOptions(opts)
	var (
		issues []Issue
		valid  = make([]model.Room, 0, len(rooms))
		rows   = make([]int, 0, len(rooms))
	)
	for i, r := range rooms {
		if reason := o.rejectReason(r); reason != "" {
			issues = append(issues, Issue{Row: i, Name: r.Name, Reason: reason})
			continue
		}
		valid = append(valid, r.Clone())
		rows = append(rows, i)
	}
	return assemble(valid, rows, issues, nil, o)
}

// assemble indexes rooms.  rows[i] is the source row of rooms[i]; issues
// come back ordered by source row.
func assemble(rooms []model.Room, rows []int, issues []Issue, aliases map[string]string, o options) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]int, len(rooms)),
		names:   make(map[string]int, len(rooms)),
		aliases: make(map[string]string, len(aliases)+len(o.aliases)),
		builtAt: o.now(),
	}
	for i, r := range rooms {
		if _, dup := c.byID[r.ID]; dup {
			issues = append(issues, Issue{Row: rows[i], Name: r.Name, Reason: "duplicate room_id " + r.ID})
			continue
		}
		c.byID[r.ID] = len(c.rooms)
		c.names[CanonicalName(r.Name)] = len(c.rooms)
		c.rooms = append(c.rooms, r)
	}
	for from, to := range o.aliases {
		c.aliases[CanonicalName(from)] = CanonicalName(to)
	}
	for from, to := range aliases {
		c.aliases[CanonicalName(from)] = CanonicalName(to)
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
	c.issues = issues
	if len(c.rooms) == 0 {
		return nil, &IngestionError{Reason: "no valid rooms", Issues: issues}
	}
	c.version = fingerprint(c.rooms)
	return c, nil
}

// Len returns the number of rooms.
func (c *Catalog) Len() int { return len(c.rooms) }

// Version is a short content hash of the rooms.  Two catalogs with the same
// rooms in the same order share a version.
func (c *Catalog) Version() string { return c.version }

// BuiltAt is when the catalog was assembled.
func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Issues lists the source rows that were skipped while building.
func (c *Catalog) Issues() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Rooms returns every room in catalog order.
func (c *Catalog) Rooms() []model.Room {
	out := make([]model.Room, len(c.rooms))
	for i, r := range c.rooms {
		out[i] = r.Clone()
	}
	return out
}

// QueryByStyle returns the rooms that define a capacity for style, in
// catalog order.  StyleUnknown matches nothing.
func (c *Catalog) QueryByStyle(style model.SeatingStyle) []model.Room {
	var out []model.Room
	for _, r := range c.rooms {
		if _, ok := r.Capacities[style]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Get looks a room up by ID.
func (c *Catalog) Get(roomID string) (model.Room, error) {
	i, ok := c.byID[roomID]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return c.rooms[i].Clone(), nil
}

// ResolveName maps a free-text room name (as written in a booking diary)
// onto a catalog room.  It tries the canonical name, then configured
// aliases, then the longest catalog name contained in the text.
func (c *Catalog) ResolveName(name string) (model.Room, bool) {
	key := CanonicalName(name)
	if key == "" {
		return model.Room{}, false
	}
	if i, ok := c.names[key]; ok {
		return c.rooms[i].Clone(), true
	}
	if to, ok := c.aliases[key]; ok {
		if i, ok := c.names[to]; ok {
			return c.rooms[i].Clone(), true
		}
	}
	best, bestLen := -1, 0
	for n, i := range c.names {
		if !strings.Contains(key, n) {
			continue
		}
		if len(n) > bestLen || (len(n) == bestLen && i < best) {
			best, bestLen = i, len(n)
		}
	}
	if best < 0 {
		return model.Room{}, false
	}
	return c.rooms[best].Clone(), true
}

// CanonicalName lower-cases a room name, unescapes "&amp;", turns " and "
// into " & " and collapses whitespace.
func CanonicalName(name string) string {
	s := strings.ToLower(strings.Join(strings.Fields(name), " "))
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, " and ", " & ")
	return strings.Join(strings.Fields(s), " ")
}

// Slug derives a stable room ID from a name: lower case, runs of anything
// other than letters and digits become a single dash.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func fingerprint(rooms []model.Room) string {
	type row struct {
		ID   string   `json:"i"`
		Name string   `json:"n"`
		Area string   `json:"a"`
		SqFt int      `json:"s"`
		Caps [][2]any `json:"c"`
	}
	rows := make([]row, 0, len(rooms))
	for _, r := range rooms {
		styles := make([]string, 0, len(r.Capacities))
		for s := range r.Capacities {
			styles = append(styles, string(s))
		}
		sort.Strings(styles)
		caps := make([][2]any, 0, len(styles))
		for _, s := range styles {
			caps = append(caps, [2]any{s, r.Capacities[model.SeatingStyle(s)]})
		}
		rows = append(rows, row{ID: r.ID, Name: r.Name, Area: r.Area, SqFt: r.SqFt, Caps: caps})
	}
	b, _ := json.Marshal(rows)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:6])
}
