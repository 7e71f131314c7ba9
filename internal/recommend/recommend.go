// Package recommend ranks catalog rooms against an attendee count and a
// seating style.
//
// The ranking is deterministic: rooms that cannot seat the group are
// excluded, the rest are ordered by slack (capacity minus attendees), and
// equal slack is broken by room_id.  The engine is a pure function of its
// inputs and never modifies the catalog.
package recommend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
	"github.com/iliyamo/event-space-recommender/internal/model"
)

// ErrInvalidRequest is returned before any catalog scan when the request
// cannot be evaluated.
var ErrInvalidRequest = errors.New("invalid recommendation request")

// Request asks for rooms able to seat AttendeeCount people in Style.
type Request struct {
	AttendeeCount int                `json:"attendee_count"`
	Style         model.SeatingStyle `json:"style"`
	Limit         int                `json:"limit,omitempty"` // 0 returns every candidate
}

// Fit is a coarse label for how snugly a room fits the group.
type Fit string

const (
	FitExcellent Fit = "Excellent"
	FitStrong    Fit = "Strong"
	FitFair      Fit = "Fair"
	FitLimited   Fit = "Limited"
)

// FitFor labels the ratio of slack to attendees.
func FitFor(slack, attendees int) Fit {
	if attendees <= 0 {
		return FitLimited
	}
	pct := slack * 100 / attendees
	switch {
	case pct <= 20:
		return FitExcellent
	case pct <= 45:
		return FitStrong
	case pct <= 75:
		return FitFair
	}
	return FitLimited
}

// Option is one ranked candidate.
type Option struct {
	Room     model.Room
	Style    model.SeatingStyle // style the capacity refers to
	Capacity int
	Slack    int
	Rank     int // 1-based, contiguous
	Fit      Fit
}

// Result is the ordered candidate list, best first.  Items may be empty.
type Result struct {
	Items []Option
	// StyleRelaxed is set when the requested style was unknown and every
	// style of every room was considered.
	StyleRelaxed bool
}

// Empty reports whether no room fits.
func (r Result) Empty() bool { return len(r.Items) == 0 }

// Recommend ranks the rooms of cat for req.  The catalog is read exactly
// once per call, so a caller holding a *Catalog gets a consistent answer
// even while a newer catalog is being published.
func Recommend(req Request, cat *catalog.Catalog) (Result, error) {
	if req.AttendeeCount <= 0 {
		return Result{}, fmt.Errorf("%w: attendee_count must be positive, got %d", ErrInvalidRequest, req.AttendeeCount)
	}
	if req.Limit < 0 {
		return Result{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}
	if cat == nil {
		return Result{}, fmt.Errorf("%w: no catalog loaded", ErrInvalidRequest)
	}

	var res Result
	var items []Option
	if req.Style.Known() {
		for _, room := range cat.QueryByStyle(req.Style) {
			capacity, _ := room.Capacity(req.Style)
			if capacity < req.AttendeeCount {
				continue
			}
			items = append(items, Option{Room: room, Style: req.Style, Capacity: capacity})
		}
	} else {
		res.StyleRelaxed = true
		for _, room := range cat.Rooms() {
			if opt, ok := bestStyle(room, req.AttendeeCount); ok {
				items = append(items, opt)
			}
		}
	}

	for i := range items {
		items[i].Slack = items[i].Capacity - req.AttendeeCount
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Slack != items[j].Slack {
			return items[i].Slack < items[j].Slack
		}
		return items[i].Room.ID < items[j].Room.ID
	})
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}
	for i := range items {
		items[i].Rank = i + 1
		items[i].Fit = FitFor(items[i].Slack, req.AttendeeCount)
	}
	res.Items = items
	return res, nil
}

// bestStyle picks the fitting style of room with the least slack.  Style
// name breaks ties.
func bestStyle(room model.Room, attendees int) (Option, bool) {
	var best Option
	found := false
	for _, style := range room.Styles() {
		capacity, _ := room.Capacity(style)
		if capacity < attendees {
			continue
		}
		if !found || capacity < best.Capacity || (capacity == best.Capacity && style < best.Style) {
			best = Option{Room: room, Style: style, Capacity: capacity}
			found = true
		}
	}
	return best, found
}
