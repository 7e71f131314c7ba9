package availability

import (
	"strings"
	"time"

	"github.com/iliyamo/event-space-recommender/internal/extract"
	"github.com/iliyamo/event-space-recommender/internal/model"
	"github.com/iliyamo/event-space-recommender/internal/recommend"
)

// Outdoor season bounds, inclusive.
var (
	seasonStart = monthDay{time.May, 25}
	seasonEnd   = monthDay{time.October, 7}
)

type monthDay struct {
	month time.Month
	day   int
}

func (m monthDay) after(o monthDay) bool {
	return m.month > o.month || (m.month == o.month && m.day > o.day)
}

// OutdoorSeason reports whether d falls between late May and early October.
// An unknown date is out of season.
func OutdoorSeason(d model.Date) bool {
	if d.IsZero() {
		return false
	}
	md := monthDay{d.Month, d.Day}
	return !seasonStart.after(md) && !md.after(seasonEnd)
}

// IsOutdoor reports whether the chart places r outdoors.
func IsOutdoor(r model.Room) bool {
	return strings.EqualFold(strings.TrimSpace(r.Area), "outdoor")
}

// OutdoorMask marks outdoor rooms of res as unavailable when the date is
// out of season or the purpose is a meeting or breakout.  Indoor rooms are
// always free.  The result combines with Filter like Mask's.
func OutdoorMask(res recommend.Result, purpose extract.Purpose, d model.Date) map[string]bool {
	allowed := OutdoorSeason(d) && purpose != extract.PurposeMeeting && purpose != extract.PurposeBreakout
	mask := make(map[string]bool, len(res.Items))
	for _, o := range res.Items {
		mask[o.Room.ID] = allowed || !IsOutdoor(o.Room)
	}
	return mask
}
