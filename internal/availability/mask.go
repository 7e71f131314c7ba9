package availability

import (
	"github.com/iliyamo/event-space-recommender/internal/catalog"
	"github.com/iliyamo/event-space-recommender/internal/extract"
	"github.com/iliyamo/event-space-recommender/internal/model"
	"github.com/iliyamo/event-space-recommender/internal/recommend"
)

// Window is the time a requirement needs a room.  Minutes count from
// midnight of Date; a window with no readable times covers the whole day.
type Window struct {
	Date        model.Date
	StartMinute int
	EndMinute   int
}

// WindowFor returns the window of a parsed requirement.  Requirements with
// no date fall back to def (typically the arrival date).
func WindowFor(r extract.Requirement, def model.Date) Window {
	w := Window{Date: def, StartMinute: r.StartMinute, EndMinute: r.EndMinute}
	if r.Date != nil {
		w.Date = *r.Date
	}
	return w
}

func (w Window) timed() bool { return w.EndMinute > w.StartMinute }

// Conflict names the booking that makes a room unavailable.
type Conflict struct {
	RoomID   string  `json:"room_id"`
	RoomName string  `json:"room_name"`
	Booking  Booking `json:"booking"`
}

// Mask reports, for every room in res, whether it is free during w.  A room
// is taken when a booking resolved to it falls on the same date and the
// times overlap, or either side has no times.  Bookings whose room cannot
// be resolved against cat are ignored.  A window without a date masks
// nothing.
func Mask(res recommend.Result, cat *catalog.Catalog, w Window, bookings []Booking) (map[string]bool, []Conflict) {
	mask := make(map[string]bool, len(res.Items))
	for _, o := range res.Items {
		mask[o.Room.ID] = true
	}
	if cat == nil || w.Date.IsZero() {
		return mask, nil
	}

	var conflicts []Conflict
	taken := map[string]bool{}
	for _, b := range bookings {
		if b.Date != w.Date {
			continue
		}
		room, ok := resolve(cat, b)
		if !ok {
			continue
		}
		if _, listed := mask[room.ID]; !listed || taken[room.ID] {
			continue
		}
		if !overlaps(w, b) {
			continue
		}
		taken[room.ID] = true
		mask[room.ID] = false
		conflicts = append(conflicts, Conflict{RoomID: room.ID, RoomName: room.Name, Booking: b})
	}
	return mask, conflicts
}

func resolve(cat *catalog.Catalog, b Booking) (model.Room, bool) {
	if r, ok := cat.ResolveName(b.Room); ok {
		return r, true
	}
	if b.next != "" {
		return cat.ResolveName(b.next)
	}
	return model.Room{}, false
}

func overlaps(w Window, b Booking) bool {
	if !w.timed() || b.EndMinute <= b.StartMinute {
		return true
	}
	return w.StartMinute < b.EndMinute && b.StartMinute < w.EndMinute
}

// Filter returns a copy of res without the rooms mask marks as taken, ranked
// again from 1.  Rooms missing from mask are kept.
func Filter(res recommend.Result, mask map[string]bool) recommend.Result {
	out := recommend.Result{StyleRelaxed: res.StyleRelaxed}
	for _, o := range res.Items {
		if free, ok := mask[o.Room.ID]; ok && !free {
			continue
		}
		o.Rank = len(out.Items) + 1
		out.Items = append(out.Items, o)
	}
	return out
}
