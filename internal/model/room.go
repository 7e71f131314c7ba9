package model

// Room is one row of the capacity catalog.  Rooms are created when a chart is
// ingested and never modified afterwards; re-ingestion replaces the whole
// catalog.
//
// Fields:
//  ID         – unique, stable identifier (slug of the name when the chart has none).
//  Name       – human readable room name.
//  Area       – optional area label from the chart (e.g. "Indoor", "Outdoor").
//  SqFt       – optional floor area in square feet, zero when unknown.
//  Capacities – maximum occupancy per seating style.  A style missing from
//               the map is unsupported by the room, which is not the same as
//               a capacity of zero.
type Room struct {
    ID         string               `json:"room_id"`
    Name       string               `json:"name"`
    Area       string               `json:"area,omitempty"`
    SqFt       int                  `json:"sq_ft,omitempty"`
    Capacities map[SeatingStyle]int `json:"capacities"`
}

// Capacity returns the room's capacity for style and whether the room
// supports that style at all.
func (r Room) Capacity(style SeatingStyle) (int, bool) {
    n, ok := r.Capacities[style]
    return n, ok
}

// Styles returns the styles the room supports in KnownStyles order.
func (r Room) Styles() []SeatingStyle {
    out := make([]SeatingStyle, 0, len(r.Capacities))
    for _, s := range KnownStyles {
        if _, ok := r.Capacities[s]; ok {
            out = append(out, s)
        }
    }
    return out
}

// Clone returns a deep copy so callers cannot mutate catalog state through
// the capacities map.
func (r Room) Clone() Room {
    caps := make(map[SeatingStyle]int, len(r.Capacities))
    for k, v := range r.Capacities {
        caps[k] = v
    }
    r.Capacities = caps
    return r
}
