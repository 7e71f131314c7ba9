package model

import (
    "encoding/json"
    "sort"
    "strings"
)

// SeatingStyle is a named room setup.  Each room in the catalog defines its
// own capacity ceiling per style.  The set is closed; free text that does not
// map onto a known style becomes StyleUnknown, never a guessed default.
type SeatingStyle string

const (
    StyleUnknown      SeatingStyle = "unknown"
    StyleTheater      SeatingStyle = "theater"
    StyleClassroom    SeatingStyle = "classroom"
    StyleBanquet      SeatingStyle = "banquet"
    StyleReception    SeatingStyle = "reception"
    StyleUShape       SeatingStyle = "u_shape"
    StyleBoardroom    SeatingStyle = "boardroom"
    StyleHollowSquare SeatingStyle = "hollow_square"
)

// KnownStyles lists every concrete style in display order.  StyleUnknown is
// deliberately not part of it.
var KnownStyles = []SeatingStyle{
    StyleTheater,
    StyleClassroom,
    StyleBanquet,
    StyleReception,
    StyleUShape,
    StyleBoardroom,
    StyleHollowSquare,
}

// styleSynonyms maps normalized free text onto a style.  Keys are lower case
// with runs of whitespace, dashes and underscores collapsed to one space.
var styleSynonyms = map[string]SeatingStyle{
    "theater":          StyleTheater,
    "theatre":          StyleTheater,
    "auditorium":       StyleTheater,
    "classroom":        StyleClassroom,
    "schoolroom":       StyleClassroom,
    "banquet":          StyleBanquet,
    "banquet 10":       StyleBanquet,
    "banquet rounds":   StyleBanquet,
    "rounds":           StyleBanquet,
    "rounds for 8":     StyleBanquet,
    "rounds for 10":    StyleBanquet,
    "crescent":         StyleBanquet,
    "crescent rounds":  StyleBanquet,
    "buffet":           StyleBanquet,
    "reception":        StyleReception,
    "cocktail":         StyleReception,
    "u shape":          StyleUShape,
    "ushape":           StyleUShape,
    "u":                StyleUShape,
    "boardroom":        StyleBoardroom,
    "conference":       StyleBoardroom,
    "hollow":           StyleHollowSquare,
    "hollow square":    StyleHollowSquare,
}

// synonymKeys holds the synonym table keys longest first so that contained
// matches prefer the most specific phrase ("crescent rounds" over "rounds").
var synonymKeys = func() []string {
    keys := make([]string, 0, len(styleSynonyms))
    for k := range styleSynonyms {
        if len(k) > 1 { // single letters are only accepted as exact matches
            keys = append(keys, k)
        }
    }
    sort.Slice(keys, func(i, j int) bool {
        if len(keys[i]) != len(keys[j]) {
            return len(keys[i]) > len(keys[j])
        }
        return keys[i] < keys[j]
    })
    return keys
}()

// ParseSeatingStyle maps a style string onto the closed set.  An exact
// synonym match wins; otherwise the longest synonym contained in the text as
// whole words is used, so "Crescent rounds (Meeting Room Required)" still
// resolves.  Anything else yields StyleUnknown.
func ParseSeatingStyle(raw string) SeatingStyle {
    s := normalizeStyleText(raw)
    if s == "" {
        return StyleUnknown
    }
    if st, ok := styleSynonyms[s]; ok {
        return st
    }
    padded := " " + s + " "
    for _, k := range synonymKeys {
        if strings.Contains(padded, " "+k+" ") {
            return styleSynonyms[k]
        }
    }
    return StyleUnknown
}

// LookupSeatingStyle only accepts an exact synonym, with no contained-phrase
// matching.  Document parsers use it to decide whether a whole line names a
// setup.
func LookupSeatingStyle(raw string) (SeatingStyle, bool) {
    st, ok := styleSynonyms[normalizeStyleText(raw)]
    return st, ok
}

// Known reports whether s is a concrete style.
func (s SeatingStyle) Known() bool {
    for _, k := range KnownStyles {
        if s == k {
            return true
        }
    }
    return false
}

func (s SeatingStyle) String() string {
    if s == "" {
        return string(StyleUnknown)
    }
    return string(s)
}

// UnmarshalJSON accepts any spelling understood by ParseSeatingStyle.
func (s *SeatingStyle) UnmarshalJSON(b []byte) error {
    var raw string
    if err := json.Unmarshal(b, &raw); err != nil {
        return err
    }
    *s = ParseSeatingStyle(raw)
    return nil
}

func normalizeStyleText(raw string) string {
    var b strings.Builder
    space := false
    for _, r := range strings.ToLower(raw) {
        switch {
        case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
            if space && b.Len() > 0 {
                b.WriteByte(' ')
            }
            space = false
            b.WriteRune(r)
        default:
            space = true
        }
    }
    return b.String()
}
