package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

// Purpose classifies a meeting-room requirement by what happens in the room.
type Purpose string

const (
	PurposeMeeting   Purpose = "meeting"
	PurposeBreakout  Purpose = "breakout"
	PurposeBreakfast Purpose = "breakfast"
	PurposeLunch     Purpose = "lunch"
	PurposeDinner    Purpose = "dinner"
	PurposeReception Purpose = "reception"
)

func (p Purpose) meal() bool {
	return p == PurposeBreakfast || p == PurposeLunch || p == PurposeDinner
}

// Requirement is one row of the "Meeting Room Requirements" section.
type Requirement struct {
	Date           *model.Date        `json:"date"`
	DateText       string             `json:"date_text"`
	TimeRange      string             `json:"time_range"`
	StartMinute    int                `json:"start_minute"` // minutes after midnight of Date
	EndMinute      int                `json:"end_minute"`   // past 1440 when the row ends the next day
	AgendaItem     string             `json:"agenda_item"`
	SetupRequested string             `json:"setup_requested"`
	Style          model.SeatingStyle `json:"style"`
	Attendees      int                `json:"attendees"`
	Purpose        Purpose            `json:"purpose"`
	Notes          string             `json:"notes,omitempty"`
	Day            int                `json:"day,omitempty"`
}

// HasTime reports whether the time range could be read.
func (r Requirement) HasTime() bool { return r.EndMinute > r.StartMinute }

const meetingRoomRequired = "(Meeting Room Required)"

var (
	reqRowRe      = regexp.MustCompile(`^(Mon|Tue|Wed|Thu|Fri|Sat|Sun),\s+([A-Za-z]{3}\s+\d{1,2},\s+\d{4})\s+(\d{1,2}:\d{2}\s*[AP]M\s*-\s*\d{1,2}:\d{2}\s*[AP]M)\s+(.+)$`)
	peopleLineRe  = regexp.MustCompile(`(?i)^(\d{1,4})(?:\s*-\s*(\d{1,4}))?\s*people$`)
	peopleRangeRe = regexp.MustCompile(`(?i)(\d{1,4})\s*-\s*(\d{1,4})\s*people`)
	peopleRe      = regexp.MustCompile(`(?i)(\d{1,4})\s*people`)
	totalRe       = regexp.MustCompile(`(?im)^\s*Total Attendees\b[\s:\-]*(\d+)`)
	clockRe       = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([AP]M)$`)
)

type block struct {
	Requirement
	count int // 0 when the row carried no people line
}

// ParseRequirements reads the meeting-room requirement rows of an RFP.  Rows
// whose attendee count cannot be determined are dropped, as are exact
// duplicates.
func ParseRequirements(text string) []Requirement {
	blocks := parseBlocks(requirementsSection(text))
	if len(blocks) == 0 {
		return nil
	}
	total := 0
	if m := totalRe.FindStringSubmatch(text); m != nil {
		total, _ = strconv.Atoi(m[1])
	}

	days := map[model.Date]int{}
	for _, b := range blocks {
		if b.Date != nil {
			if _, ok := days[*b.Date]; !ok {
				days[*b.Date] = len(days) + 1
			}
		}
	}

	type key struct {
		purpose   Purpose
		agenda    string
		setup     string
		attendees int
		date      string
		times     string
	}
	seen := map[key]bool{}
	var out []Requirement
	for _, b := range blocks {
		r := b.Requirement
		preview := inferPurpose(r.AgendaItem, firstNonEmpty(r.SetupRequested, r.AgendaItem))

		n := b.count
		if n == 0 {
			n = peopleIn(r.Notes)
		}
		if n == 0 && (preview.meal() || preview == PurposeReception) {
			n = total
		}
		if n == 0 {
			n = peopleIn(r.AgendaItem)
		}
		if n <= 0 {
			continue
		}
		r.Attendees = n

		if r.SetupRequested == "" {
			switch {
			case preview == PurposeReception:
				r.SetupRequested = "Reception"
			case preview.meal():
				r.SetupRequested = "Rounds"
			default:
				r.SetupRequested = "Classroom"
			}
		}
		r.Purpose = inferPurpose(r.AgendaItem, r.SetupRequested)
		r.Style = model.ParseSeatingStyle(r.SetupRequested)
		date := ""
		if r.Date != nil {
			r.Day = days[*r.Date]
			date = r.Date.String()
		}

		k := key{r.Purpose, r.AgendaItem, strings.ToLower(r.SetupRequested), r.Attendees, date, r.TimeRange}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func requirementsSection(text string) string {
	start := strings.Index(text, "Meeting Room Requirements")
	if start < 0 {
		return text
	}
	section := text[start:]
	for _, marker := range []string{"AV Requirements", "Additional Questions"} {
		if i := strings.Index(section, marker); i >= 0 {
			return section[:i]
		}
	}
	return section
}

func parseBlocks(section string) []block {
	var (
		blocks []block
		cur    *block
		notes  bool
	)
	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
		}
	}
	for _, raw := range splitLines(section) {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			continue
		}
		if m := reqRowRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = newBlock(m[1], m[2], m[3], m[4])
			notes = false
			continue
		}
		if cur == nil {
			continue
		}

		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "notes or exceptions:") {
			if note := strings.TrimSpace(line[len("notes or exceptions:"):]); note != "" {
				cur.Notes = strings.TrimSpace(cur.Notes + " " + note)
			}
			notes = true
			continue
		}
		bare := strings.TrimSpace(strings.Replace(line, meetingRoomRequired, "", 1))
		if _, ok := model.LookupSeatingStyle(bare); ok && bare != "" {
			cur.SetupRequested = bare
			notes = false
			continue
		}
		if i := strings.Index(line, meetingRoomRequired); i >= 0 {
			if setup := strings.TrimSpace(line[:i]); setup != "" {
				cur.SetupRequested = setup
			}
			notes = false
			continue
		}
		if m := peopleLineRe.FindStringSubmatch(line); m != nil {
			cur.count = atoi(m[1])
			if m[2] != "" {
				cur.count = atoi(m[2])
			}
			notes = false
			continue
		}
		if notes {
			cur.Notes = strings.TrimSpace(cur.Notes + " " + line)
		}
	}
	flush()
	return blocks
}

func newBlock(weekday, date, times, agenda string) *block {
	b := &block{}
	b.DateText = weekday + ", " + date
	if d, ok := ParseDate(b.DateText); ok {
		b.Date = &d
	}
	b.TimeRange = strings.ToUpper(times)
	b.StartMinute, b.EndMinute = ParseTimeRange(times)
	b.AgendaItem = strings.TrimSpace(agenda)
	return b
}

// ParseTimeRange converts "8:00 AM-5:00 PM" into minutes after midnight.  An
// end at or before the start belongs to the next day, so the end can exceed
// 1440.  Unreadable ranges return 0, 0.
func ParseTimeRange(s string) (int, int) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0
	}
	start, ok1 := clockMinutes(parts[0])
	end, ok2 := clockMinutes(parts[1])
	if !ok1 || !ok2 {
		return 0, 0
	}
	if end <= start {
		end += 24 * 60
	}
	return start, end
}

func clockMinutes(s string) (int, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, mm := atoi(m[1]), atoi(m[2])
	if h < 1 || h > 12 || mm > 59 {
		return 0, false
	}
	h %= 12
	if strings.EqualFold(m[3], "PM") {
		h += 12
	}
	return h*60 + mm, true
}

// peopleIn finds "N people" or "N-M people" in free text; ranges yield the
// upper bound.
func peopleIn(s string) int {
	if m := peopleRangeRe.FindStringSubmatch(s); m != nil {
		a, b := atoi(m[1]), atoi(m[2])
		if b > a {
			return b
		}
		return a
	}
	if m := peopleRe.FindStringSubmatch(s); m != nil {
		return atoi(m[1])
	}
	return 0
}

func inferPurpose(agenda, setup string) Purpose {
	base := strings.ToLower(agenda + " " + setup)
	switch {
	case strings.Contains(base, "breakout"):
		return PurposeBreakout
	case strings.Contains(base, "breakfast"):
		return PurposeBreakfast
	case strings.Contains(base, "lunch"):
		return PurposeLunch
	case strings.Contains(base, "reception"):
		return PurposeReception
	case strings.Contains(base, "dinner"):
		return PurposeDinner
	}
	return PurposeMeeting
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
