package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

var (
	isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	// [Weekday,] Month D[th][,] YYYY
	monthFirstRe = regexp.MustCompile(`(?i)^(?:([a-z]+)\.?,?\s+)?([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
	// [Weekday,] D[th] Month[,] YYYY
	dayFirstRe = regexp.MustCompile(`(?i)^(?:([a-z]+)\.?,?\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\.?,?\s+(\d{4})$`)
	numericRe  = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})$`)
	rangeSepRe = regexp.MustCompile(`(?i)\s+(?:-|–|—|to|through|thru)\s+`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseDate normalizes a date written in one of the layouts seen in request
// documents.  It refuses to guess: two-digit years, numeric dates whose day
// and month could be swapped, impossible days and weekdays that disagree with
// the date all return false.
func ParseDate(raw string) (model.Date, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.TrimRight(s, ".,;")
	if s == "" {
		return model.Date{}, false
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return civil(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := monthFirstRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			return checked(m[1], atoi(m[4]), month, atoi(m[3]))
		}
	}
	if m := dayFirstRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[3])]; ok {
			return checked(m[1], atoi(m[4]), month, atoi(m[2]))
		}
	}
	if m := numericRe.FindStringSubmatch(s); m != nil {
		if len(m[3]) != 4 {
			return model.Date{}, false // two-digit year
		}
		a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		switch {
		case a == b:
			return civil(year, a, b)
		case a > 12 && b <= 12:
			return civil(year, b, a)
		case b > 12 && a <= 12:
			return civil(year, a, b)
		}
		return model.Date{}, false // MM/DD vs DD/MM undecidable
	}
	return model.Date{}, false
}

// splitRange splits "X - Y" style ranges into their parts.  A value with no
// separator comes back as a single part.
func splitRange(raw string) []string {
	s := strings.Join(strings.Fields(raw), " ")
	parts := rangeSepRe.Split(s, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func checked(weekday string, year int, month time.Month, day int) (model.Date, bool) {
	d, ok := model.NewDate(year, month, day)
	if !ok {
		return model.Date{}, false
	}
	if weekday != "" {
		wd, known := weekdayNames[strings.ToLower(weekday)]
		if !known || wd != d.Weekday() {
			return model.Date{}, false
		}
	}
	return d, true
}

func civil(year, month, day int) (model.Date, bool) {
	return model.NewDate(year, time.Month(month), day)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
