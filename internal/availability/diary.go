// Package availability reads function-diary exports and marks recommended
// rooms that are already booked during a requested time window.  It works
// on recommendation results after the fact; the engine knows nothing about
// it.
package availability

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/iliyamo/event-space-recommender/internal/document"
	"github.com/iliyamo/event-space-recommender/internal/extract"
	"github.com/iliyamo/event-space-recommender/internal/model"
)

// Booking is one diary entry.  Room is the raw room text from the diary and
// is resolved against the catalog when masking.
type Booking struct {
	Room        string     `json:"room"`
	Date        model.Date `json:"date"`
	TimeRange   string     `json:"time_range,omitempty"`
	StartMinute int        `json:"start_minute"`
	EndMinute   int        `json:"end_minute"`
	Group       string     `json:"group"`
	Salesperson string     `json:"salesperson"`

	next string // following line, tried when Room does not resolve
}

const (
	unknownGroup       = "Unknown Group"
	unknownSalesperson = "Unknown Salesperson"
)

// diary table columns
const (
	colRoom      = "function room"
	colStartDate = "start date"
	colStartTime = "start time 12 hour"
	colEndDate   = "end date"
	colEndTime   = "end time 12 hour"
	colOwner     = "booking: owner name"
	colPostAs    = "booking: booking post as"
)

var (
	diaryRowRe  = regexp.MustCompile(`(?i)(Mon|Tue|Wed|Thu|Fri|Sat|Sun),\s+([A-Za-z]{3}\s+\d{1,2},\s+\d{4}).*?(\d{1,2}:\d{2}\s*[AP]M\s*-\s*\d{1,2}:\d{2}\s*[AP]M)`)
	groupLineRe = regexp.MustCompile(`(?i)(?:Group Name|Group|Event Name|Account Name)\s*[:\-]?\s*(.+)`)
	salesLineRe = regexp.MustCompile(`(?i)(?:Salesperson|Sales Manager|Booked By|Catering Sales)\s*[:\-]?\s*(.+)`)
)

// ParseDiary reads a diary export.  HTML table exports (often saved with an
// .xls extension) are read by column; PDFs and plain text are scanned line
// by line.  An export with no recognisable entries yields an empty slice.
func ParseDiary(data []byte, filename string) ([]Booking, error) {
	if document.Detect(data, filename) == document.KindPDF {
		text, err := document.PDFText(data)
		if err != nil {
			return nil, err
		}
		return parseDiaryText(text), nil
	}
	text, err := document.DecodeText(data)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "<table") && strings.Contains(lower, colRoom) {
		if out := parseDiaryHTML(text); len(out) > 0 {
			return out, nil
		}
	}
	return parseDiaryText(text), nil
}

func parseDiaryHTML(text string) []Booking {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil
	}
	for _, table := range elements(doc, "table") {
		rows := tableRows(table)
		if len(rows) < 2 {
			continue
		}
		idx := map[string]int{}
		for i, h := range rows[0] {
			idx[strings.ToLower(h)] = i
		}
		if _, ok := idx[colRoom]; !ok {
			continue
		}
		if _, ok := idx[colStartDate]; !ok {
			continue
		}
		var out []Booking
		for _, cols := range rows[1:] {
			get := func(col string) string {
				if i, ok := idx[col]; ok && i < len(cols) {
					return cols[i]
				}
				return ""
			}
			if b, ok := htmlBooking(get); ok {
				out = append(out, b)
			}
		}
		return out
	}
	return nil
}

func htmlBooking(get func(string) string) (Booking, bool) {
	b := Booking{
		Room:        get(colRoom),
		Group:       firstNonEmpty(get(colPostAs), unknownGroup),
		Salesperson: firstNonEmpty(get(colOwner), unknownSalesperson),
	}
	if b.Room == "" {
		return b, false
	}
	start, err := time.Parse("1/2/2006", get(colStartDate))
	if err != nil {
		return b, false
	}
	b.Date = model.DateOf(start)

	startTime := strings.ToUpper(get(colStartTime))
	endTime := strings.ToUpper(get(colEndTime))
	if startTime == "" || endTime == "" {
		return b, true
	}
	b.TimeRange = startTime + "-" + endTime
	s, e := extract.ParseTimeRange(b.TimeRange)
	if end, err := time.Parse("1/2/2006", get(colEndDate)); err == nil && e > s {
		// multi-day bookings: measure the end from the start date
		days := int(end.Sub(start).Hours() / 24)
		if days > 0 {
			e = e%(24*60) + days*24*60
		}
	}
	b.StartMinute, b.EndMinute = s, e
	return b, true
}

func parseDiaryText(text string) []Booking {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	var out []Booking
	group, sales := "", ""
	for i, line := range lines {
		if m := groupLineRe.FindStringSubmatch(line); m != nil {
			group = m[1]
		}
		if m := salesLineRe.FindStringSubmatch(line); m != nil {
			sales = m[1]
		}
		m := diaryRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		b := Booking{
			Room:        line,
			TimeRange:   strings.ToUpper(m[3]),
			Group:       firstNonEmpty(group, unknownGroup),
			Salesperson: firstNonEmpty(sales, unknownSalesperson),
		}
		if i+1 < len(lines) {
			b.next = lines[i+1]
		}
		if d, ok := extract.ParseDate(m[1] + ", " + m[2]); ok {
			b.Date = d
		}
		b.StartMinute, b.EndMinute = extract.ParseTimeRange(b.TimeRange)
		out = append(out, b)
	}
	return out
}

func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range elements(table, "tr") {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, nodeText(c))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

func nodeText(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
