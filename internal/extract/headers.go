// Package extract turns the plain text of an event request document (RFP)
// into typed fields: the fixed header fields and the meeting-room
// requirement rows.
//
// Header extraction is rule driven.  Every field owns an ordered list of
// Rules; a rule is either label-anchored (a label such as "Group Name"
// followed by its value) or positional (the Nth line after an anchor).  The
// first rule that yields a usable value wins and, within a rule, the first
// match in document order wins.  Fields that no rule recognises are reported
// as absent; the extractor never guesses and never fails.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

// confidence per way of finding a value
const (
	confidenceInline     = 0.95
	confidenceSubLabel   = 0.9
	confidenceNextLine   = 0.8
	confidencePositional = 0.5
)

// Field is a text header field.  Found is false when no rule matched; a
// found field always has a non-empty Value.
type Field struct {
	Value      string
	Found      bool
	Rule       string
	Confidence float64
}

// DateField is a header field normalized to a calendar date.
type DateField struct {
	Date       model.Date
	Found      bool
	Rule       string
	Confidence float64
}

// Headers holds the header fields of one request document.
type Headers struct {
	AccountName    Field
	GroupName      Field
	ArrivalDate    DateField
	DepartureDate  DateField
	ContactName    Field
	ContactCompany Field
}

// Source describes how a found field was recognised.
type Source struct {
	Rule       string  `json:"rule"`
	Confidence float64 `json:"confidence"`
}

// MarshalJSON renders absent fields as null and dates as YYYY-MM-DD, with a
// "sources" object naming the rule behind every found field.
func (h Headers) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	sources := map[string]Source{}
	text := func(name FieldName, f Field) {
		if !f.Found {
			out[string(name)] = nil
			return
		}
		out[string(name)] = f.Value
		sources[string(name)] = Source{Rule: f.Rule, Confidence: f.Confidence}
	}
	date := func(name FieldName, f DateField) {
		if !f.Found {
			out[string(name)] = nil
			return
		}
		out[string(name)] = f.Date.String()
		sources[string(name)] = Source{Rule: f.Rule, Confidence: f.Confidence}
	}
	text(FieldAccountName, h.AccountName)
	text(FieldGroupName, h.GroupName)
	date(FieldArrivalDate, h.ArrivalDate)
	date(FieldDepartureDate, h.DepartureDate)
	text(FieldContactName, h.ContactName)
	text(FieldContactCompany, h.ContactCompany)
	out["sources"] = sources
	return json.Marshal(out)
}

// Missing lists the fields that were not found, in output order.
func (h Headers) Missing() []FieldName {
	var out []FieldName
	for _, f := range Fields {
		if !h.found(f) {
			out = append(out, f)
		}
	}
	return out
}

func (h Headers) found(f FieldName) bool {
	switch f {
	case FieldAccountName:
		return h.AccountName.Found
	case FieldGroupName:
		return h.GroupName.Found
	case FieldArrivalDate:
		return h.ArrivalDate.Found
	case FieldDepartureDate:
		return h.DepartureDate.Found
	case FieldContactName:
		return h.ContactName.Found
	case FieldContactCompany:
		return h.ContactCompany.Found
	}
	return false
}

type compiledRule struct {
	Rule
	labels []labelPattern
	after  *labelPattern
	stops  []*regexp.Regexp
	skip   map[string]bool
}

type fieldPlan struct {
	field FieldName
	rules []compiledRule
}

// Extractor applies a fixed rule set.  It is safe for concurrent use.
type Extractor struct {
	plans []fieldPlan
	known []labelPattern // every label the template uses, longest first
}

var defaultExtractor = NewExtractor(DefaultRules()...)

// DefaultExtractor returns the extractor for the supported template family.
func DefaultExtractor() *Extractor { return defaultExtractor }

// Extract runs DefaultExtractor on text.
func Extract(text string) Headers { return defaultExtractor.Extract(text) }

// NewExtractor compiles rule sets.  Fields without rules are always absent.
func NewExtractor(sets ...FieldRules) *Extractor {
	e := &Extractor{}
	seen := map[string]bool{}
	addKnown := func(l string) {
		key := strings.ToLower(strings.Join(strings.Fields(l), " "))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		e.known = append(e.known, compileLabel(l))
	}
	for _, l := range extraLabels {
		addKnown(l)
	}
	for _, l := range sectionHeadings {
		addKnown(l)
	}
	for _, set := range sets {
		plan := fieldPlan{field: set.Field}
		for _, r := range set.Rules {
			cr := compiledRule{Rule: r, labels: compileAll(r.Labels), skip: map[string]bool{}}
			if r.After != "" {
				a := compileLabel(r.After)
				cr.after = &a
				addKnown(r.After)
			}
			for _, s := range r.Stops {
				cr.stops = append(cr.stops, compileLabel(s).find)
			}
			for _, s := range r.Skip {
				cr.skip[strings.ToLower(s)] = true
			}
			for _, l := range r.Labels {
				addKnown(l)
			}
			plan.rules = append(plan.rules, cr)
		}
		e.plans = append(e.plans, plan)
	}
	sortLongestFirst(e.known)
	return e
}

// Extract reads the header fields out of text.  Lines are scanned top to
// bottom; unmatched fields are absent.  Extract never fails.
func (e *Extractor) Extract(text string) Headers {
	lines := splitLines(text)
	var h Headers
	for _, plan := range e.plans {
		for _, r := range plan.rules {
			val, conf, ok := e.apply(r, lines)
			if !ok {
				continue
			}
			if plan.field.isDate() {
				d, ok := pickDate(val, r.Part)
				if !ok {
					continue
				}
				f := DateField{Date: d, Found: true, Rule: r.Name, Confidence: conf}
				if plan.field == FieldArrivalDate {
					h.ArrivalDate = f
				} else {
					h.DepartureDate = f
				}
				break
			}
			f := Field{Value: val, Found: true, Rule: r.Name, Confidence: conf}
			switch plan.field {
			case FieldAccountName:
				h.AccountName = f
			case FieldGroupName:
				h.GroupName = f
			case FieldContactName:
				h.ContactName = f
			case FieldContactCompany:
				h.ContactCompany = f
			}
			break
		}
	}
	// a departure before the arrival means one of them was misread
	if h.ArrivalDate.Found && h.DepartureDate.Found && h.DepartureDate.Date.Before(h.ArrivalDate.Date) {
		h.ArrivalDate = DateField{}
		h.DepartureDate = DateField{}
	}
	return h
}

func pickDate(val string, part RangePart) (model.Date, bool) {
	parts := splitRange(val)
	switch part {
	case RangeStart:
		if len(parts) == 0 || len(parts) > 2 {
			return model.Date{}, false
		}
		return ParseDate(parts[0])
	case RangeEnd:
		if len(parts) != 2 {
			return model.Date{}, false
		}
		return ParseDate(parts[1])
	}
	if len(parts) != 1 {
		return model.Date{}, false
	}
	return ParseDate(parts[0])
}

// apply returns the first value r produces in document order.
func (e *Extractor) apply(r compiledRule, lines []string) (string, float64, bool) {
	switch r.Kind {
	case LabelAnchored:
		for i, line := range lines {
			if val, conf, ok := e.fromLabel(r, lines, i, line); ok {
				return val, conf, true
			}
		}
	case Positional:
		for i, line := range lines {
			if r.Anchor == nil || !r.Anchor.MatchString(line) {
				continue
			}
			if val, ok := e.fromPosition(r, lines, i); ok {
				return val, confidencePositional, true
			}
			return "", 0, false // only the first anchor counts
		}
	}
	return "", 0, false
}

func (e *Extractor) fromLabel(r compiledRule, lines []string, i int, line string) (string, float64, bool) {
	start, end := e.findLabel(r.labels, line)
	if start < 0 {
		return "", 0, false
	}
	rest := trimSeparators(line[end:])
	if r.after != nil {
		loc := r.after.find.FindStringIndex(rest)
		if loc == nil {
			return "", 0, false
		}
		val := e.finish(r, rest[loc[1]:])
		return val, confidenceSubLabel, val != ""
	}
	if val := e.finish(r, rest); val != "" {
		return val, confidenceInline, true
	}
	if rest != "" {
		return "", 0, false // something followed the label but it was not a value
	}
	next, ok := nextNonBlank(lines, i)
	if !ok || e.startsWithLabel(next) {
		return "", 0, false
	}
	val := e.finish(r, next)
	return val, confidenceNextLine, val != ""
}

func (e *Extractor) fromPosition(r compiledRule, lines []string, anchor int) (string, bool) {
	count := 0
	for j := anchor + 1; j < len(lines); j++ {
		line := strings.TrimSpace(lines[j])
		if line == "" || r.skip[strings.ToLower(line)] {
			continue
		}
		count++
		if count < r.Offset {
			continue
		}
		if e.startsWithLabel(line) {
			return "", false
		}
		val := e.finish(r, line)
		return val, val != ""
	}
	return "", false
}

// findLabel returns the earliest position where one of labels stands as a
// label (see labelPlaced) and no longer known label matches at that same
// position.
func (e *Extractor) findLabel(labels []labelPattern, line string) (int, int) {
	bestStart, bestEnd := -1, -1
	for _, l := range labels {
		for _, loc := range l.find.FindAllStringIndex(line, -1) {
			if bestStart >= 0 && loc[0] >= bestStart {
				break
			}
			if !labelPlaced(line, loc[0], loc[1]) {
				continue
			}
			if e.supersededAt(l, line[loc[0]:], loc[1]-loc[0]) {
				continue
			}
			bestStart, bestEnd = loc[0], loc[1]
			break
		}
	}
	return bestStart, bestEnd
}

// labelPlaced reports whether line[start:end] sits where a form puts a
// label: at the start of the line, after a column gap, or directly before a
// separator or the end of the line.  Mid-sentence mentions do not count.
func labelPlaced(line string, start, end int) bool {
	before := line[:start]
	if strings.TrimSpace(before) == "" {
		return true
	}
	if strings.HasSuffix(before, "  ") || strings.HasSuffix(before, "\t") ||
		strings.HasSuffix(strings.TrimRight(before, " "), "|") {
		return true
	}
	after := strings.TrimLeft(line[end:], " \t")
	if after == "" {
		return true
	}
	return strings.ContainsRune(":-–—|", []rune(after)[0])
}

func (e *Extractor) supersededAt(l labelPattern, tail string, width int) bool {
	for _, k := range e.known {
		if len(k.text) <= len(l.text) {
			continue
		}
		if loc := k.at.FindStringIndex(tail); loc != nil && loc[1] > width {
			return true
		}
	}
	return false
}

func (e *Extractor) startsWithLabel(s string) bool {
	s = strings.TrimSpace(s)
	for _, k := range e.known {
		if k.at.MatchString(s) {
			return true
		}
	}
	return false
}

// finish cuts raw at the first stop token and cleans it up.  Values that
// are really another label come back empty.
func (e *Extractor) finish(r compiledRule, raw string) string {
	cut := len(raw)
	for _, s := range r.stops {
		if loc := s.FindStringIndex(raw); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	val := cleanValue(raw[:cut])
	if val == "" || e.startsWithLabel(val) {
		return ""
	}
	return val
}

var separatorRe = regexp.MustCompile(`^[\s:\-–—|]+`)

func trimSeparators(s string) string {
	return strings.TrimSpace(separatorRe.ReplaceAllString(s, ""))
}

func cleanValue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " ,;:|-–—")
}

func nextNonBlank(lines []string, i int) (string, bool) {
	for j := i + 1; j < len(lines); j++ {
		if t := strings.TrimSpace(lines[j]); t != "" {
			return t, true
		}
	}
	return "", false
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func sortLongestFirst(ls []labelPattern) {
	for i := 1; i < len(ls); i++ {
		for j := i; j > 0 && len(ls[j].text) > len(ls[j-1].text); j-- {
			ls[j], ls[j-1] = ls[j-1], ls[j]
		}
	}
}

// LooksLikeRFP reports whether text carries the headings of the supported
// RFP template family.
func LooksLikeRFP(text string) bool {
	lower := strings.ToLower(text)
	for _, tok := range []string{"request for proposal (rfp)", "rfp details", "meeting room requirements"} {
		if !strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}
