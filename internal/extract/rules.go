package extract

import (
	"regexp"
	"strings"
)

// FieldName identifies one of the header fields pulled from a request
// document.
type FieldName string

const (
	FieldAccountName    FieldName = "account_name"
	FieldGroupName      FieldName = "group_name"
	FieldArrivalDate    FieldName = "arrival_date"
	FieldDepartureDate  FieldName = "departure_date"
	FieldContactName    FieldName = "contact_name"
	FieldContactCompany FieldName = "contact_company"
)

// Fields lists every header field in output order.
var Fields = []FieldName{
	FieldAccountName,
	FieldGroupName,
	FieldArrivalDate,
	FieldDepartureDate,
	FieldContactName,
	FieldContactCompany,
}

func (f FieldName) isDate() bool {
	return f == FieldArrivalDate || f == FieldDepartureDate
}

// RuleKind tags the variant of a Rule.
type RuleKind int

const (
	// LabelAnchored rules look for a label token and read the value that
	// follows it on the same line, or on the next non-blank line.
	LabelAnchored RuleKind = iota + 1
	// Positional rules read the Nth non-blank line after an anchor line, for
	// layouts that print a value without a label.
	Positional
)

func (k RuleKind) String() string {
	switch k {
	case LabelAnchored:
		return "label"
	case Positional:
		return "positional"
	}
	return "invalid"
}

// RangePart selects one side of a "start - end" value.
type RangePart int

const (
	WholeValue RangePart = iota
	RangeStart
	RangeEnd
)

// Rule is one way of recognising a field.  Which members apply depends on
// Kind.
type Rule struct {
	Name string
	Kind RuleKind

	// LabelAnchored
	Labels []string // synonyms, matched case-insensitively on word boundaries
	After  string   // read the value after this sub-label on the labelled line

	// Positional
	Anchor *regexp.Regexp // line that precedes the value
	Offset int            // 1 = first non-blank line after the anchor
	Skip   []string       // lines equal to one of these (case-insensitive) are not counted

	// both
	Stops []string  // value is cut at the first of these tokens
	Part  RangePart // date fields: which side of a range to keep
}

// FieldRules is the ordered rule list of one field.  Earlier rules win.
type FieldRules struct {
	Field FieldName
	Rules []Rule
}

var contactStops = []string{"Organization", "Email Address", "Email", "Phone", "Address", "Title"}
var companyStops = []string{"Address", "Email Address", "Email", "Phone", "Website"}

// sectionHeadings are template headings that are never values.
var sectionHeadings = []string{
	"RFP Details",
	"Meeting Room Requirements",
	"Sleeping Room Requirements",
	"Key Contact",
	"Event Details",
}

// extraLabels are labels of the template that belong to no extracted field.
// They still stop next-line lookups and outrank shorter labels.
var extraLabels = []string{
	"RFP Type", "Response Due Date", "Decision Due Date", "Total Room Nights",
	"Peak Room Nights", "Total Attendees", "Email Address", "Address",
	"Phone", "Organization Type", "Event Type",
}

// DefaultRules returns the rule set for the Cvent-style RFP template family.
func DefaultRules() []FieldRules {
	return []FieldRules{
		{Field: FieldAccountName, Rules: []Rule{
			{Name: "account-label", Kind: LabelAnchored, Labels: []string{"Account Name", "Organization Name", "Company Name"}},
		}},
		{Field: FieldGroupName, Rules: []Rule{
			{Name: "group-label", Kind: LabelAnchored, Labels: []string{"Group Name", "RFP Title", "RFP Name", "Event Name"}},
			{
				Name:   "group-after-title",
				Kind:   Positional,
				Anchor: regexp.MustCompile(`(?i)^request for proposal\b`),
				Offset: 1,
				Skip:   sectionHeadings,
			},
		}},
		{Field: FieldArrivalDate, Rules: []Rule{
			{Name: "arrival-label", Kind: LabelAnchored, Labels: []string{"Arrival Date", "Check-in Date", "Check In Date"}},
			{Name: "event-dates-start", Kind: LabelAnchored, Labels: []string{"Event Dates", "Meeting Dates"}, Part: RangeStart},
		}},
		{Field: FieldDepartureDate, Rules: []Rule{
			{Name: "departure-label", Kind: LabelAnchored, Labels: []string{"Departure Date", "Check-out Date", "Check Out Date"}},
			{Name: "event-dates-end", Kind: LabelAnchored, Labels: []string{"Event Dates", "Meeting Dates"}, Part: RangeEnd},
		}},
		{Field: FieldContactName, Rules: []Rule{
			{Name: "contact-label", Kind: LabelAnchored, Labels: []string{"Contact Name"}, Stops: contactStops},
			{Name: "planner-label", Kind: LabelAnchored, Labels: []string{"Planner Name", "Key Contact"}, Stops: contactStops},
		}},
		{Field: FieldContactCompany, Rules: []Rule{
			{Name: "contact-line-organization", Kind: LabelAnchored, Labels: []string{"Contact Name"}, After: "Organization", Stops: companyStops},
			{Name: "company-label", Kind: LabelAnchored, Labels: []string{"Contact Company", "Company"}, Stops: companyStops},
			{Name: "organization-label", Kind: LabelAnchored, Labels: []string{"Organization"}, Stops: companyStops},
		}},
	}
}

// labelPattern is a compiled label.  find locates it anywhere in a line, at
// tests for it at the start of a string.
type labelPattern struct {
	text string
	find *regexp.Regexp
	at   *regexp.Regexp
}

func compileLabel(label string) labelPattern {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	body := strings.Join(words, `\s+`)
	return labelPattern{
		text: label,
		find: regexp.MustCompile(`(?i)\b` + body + `\b`),
		at:   regexp.MustCompile(`(?i)^` + body + `\b`),
	}
}

func compileAll(labels []string) []labelPattern {
	out := make([]labelPattern, 0, len(labels))
	for _, l := range labels {
		out = append(out, compileLabel(l))
	}
	return out
}
