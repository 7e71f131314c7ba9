package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

const cventSample = `Request for Proposal (RFP)
Annual Sales Kickoff 2026
RFP Details
RFP Type Meeting
Account Name: Acme Corporation
Group Name: Annual Sales Kickoff
Event Dates: Mon, Jan 05, 2026 - Wed, Jan 07, 2026
Response Due Date: Dec 01, 2025
Total Attendees: 120
Key Contact
Contact Name Jane Doe Organization Acme Events LLC Address 1 Main St Email Address jane@acme.test

Meeting Room Requirements
Mon, Jan 05, 2026 8:00 AM-5:00 PM General Session
Theater (Meeting Room Required)
100-120 people
Notes or Exceptions: Stage and rear screen
Mon, Jan 05, 2026 12:00 PM-1:00 PM Lunch
Tue, Jan 06, 2026 9:00 AM-11:00 AM Breakout A
Classroom
30 people
Tue, Jan 06, 2026 6:00 PM-1:00 AM Welcome Reception
Notes or Exceptions:
expecting 150 people
Tue, Jan 06, 2026 9:00 AM-11:00 AM Breakout A
Classroom
30 people
Wed, Jan 07, 2026 8:00 AM-10:00 AM Board prep
AV Requirements
Projector and screen
`

func date(t *testing.T, y int, m time.Month, d int) model.Date {
	t.Helper()
	out, ok := model.NewDate(y, m, d)
	require.True(t, ok)
	return out
}

func TestExtractCventSample(t *testing.T) {
	h := Extract(cventSample)

	assert.Equal(t, "Acme Corporation", h.AccountName.Value)
	assert.Equal(t, "Annual Sales Kickoff", h.GroupName.Value)
	assert.Equal(t, "group-label", h.GroupName.Rule)
	assert.Equal(t, "Jane Doe", h.ContactName.Value)
	assert.Equal(t, "Acme Events LLC", h.ContactCompany.Value)
	assert.Equal(t, "contact-line-organization", h.ContactCompany.Rule)

	require.True(t, h.ArrivalDate.Found)
	require.True(t, h.DepartureDate.Found)
	assert.Equal(t, date(t, 2026, time.January, 5), h.ArrivalDate.Date)
	assert.Equal(t, date(t, 2026, time.January, 7), h.DepartureDate.Date)
	assert.Empty(t, h.Missing())
}

func TestExtractGroupNameSynonyms(t *testing.T) {
	a := Extract("Group Name: Annual Sales Kickoff")
	b := Extract("RFP Title: Annual Sales Kickoff")
	require.True(t, a.GroupName.Found)
	require.True(t, b.GroupName.Found)
	assert.Equal(t, "Annual Sales Kickoff", a.GroupName.Value)
	assert.Equal(t, a.GroupName.Value, b.GroupName.Value)
}

func TestExtractAmbiguousDateIsAbsent(t *testing.T) {
	h := Extract("Arrival Date: 03/04/25")
	assert.False(t, h.ArrivalDate.Found)
	assert.True(t, h.ArrivalDate.Date.IsZero())
}

func TestExtractEmpty(t *testing.T) {
	for _, text := range []string{"", "   \n\n\t", "nothing to see here"} {
		h := Extract(text)
		assert.Equal(t, Fields, h.Missing())
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	assert.Equal(t, Extract(cventSample), Extract(cventSample))
}

func TestExtractNextLineValue(t *testing.T) {
	h := Extract("Group Name\n\nAnnual Sales Kickoff\nAccount Name:\nTotal Attendees: 40")
	require.True(t, h.GroupName.Found)
	assert.Equal(t, "Annual Sales Kickoff", h.GroupName.Value)
	assert.Less(t, h.GroupName.Confidence, confidenceInline)
	assert.False(t, h.AccountName.Found, "a following label is not a value")
}

func TestExtractPrefersLongerLabel(t *testing.T) {
	h := Extract("Organization Name: Acme Holdings")
	assert.Equal(t, "Acme Holdings", h.AccountName.Value)
	assert.False(t, h.ContactCompany.Found)

	h = Extract("Company Name: Acme\nOrganization: Acme Travel Address 5 Side St")
	assert.Equal(t, "Acme", h.AccountName.Value)
	assert.Equal(t, "Acme Travel", h.ContactCompany.Value)
	assert.Equal(t, "organization-label", h.ContactCompany.Rule)
}

func TestExtractIgnoresLabelsInProse(t *testing.T) {
	h := Extract("Please state the Group Name in your reply.\nAccount Name: Acme")
	assert.False(t, h.GroupName.Found)
	assert.Equal(t, "Acme", h.AccountName.Value)

	h = Extract("RFP Type Meeting    Group Name Kickoff")
	assert.Equal(t, "Kickoff", h.GroupName.Value, "a column gap places the label")

	h = Extract("Details for Group Name: Kickoff")
	assert.Equal(t, "Kickoff", h.GroupName.Value, "a separator places the label")
}

func TestExtractPositionalGroupName(t *testing.T) {
	h := Extract("Request for Proposal (RFP)\nRFP Details\nSpring Leadership Summit\nAccount Name: Initech")
	require.True(t, h.GroupName.Found)
	assert.Equal(t, "Spring Leadership Summit", h.GroupName.Value)
	assert.Equal(t, "group-after-title", h.GroupName.Rule)
	assert.Equal(t, confidencePositional, h.GroupName.Confidence)
}

func TestExtractDates(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		arrival   *model.Date
		departure *model.Date
	}{
		{"labels", "Arrival Date: Jan 5, 2026\nDeparture Date: 2026-01-08", ptr(date(t, 2026, 1, 5)), ptr(date(t, 2026, 1, 8))},
		{"single event date", "Event Dates: January 5, 2026", ptr(date(t, 2026, 1, 5)), nil},
		{"departure before arrival", "Arrival Date: Jan 10, 2026\nDeparture Date: Jan 8, 2026", nil, nil},
		{"wrong weekday", "Arrival Date: Tue, Jan 05, 2026", nil, nil},
		{"label beats range", "Event Dates: Jan 5, 2026 - Jan 9, 2026\nArrival Date: Jan 6, 2026", ptr(date(t, 2026, 1, 6)), ptr(date(t, 2026, 1, 9))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Extract(tt.text)
			if tt.arrival == nil {
				assert.False(t, h.ArrivalDate.Found)
			} else {
				assert.Equal(t, *tt.arrival, h.ArrivalDate.Date)
			}
			if tt.departure == nil {
				assert.False(t, h.DepartureDate.Found)
			} else {
				assert.Equal(t, *tt.departure, h.DepartureDate.Date)
			}
		})
	}
}

func ptr(d model.Date) *model.Date { return &d }

func TestHeadersJSON(t *testing.T) {
	b, err := json.Marshal(Extract("Group Name: Kickoff\nArrival Date: 2026-01-05"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Kickoff", got["group_name"])
	assert.Equal(t, "2026-01-05", got["arrival_date"])
	v, ok := got["account_name"]
	assert.True(t, ok)
	assert.Nil(t, v)
	sources := got["sources"].(map[string]any)
	assert.Contains(t, sources, "group_name")
	assert.NotContains(t, sources, "account_name")
}

func TestCustomRules(t *testing.T) {
	e := NewExtractor(FieldRules{Field: FieldGroupName, Rules: []Rule{
		{Name: "booking", Kind: LabelAnchored, Labels: []string{"Booking"}},
	}})
	h := e.Extract("Booking - Winter Gala\nAccount Name: Acme")
	assert.Equal(t, "Winter Gala", h.GroupName.Value)
	assert.False(t, h.AccountName.Found, "fields without rules stay absent")
}

func TestLooksLikeRFP(t *testing.T) {
	assert.True(t, LooksLikeRFP(cventSample))
	assert.False(t, LooksLikeRFP("Group Name: Kickoff"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-01-05", "2026-01-05"},
		{"Mon, Jan 05, 2026", "2026-01-05"},
		{"Jan 5, 2026", "2026-01-05"},
		{"January 5, 2026", "2026-01-05"},
		{"5 January 2026", "2026-01-05"},
		{"Sept 3rd, 2026", "2026-09-03"},
		{"13/01/2026", "2026-01-13"},
		{"01/13/2026", "2026-01-13"},
		{"04/04/2026", "2026-04-04"},
		{"03/04/2026", ""},
		{"03/04/25", ""},
		{"Feb 30, 2026", ""},
		{"Tue, Jan 05, 2026", ""},
		{"Smarch 5, 2026", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := ParseDate(tt.in)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseRequirements(t *testing.T) {
	reqs := ParseRequirements(cventSample)
	require.Len(t, reqs, 4, "duplicate breakout and the row without attendees are dropped")

	general := reqs[0]
	assert.Equal(t, "General Session", general.AgendaItem)
	assert.Equal(t, model.StyleTheater, general.Style)
	assert.Equal(t, 120, general.Attendees, "upper bound of a range")
	assert.Equal(t, PurposeMeeting, general.Purpose)
	assert.Equal(t, "Stage and rear screen", general.Notes)
	assert.Equal(t, 1, general.Day)
	assert.Equal(t, 8*60, general.StartMinute)
	assert.Equal(t, 17*60, general.EndMinute)
	require.NotNil(t, general.Date)
	assert.Equal(t, "2026-01-05", general.Date.String())

	lunch := reqs[1]
	assert.Equal(t, PurposeLunch, lunch.Purpose)
	assert.Equal(t, 120, lunch.Attendees, "meals fall back to total attendees")
	assert.Equal(t, "Rounds", lunch.SetupRequested)
	assert.Equal(t, model.StyleBanquet, lunch.Style)
	assert.Equal(t, 12*60, lunch.StartMinute)

	breakout := reqs[2]
	assert.Equal(t, PurposeBreakout, breakout.Purpose)
	assert.Equal(t, model.StyleClassroom, breakout.Style)
	assert.Equal(t, 30, breakout.Attendees)
	assert.Equal(t, 2, breakout.Day)

	reception := reqs[3]
	assert.Equal(t, PurposeReception, reception.Purpose)
	assert.Equal(t, 150, reception.Attendees, "count read from the notes")
	assert.Equal(t, model.StyleReception, reception.Style)
	assert.Equal(t, 18*60, reception.StartMinute)
	assert.Equal(t, 25*60, reception.EndMinute, "ends after midnight")
}

func TestParseRequirementsWithoutSection(t *testing.T) {
	assert.Empty(t, ParseRequirements(""))
	assert.Empty(t, ParseRequirements("Group Name: Kickoff"))

	reqs := ParseRequirements("Fri, Jan 09, 2026 7:00 PM-10:00 PM Awards dinner for 80 people")
	require.Len(t, reqs, 1)
	assert.Equal(t, 80, reqs[0].Attendees)
	assert.Equal(t, PurposeDinner, reqs[0].Purpose)
	assert.Equal(t, model.StyleBanquet, reqs[0].Style)
}

func TestParseTimeRange(t *testing.T) {
	s, e := ParseTimeRange("12:30 AM-1:00 AM")
	assert.Equal(t, 30, s)
	assert.Equal(t, 60, e)

	s, e = ParseTimeRange("13:00 PM-2:00 PM")
	assert.Zero(t, s)
	assert.Zero(t, e)
}
