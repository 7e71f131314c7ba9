package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatingStyle(t *testing.T) {
	tests := []struct {
		raw  string
		want SeatingStyle
	}{
		{"Theater", StyleTheater},
		{"theatre", StyleTheater},
		{"Classroom", StyleClassroom},
		{"Crescent rounds", StyleBanquet},
		{"Rounds for 8", StyleBanquet},
		{"banquet_10", StyleBanquet},
		{"Buffet", StyleBanquet},
		{"U-Shape", StyleUShape},
		{"U Shape", StyleUShape},
		{"ushape", StyleUShape},
		{"u_shape", StyleUShape},
		{"Conference", StyleBoardroom},
		{"Hollow", StyleHollowSquare},
		{"hollow_square", StyleHollowSquare},
		{"Reception", StyleReception},
		{"Classroom (Meeting Room Required)", StyleClassroom},
		{"", StyleUnknown},
		{"standing in a circle", StyleUnknown},
		{"unknown", StyleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeatingStyle(tt.raw))
		})
	}
}

func TestSeatingStyleKnown(t *testing.T) {
	for _, s := range KnownStyles {
		assert.True(t, s.Known(), s)
	}
	assert.False(t, StyleUnknown.Known())
	assert.False(t, SeatingStyle("ballroom").Known())
}

func TestSeatingStyleUnmarshalJSON(t *testing.T) {
	var body struct {
		Style SeatingStyle `json:"style"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"style":"Crescent Rounds"}`), &body))
	assert.Equal(t, StyleBanquet, body.Style)

	require.NoError(t, json.Unmarshal([]byte(`{"style":"cabaret"}`), &body))
	assert.Equal(t, StyleUnknown, body.Style)
}

func TestRoomStylesAndClone(t *testing.T) {
	r := Room{ID: "r1", Name: "R1", Capacities: map[SeatingStyle]int{
		StyleReception: 100,
		StyleTheater:   80,
	}}
	assert.Equal(t, []SeatingStyle{StyleTheater, StyleReception}, r.Styles())

	c := r.Clone()
	c.Capacities[StyleTheater] = 1
	n, ok := r.Capacity(StyleTheater)
	assert.True(t, ok)
	assert.Equal(t, 80, n)

	_, ok = r.Capacity(StyleBanquet)
	assert.False(t, ok)
}

func TestNewDate(t *testing.T) {
	d, ok := NewDate(2028, time.February, 29)
	require.True(t, ok)
	assert.Equal(t, "2028-02-29", d.String())

	_, ok = NewDate(2026, time.February, 29)
	assert.False(t, ok)
	_, ok = NewDate(2026, time.April, 31)
	assert.False(t, ok)
	_, ok = NewDate(2026, 13, 1)
	assert.False(t, ok)
}

func TestDateJSON(t *testing.T) {
	d, ok := NewDate(2026, time.January, 5)
	require.True(t, ok)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-01-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
	assert.Equal(t, time.Monday, back.Weekday())
}
