package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

const nestedChart = `{
  "rooms": [
    {"room_id": "R1", "name": "Rock Room", "capacities": {"theater": 50, "classroom": 30}},
    {"room_id": "R2", "name": "Generations Ballroom", "area": "Indoor", "sq_ft": "4,800",
     "capacities": {"theater": 120, "banquet": 90, "reception": 200}},
    {"room_id": "R3", "name": "Skyline", "capacities": {"theater": 80, "u-shape": 24}}
  ],
  "aliases": {"Generations A & B & C": "Generations Ballroom"}
}`

// flatChart mirrors the room_catalog.json export of the capacity chart.
const flatChart = `[
  {"name": "Constellation A", "area": "Indoor", "sq_ft": 1200, "classroom": 60, "theater": 100,
   "conference": 30, "u_shape": 28, "hollow": 36, "reception": 120, "banquet_10": 80},
  {"name": "Generations Ballroom Pre-Function", "reception": 300},
  {"name": "Total Indoor Space", "theater": 2000},
  {"name": "Eagles Peak Event Lawn", "area": "Outdoor", "reception": 400, "banquet_10": null, "notes": "tent required"}
]`

func TestBuildNestedChart(t *testing.T) {
	c, err := Build([]byte(nestedChart))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Empty(t, c.Issues())
	assert.NotEmpty(t, c.Version())

	r2, err := c.Get("R2")
	require.NoError(t, err)
	assert.Equal(t, "Generations Ballroom", r2.Name)
	assert.Equal(t, "Indoor", r2.Area)
	assert.Equal(t, 4800, r2.SqFt)
	n, ok := r2.Capacity(model.StyleBanquet)
	assert.True(t, ok)
	assert.Equal(t, 90, n)

	r3, err := c.Get("R3")
	require.NoError(t, err)
	n, ok = r3.Capacity(model.StyleUShape)
	assert.True(t, ok)
	assert.Equal(t, 24, n)
}

func TestBuildFlatChart(t *testing.T) {
	c, err := Build([]byte(flatChart))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len(), "pre-function and total rows are excluded")

	rooms := c.Rooms()
	assert.Equal(t, "constellation-a", rooms[0].ID)
	assert.Equal(t, map[model.SeatingStyle]int{
		model.StyleClassroom:    60,
		model.StyleTheater:      100,
		model.StyleBoardroom:    30,
		model.StyleUShape:       28,
		model.StyleHollowSquare: 36,
		model.StyleReception:    120,
		model.StyleBanquet:      80,
	}, rooms[0].Capacities)

	lawn := rooms[1]
	assert.Equal(t, "eagles-peak-event-lawn", lawn.ID)
	_, ok := lawn.Capacity(model.StyleBanquet)
	assert.False(t, ok, "null capacity means the style is unsupported")

	assert.Len(t, c.Issues(), 2)
}

func TestBuildRejectsBadRows(t *testing.T) {
	src := `[
      {"room_id": "A", "name": "Alpha", "theater": 40},
      {"room_id": "A", "name": "Alpha Again", "theater": 70},
      {"room_id": "B", "name": "Beta", "theater": -4},
      {"room_id": "C", "name": "", "theater": 10},
      {"room_id": "D", "name": "Delta", "theater": 12.5},
      {"room_id": "E", "name": "Echo"},
      {"room_id": "F", "name": "Foxtrot", "capacities": {"theater": 10, "cabaret": 8}}
    ]`
	c, err := Build([]byte(src))
	require.NoError(t, err)

	ids := []string{}
	for _, r := range c.Rooms() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"A", "F"}, ids)

	alpha, err := c.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", alpha.Name, "first row with a duplicate id wins")

	reasons := map[string]bool{}
	for _, is := range c.Issues() {
		reasons[is.Reason] = true
	}
	assert.True(t, reasons["duplicate room_id A"])
	assert.True(t, reasons["missing name"])
	assert.True(t, reasons["no seating capacities"])
	assert.True(t, reasons[`unknown seating style "cabaret" ignored`])
}

func TestBuildPlaceholderCellsMarkUnsupportedStyles(t *testing.T) {
	src := `[
      {"room_id": "a", "name": "Alpha", "theater": 40},
      {"room_id": "b", "name": "Beta", "theater": "N/A", "classroom": 40},
      {"room_id": "c", "name": "Gamma", "theater": "-", "banquet": 80},
      {"room_id": "d", "name": "Delta", "capacities": {"theater": "x", "u-shape": 20}},
      {"room_id": "e", "name": "Epsilon", "theater": "", "classroom": "lots"}
    ]`
	c, err := Build([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	beta, err := c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, map[model.SeatingStyle]int{model.StyleClassroom: 40}, beta.Capacities)

	gamma, err := c.Get("c")
	require.NoError(t, err)
	assert.Equal(t, 80, gamma.Capacities[model.StyleBanquet])
	assert.Len(t, c.QueryByStyle(model.StyleBanquet), 1)

	delta, err := c.Get("d")
	require.NoError(t, err)
	assert.Equal(t, map[model.SeatingStyle]int{model.StyleUShape: 20}, delta.Capacities)

	_, err = c.Get("e")
	assert.ErrorIs(t, err, ErrRoomNotFound, "a real non-number still rejects the row")

	var notOffered []string
	for _, is := range c.Issues() {
		if strings.Contains(is.Reason, "not offered") {
			notOffered = append(notOffered, is.Name)
		}
	}
	assert.Subset(t, notOffered, []string{"Beta", "Gamma", "Delta"})
}

func TestDuplicateIssueCarriesSourceRow(t *testing.T) {
	src := `[
      {"room_id": "x", "name": "Broken", "theater": -1},
      {"room_id": "a", "name": "Alpha", "theater": 40},
      {"room_id": "a", "name": "Alpha Two", "theater": 60},
      {"room_id": "z", "name": "", "theater": 10}
    ]`
	c, err := Build([]byte(src))
	require.NoError(t, err)

	var rows []int
	for _, is := range c.Issues() {
		rows = append(rows, is.Row)
		if is.Name == "Alpha Two" {
			assert.Equal(t, 2, is.Row)
		}
	}
	assert.Equal(t, []int{0, 2, 3}, rows, "issues are ordered by source row")
}

func TestBuildInvariants(t *testing.T) {
	for _, src := range []string{nestedChart, flatChart} {
		c, err := Build([]byte(src))
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, r := range c.Rooms() {
			assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
			seen[r.ID] = true
			for s, n := range r.Capacities {
				assert.GreaterOrEqual(t, n, 0, "%s/%s", r.ID, s)
			}
		}
	}
}

func TestBuildIngestionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"not json", "Room,Theater\nA,10"},
		{"malformed", `[{"name": "A",`},
		{"missing rooms", `{"halls": []}`},
		{"no valid rows", `[{"name": "A", "theater": -1}, {"name": "Total Indoor Space", "theater": 10}]`},
		{"empty array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build([]byte(tt.src))
			assert.Nil(t, c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIngestion))
			var ie *IngestionError
			assert.True(t, errors.As(err, &ie))
		})
	}
}

func TestQueryByStyleKeepsCatalogOrder(t *testing.T) {
	c, err := Build([]byte(nestedChart))
	require.NoError(t, err)

	theater := c.QueryByStyle(model.StyleTheater)
	require.Len(t, theater, 3)
	assert.Equal(t, "R1", theater[0].ID)
	assert.Equal(t, "R2", theater[1].ID)
	assert.Equal(t, "R3", theater[2].ID)

	assert.Len(t, c.QueryByStyle(model.StyleReception), 1)
	assert.Empty(t, c.QueryByStyle(model.StyleBoardroom))
	assert.Empty(t, c.QueryByStyle(model.StyleUnknown))
}

func TestGetNotFound(t *testing.T) {
	c, err := Build([]byte(nestedChart))
	require.NoError(t, err)
	_, err = c.Get("R9")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestReturnedRoomsAreCopies(t *testing.T) {
	c, err := Build([]byte(nestedChart))
	require.NoError(t, err)
	r, err := c.Get("R1")
	require.NoError(t, err)
	r.Capacities[model.StyleTheater] = 9999

	again, err := c.Get("R1")
	require.NoError(t, err)
	n, _ := again.Capacity(model.StyleTheater)
	assert.Equal(t, 50, n)
}

func TestResolveName(t *testing.T) {
	c, err := Build([]byte(nestedChart))
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Rock Room", "R1", true},
		{"  rock   ROOM ", "R1", true},
		{"Generations A &amp; B and C", "R2", true},
		{"Wed, Jan 07, 2026 8:00 AM-5:00 PM Skyline", "R3", true},
		{"Lobby Bar", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, ok := c.ResolveName(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, r.ID)
		})
	}
}

func TestVersionTracksContent(t *testing.T) {
	a, err := Build([]byte(nestedChart))
	require.NoError(t, err)
	b, err := Build([]byte(nestedChart))
	require.NoError(t, err)
	assert.Equal(t, a.Version(), b.Version())

	other, err := Build([]byte(`[{"room_id": "R1", "name": "Rock Room", "theater": 51}]`))
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), other.Version())
}

func TestNewFromRooms(t *testing.T) {
	c, err := New([]model.Room{
		{ID: "x", Name: "X", Capacities: map[model.SeatingStyle]int{model.StyleTheater: 10}},
		{ID: "y", Name: "Y", Capacities: map[model.SeatingStyle]int{model.StyleTheater: -1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrIngestion)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte(nestedChart), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrIngestion)
}

func TestStoreSwap(t *testing.T) {
	first, err := Build([]byte(nestedChart))
	require.NoError(t, err)
	second, err := Build([]byte(flatChart))
	require.NoError(t, err)

	s := NewStore(first)
	held := s.Load()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := s.Load()
			assert.NotNil(t, c)
		}()
	}
	old := s.Swap(second)
	wg.Wait()

	assert.Same(t, first, old)
	assert.Same(t, second, s.Load())
	assert.Equal(t, 3, held.Len(), "readers keep the reference they loaded")

	assert.Same(t, second, s.Swap(nil))
	assert.Same(t, second, s.Load())

	assert.Nil(t, NewStore(nil).Load())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "generations-a-b", Slug("Generations A & B"))
	assert.Equal(t, "room-101", Slug("  Room #101 "))
	assert.Equal(t, "", Slug("&&"))
}
