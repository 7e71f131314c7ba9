package recommend

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
	"github.com/iliyamo/event-space-recommender/internal/model"
)

func room(id string, caps map[model.SeatingStyle]int) model.Room {
	return model.Room{ID: id, Name: "Room " + id, Capacities: caps}
}

func sampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]model.Room{
		room("R1", map[model.SeatingStyle]int{model.StyleTheater: 50, model.StyleClassroom: 30}),
		room("R2", map[model.SeatingStyle]int{model.StyleTheater: 120, model.StyleBanquet: 90}),
		room("R3", map[model.SeatingStyle]int{model.StyleTheater: 80, model.StyleUShape: 24}),
	})
	require.NoError(t, err)
	return c
}

func ids(res Result) []string {
	out := []string{}
	for _, o := range res.Items {
		out = append(out, o.Room.ID)
	}
	return out
}

func TestRecommendBestFit(t *testing.T) {
	res, err := Recommend(Request{AttendeeCount: 75, Style: model.StyleTheater}, sampleCatalog(t))
	require.NoError(t, err)
	require.Equal(t, []string{"R3", "R2"}, ids(res), "R1 cannot seat 75")

	assert.Equal(t, 80, res.Items[0].Capacity)
	assert.Equal(t, 5, res.Items[0].Slack)
	assert.Equal(t, 1, res.Items[0].Rank)
	assert.Equal(t, FitExcellent, res.Items[0].Fit)

	assert.Equal(t, 45, res.Items[1].Slack)
	assert.Equal(t, 2, res.Items[1].Rank)
	assert.Equal(t, FitStrong, res.Items[1].Fit)
	assert.False(t, res.StyleRelaxed)
}

func TestRecommendNoRoomFits(t *testing.T) {
	res, err := Recommend(Request{AttendeeCount: 200, Style: model.StyleTheater}, sampleCatalog(t))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestRecommendInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		cat  *catalog.Catalog
	}{
		{"zero attendees", Request{AttendeeCount: 0, Style: model.StyleTheater}, sampleCatalog(t)},
		{"negative attendees", Request{AttendeeCount: -3, Style: model.StyleTheater}, sampleCatalog(t)},
		{"negative limit", Request{AttendeeCount: 10, Style: model.StyleTheater, Limit: -1}, sampleCatalog(t)},
		{"nil catalog", Request{AttendeeCount: 10, Style: model.StyleTheater}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Recommend(tt.req, tt.cat)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			assert.True(t, res.Empty())
		})
	}
}

func TestRecommendTieBreakByRoomID(t *testing.T) {
	c, err := catalog.New([]model.Room{
		room("b", map[model.SeatingStyle]int{model.StyleClassroom: 40}),
		room("c", map[model.SeatingStyle]int{model.StyleClassroom: 40}),
		room("a", map[model.SeatingStyle]int{model.StyleClassroom: 40}),
	})
	require.NoError(t, err)

	res, err := Recommend(Request{AttendeeCount: 40, Style: model.StyleClassroom}, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(res))
	assert.Equal(t, 0, res.Items[0].Slack, "exact fit is eligible")
}

func TestRecommendUnknownStyleRelaxes(t *testing.T) {
	res, err := Recommend(Request{AttendeeCount: 85, Style: model.ParseSeatingStyle("cabaret")}, sampleCatalog(t))
	require.NoError(t, err)
	assert.True(t, res.StyleRelaxed)
	require.Equal(t, []string{"R2"}, ids(res))
	assert.Equal(t, model.StyleBanquet, res.Items[0].Style, "tightest fitting style of the room")
	assert.Equal(t, 5, res.Items[0].Slack)
}

func TestRecommendLimit(t *testing.T) {
	res, err := Recommend(Request{AttendeeCount: 10, Style: model.StyleTheater, Limit: 2}, sampleCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"R1", "R3"}, ids(res))

	res, err = Recommend(Request{AttendeeCount: 10, Style: model.StyleTheater}, sampleCatalog(t))
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
}

func TestFitFor(t *testing.T) {
	assert.Equal(t, FitExcellent, FitFor(0, 100))
	assert.Equal(t, FitExcellent, FitFor(20, 100))
	assert.Equal(t, FitStrong, FitFor(45, 100))
	assert.Equal(t, FitFair, FitFor(75, 100))
	assert.Equal(t, FitLimited, FitFor(76, 100))
	assert.Equal(t, FitLimited, FitFor(5, 0))
}

// Random catalogs must always produce feasible, ordered, contiguously ranked
// results that do not depend on catalog order.
func TestRecommendProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		var rooms []model.Room
		for i := 0; i < 1+rng.Intn(12); i++ {
			caps := map[model.SeatingStyle]int{}
			for _, s := range model.KnownStyles {
				if rng.Intn(2) == 0 {
					caps[s] = rng.Intn(300)
				}
			}
			if len(caps) == 0 {
				caps[model.StyleTheater] = rng.Intn(300)
			}
			rooms = append(rooms, room(fmt.Sprintf("r%02d", i), caps))
		}
		c, err := catalog.New(rooms)
		require.NoError(t, err)

		shuffled := append([]model.Room(nil), rooms...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		c2, err := catalog.New(shuffled)
		require.NoError(t, err)

		style := model.KnownStyles[rng.Intn(len(model.KnownStyles))]
		if rng.Intn(5) == 0 {
			style = model.StyleUnknown
		}
		req := Request{AttendeeCount: 1 + rng.Intn(250), Style: style}

		res, err := Recommend(req, c)
		require.NoError(t, err)
		for i, o := range res.Items {
			assert.GreaterOrEqual(t, o.Capacity, req.AttendeeCount)
			assert.Equal(t, o.Capacity-req.AttendeeCount, o.Slack)
			assert.Equal(t, i+1, o.Rank)
			got, ok := o.Room.Capacity(o.Style)
			assert.True(t, ok)
			assert.Equal(t, got, o.Capacity)
			if i > 0 {
				prev := res.Items[i-1]
				assert.True(t, prev.Slack < o.Slack || (prev.Slack == o.Slack && prev.Room.ID < o.Room.ID))
			}
		}

		again, err := Recommend(req, c2)
		require.NoError(t, err)
		assert.Equal(t, ids(res), ids(again))
	}
}
