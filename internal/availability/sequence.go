package availability

import (
	"fmt"

	"github.com/iliyamo/event-space-recommender/internal/extract"
	"github.com/iliyamo/event-space-recommender/internal/model"
	"github.com/iliyamo/event-space-recommender/internal/recommend"
)

// Step is one requirement of an RFP with the rooms still offered for it.
type Step struct {
	Requirement extract.Requirement
	Date        model.Date // resolved date, see WindowFor
	Result      recommend.Result
}

// SequenceNotes suggests, for each breakfast or lunch, keeping the room of
// the next meeting or breakout on the same day so the room is not reset in
// between.  The returned slice is parallel to steps; entries without a
// suggestion are empty.
func SequenceNotes(steps []Step) [][]string {
	notes := make([][]string, len(steps))
	for i, s := range steps {
		notes[i] = []string{}
		p := s.Requirement.Purpose
		if p != extract.PurposeBreakfast && p != extract.PurposeLunch {
			continue
		}
		for _, next := range steps[i+1:] {
			if next.Date != s.Date {
				continue
			}
			np := next.Requirement.Purpose
			if np != extract.PurposeMeeting && np != extract.PurposeBreakout {
				continue
			}
			if !next.Result.Empty() {
				notes[i] = append(notes[i], fmt.Sprintf("Use %s for both %s and the following %s to reduce room resets.",
					next.Result.Items[0].Room.Name, p, np))
			}
			break
		}
	}
	return notes
}
