// Package polls collects community votes on products and ingredients and
// feeds the plurality result back into the catalog.
package polls

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/status"
)

// DefaultDuration is how long a poll accepts votes when no duration is given.
const DefaultDuration = 7 * 24 * time.Hour

// CreateCommand opens a poll on exactly one product or ingredient.
type CreateCommand struct {
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	IngredientID *uuid.UUID `json:"ingredient_id,omitempty"`
	Days         int        `json:"days,omitempty"`
}

func (c CreateCommand) duration() time.Duration {
	if c.Days <= 0 {
		return DefaultDuration
	}
	return time.Duration(c.Days) * 24 * time.Hour
}

// VoteCommand is a user's classification for a poll's target.
type VoteCommand struct {
	Status status.Status `json:"status"`
}

// Summary is a poll with its vote counts. Leader is empty until a vote is cast.
type Summary struct {
	catalog.Poll
	Counts map[status.Status]int `json:"counts"`
	Total  int                   `json:"total"`
	Leader status.Status         `json:"leader,omitempty"`
}

// Outcome reports the effect of a cast vote. Products lists every product
// whose status was recomputed.
type Outcome struct {
	Vote     catalog.Vote  `json:"vote"`
	Leader   status.Status `json:"leader"`
	Products []uuid.UUID   `json:"products"`
}

func summarize(p catalog.Poll, votes []catalog.Vote) Summary {
	statuses := make([]status.Status, len(votes))
	counts := make(map[status.Status]int)
	for i, v := range votes {
		statuses[i] = v.Status
		counts[v.Status]++
	}

	leader, _ := status.Plurality(statuses)
	return Summary{
		Poll:   p,
		Counts: counts,
		Total:  len(votes),
		Leader: leader,
	}
}
