package polls

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
)

// System defines the public contract for polls and voting.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, cmd CreateCommand) (*catalog.Poll, error)
	// CastVote records userID's vote and moves the target's status to the
	// poll's plurality. An ingredient target cascades to every product using it.
	CastVote(ctx context.Context, pollID uuid.UUID, userID string, cmd VoteCommand) (*Outcome, error)
	// Close stops a poll from accepting votes. Closing a closed poll is a no-op.
	Close(ctx context.Context, pollID uuid.UUID) (*catalog.Poll, error)
	Find(ctx context.Context, pollID uuid.UUID) (*Summary, error)
	List(ctx context.Context, activeOnly bool) ([]catalog.Poll, error)
}
