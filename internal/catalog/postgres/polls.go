package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/query"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

type polls struct{ conn repository.Conn }

func (s polls) Find(ctx context.Context, id uuid.UUID) (catalog.Poll, error) {
	q, args := query.NewBuilder(pollProjection).BuildSingle("ID", id)
	p, err := repository.QueryOne(ctx, s.conn, q, args, scanPoll)
	return p, mapError(err, "poll", id)
}

// List returns polls newest first. activeOnly keeps polls that are both
// flagged active and unexpired.
func (s polls) List(ctx context.Context, activeOnly bool) ([]catalog.Poll, error) {
	where := ""
	if activeOnly {
		where = " WHERE pl.active AND pl.expires_at > NOW()"
	}

	q := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY pl.created_at DESC",
		pollProjection.Columns(),
		pollProjection.From(),
		where,
	)

	items, err := repository.QueryMany(ctx, s.conn, q, nil, scanPoll)
	return items, mapError(err, "polls", "list")
}

func (s polls) Insert(ctx context.Context, p catalog.Poll) error {
	const q = `
		INSERT INTO public.polls (id, product_id, ingredient_id, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.conn.ExecContext(ctx, q,
		p.ID, p.ProductID, p.IngredientID, p.CreatedAt, p.ExpiresAt, p.Active,
	)
	return mapError(err, "poll", p.ID)
}

func (s polls) Update(ctx context.Context, p catalog.Poll) error {
	const q = "UPDATE public.polls SET expires_at = $2, active = $3 WHERE id = $1"
	return mapError(repository.ExecExpectOne(ctx, s.conn, q, p.ID, p.ExpiresAt, p.Active), "poll", p.ID)
}

func (s polls) AddVote(ctx context.Context, v catalog.Vote) error {
	const q = `
		INSERT INTO public.votes (id, poll_id, user_id, status, voted_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.conn.ExecContext(ctx, q, v.ID, v.PollID, v.UserID, v.Status, v.VotedAt)
	return mapError(err, "vote by "+v.UserID+" in poll", v.PollID)
}

func (s polls) Votes(ctx context.Context, pollID uuid.UUID) ([]catalog.Vote, error) {
	q, args := query.
		NewBuilder(voteProjection, voteSort).
		WhereEquals("PollID", pollID).
		Build()

	items, err := repository.QueryMany(ctx, s.conn, q, args, scanVote)
	return items, mapError(err, "votes of poll", pollID)
}
