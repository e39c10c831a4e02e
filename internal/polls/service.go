package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/cache"
)

type service struct {
	store  catalog.Store
	cache  *cache.Loader
	logger *slog.Logger
	now    func() time.Time
}

// New creates the poll system.
func New(store catalog.Store, loader *cache.Loader, logger *slog.Logger) System {
	return &service{
		store:  store,
		cache:  loader,
		logger: logger.With("system", "polls"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*catalog.Poll, error) {
	if (cmd.ProductID == nil) == (cmd.IngredientID == nil) {
		return nil, validationf("exactly one of product_id or ingredient_id is required")
	}

	if cmd.ProductID != nil {
		ok, err := s.store.Products().Exists(ctx, *cmd.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("product %s: %w", *cmd.ProductID, catalog.ErrNotFound)
		}
	} else if _, err := s.store.Ingredients().Find(ctx, *cmd.IngredientID); err != nil {
		return nil, err
	}

	now := s.now()
	poll := catalog.Poll{
		ID:           uuid.New(),
		ProductID:    cmd.ProductID,
		IngredientID: cmd.IngredientID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(cmd.duration()),
		Active:       true,
	}

	if err := s.store.Polls().Insert(ctx, poll); err != nil {
		return nil, fmt.Errorf("insert poll: %w", err)
	}

	s.logger.Info("poll created", "id", poll.ID, "expires_at", poll.ExpiresAt)
	return &poll, nil
}

func (s *service) CastVote(ctx context.Context, pollID uuid.UUID, userID string, cmd VoteCommand) (*Outcome, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationf("user is required")
	}
	if !cmd.Status.Votable() {
		return nil, validationf("status must be Halal, Haram, or Mushbooh")
	}

	var out *Outcome
	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		poll, err := tx.Polls().Find(ctx, pollID)
		if err != nil {
			return err
		}

		now := s.now()
		if !poll.Open(now) {
			return fmt.Errorf("%w: %s", ErrClosed, pollID)
		}

		vote := catalog.Vote{
			ID:      uuid.New(),
			PollID:  pollID,
			UserID:  userID,
			Status:  cmd.Status,
			VotedAt: now,
		}
		if err := tx.Polls().AddVote(ctx, vote); err != nil {
			if errors.Is(err, catalog.ErrDuplicate) {
				return fmt.Errorf("%w: %w", ErrAlreadyVoted, err)
			}
			return err
		}

		votes, err := tx.Polls().Votes(ctx, pollID)
		if err != nil {
			return err
		}
		leader := summarize(poll, votes).Leader

		products, err := s.recalculate(ctx, tx, poll, leader)
		if err != nil {
			return err
		}

		out = &Outcome{Vote: vote, Leader: leader, Products: products}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vote cast", "poll_id", pollID, "status", cmd.Status, "leader", out.Leader)
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalog.CacheProductsAll)
	}
	return out, nil
}

// recalculate applies leader to the poll target. A product target takes the
// leader directly; an ingredient target takes it and every product linking
// the ingredient is re-aggregated from its ingredients.
func (s *service) recalculate(ctx context.Context, tx catalog.Store, poll catalog.Poll, leader status.Status) ([]uuid.UUID, error) {
	switch {
	case poll.ProductID != nil:
		if err := tx.Products().SetStatus(ctx, *poll.ProductID, leader); err != nil {
			return nil, err
		}
		return []uuid.UUID{*poll.ProductID}, nil

	case poll.IngredientID != nil:
		if err := tx.Ingredients().SetStatus(ctx, *poll.IngredientID, leader); err != nil {
			return nil, err
		}

		ids, err := tx.Links().ProductsOf(ctx, *poll.IngredientID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, err := classification.Evaluate(ctx, tx, id); err != nil {
				return nil, fmt.Errorf("re-evaluate product %s: %w", id, err)
			}
		}
		return ids, nil
	}

	return []uuid.UUID{}, nil
}

func (s *service) Close(ctx context.Context, pollID uuid.UUID) (*catalog.Poll, error) {
	poll, err := s.store.Polls().Find(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.Active {
		return &poll, nil
	}

	poll.Active = false
	if err := s.store.Polls().Update(ctx, poll); err != nil {
		return nil, fmt.Errorf("update poll: %w", err)
	}

	s.logger.Info("poll closed", "id", pollID)
	return &poll, nil
}

func (s *service) Find(ctx context.Context, pollID uuid.UUID) (*Summary, error) {
	poll, err := s.store.Polls().Find(ctx, pollID)
	if err != nil {
		return nil, err
	}

	votes, err := s.store.Polls().Votes(ctx, pollID)
	if err != nil {
		return nil, err
	}

	sum := summarize(poll, votes)
	return &sum, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]catalog.Poll, error) {
	return s.store.Polls().List(ctx, activeOnly)
}
