package comments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
)

type service struct {
	store  catalog.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates the comment system.
func New(store catalog.Store, logger *slog.Logger) System {
	return &service{
		store:  store,
		logger: logger.With("system", "comments"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Create(ctx context.Context, userID string, cmd CreateCommand) (*catalog.Comment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationf("user is required")
	}
	if (cmd.ProductID == nil) == (cmd.IngredientID == nil) {
		return nil, validationf("exactly one of product_id or ingredient_id is required")
	}
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return nil, validationf("content is required")
	}

	c := catalog.Comment{
		ID:           uuid.New(),
		ProductID:    cmd.ProductID,
		IngredientID: cmd.IngredientID,
		UserID:       userID,
		Content:      content,
		CreatedAt:    s.now(),
	}

	if cmd.ProductID != nil {
		c.Target = catalog.CommentOnProduct
		ok, err := s.store.Products().Exists(ctx, *cmd.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("product %s: %w", *cmd.ProductID, catalog.ErrNotFound)
		}
	} else {
		c.Target = catalog.CommentOnIngredient
		if _, err := s.store.Ingredients().Find(ctx, *cmd.IngredientID); err != nil {
			return nil, err
		}
	}

	if err := s.store.Comments().Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	s.logger.Info("comment created", "id", c.ID, "target", c.Target)
	return &c, nil
}

func (s *service) List(ctx context.Context, filter catalog.CommentFilter) ([]catalog.Comment, error) {
	if (filter.ProductID == nil) == (filter.IngredientID == nil) {
		return nil, validationf("exactly one of product_id or ingredient_id is required")
	}
	return s.store.Comments().List(ctx, filter)
}
