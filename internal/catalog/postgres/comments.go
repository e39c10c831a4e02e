package postgres

import (
	"context"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/query"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

type comments struct{ conn repository.Conn }

func (s comments) Insert(ctx context.Context, c catalog.Comment) error {
	const q = `
		INSERT INTO public.comments (id, target, product_id, ingredient_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.conn.ExecContext(ctx, q,
		c.ID, c.Target, c.ProductID, c.IngredientID, c.UserID, c.Content, c.CreatedAt,
	)
	return mapError(err, "comment", c.ID)
}

func (s comments) List(ctx context.Context, filter catalog.CommentFilter) ([]catalog.Comment, error) {
	q, args := query.
		NewBuilder(commentProjection, commentSort).
		WhereEquals("ProductID", filter.ProductID).
		WhereEquals("IngredientID", filter.IngredientID).
		Build()

	items, err := repository.QueryMany(ctx, s.conn, q, args, scanComment)
	return items, mapError(err, "comments", "list")
}
