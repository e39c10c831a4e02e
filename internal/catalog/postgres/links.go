package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

type links struct{ conn repository.Conn }

// Link inserts the pair, ignoring an existing association. A missing product
// or ingredient surfaces as catalog.ErrNotFound through the foreign keys.
func (s links) Link(ctx context.Context, l catalog.Link) error {
	const q = `
		INSERT INTO public.product_ingredients (product_id, ingredient_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, ingredient_id) DO NOTHING`

	_, err := s.conn.ExecContext(ctx, q, l.ProductID, l.IngredientID, l.CreatedAt)
	return mapError(err, "link", fmt.Sprintf("%s/%s", l.ProductID, l.IngredientID))
}

func (s links) UnlinkProduct(ctx context.Context, productID uuid.UUID) error {
	const q = "DELETE FROM public.product_ingredients WHERE product_id = $1"
	_, err := s.conn.ExecContext(ctx, q, productID)
	return mapError(err, "links of product", productID)
}

func (s links) IngredientsOf(ctx context.Context, productID uuid.UUID) ([]catalog.Ingredient, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s JOIN public.product_ingredients pi ON pi.ingredient_id = i.id WHERE pi.product_id = $1 ORDER BY i.name ASC",
		ingredientProjection.Columns(),
		ingredientProjection.From(),
	)
	items, err := repository.QueryMany(ctx, s.conn, q, []any{productID}, scanIngredient)
	return items, mapError(err, "ingredients of product", productID)
}

func (s links) ProductsOf(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	const q = "SELECT product_id FROM public.product_ingredients WHERE ingredient_id = $1 ORDER BY product_id ASC"

	ids, err := repository.QueryMany(ctx, s.conn, q, []any{ingredientID}, func(sc repository.Scanner) (uuid.UUID, error) {
		var id uuid.UUID
		err := sc.Scan(&id)
		return id, err
	})
	return ids, mapError(err, "products of ingredient", ingredientID)
}
