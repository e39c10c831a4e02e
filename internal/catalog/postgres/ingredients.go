package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
	"github.com/JaimeStill/halalcheck/pkg/query"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

type ingredients struct{ conn repository.Conn }

func (s ingredients) Find(ctx context.Context, id uuid.UUID) (catalog.Ingredient, error) {
	q, args := query.NewBuilder(ingredientProjection).BuildSingle("ID", id)
	i, err := repository.QueryOne(ctx, s.conn, q, args, scanIngredient)
	return i, mapError(err, "ingredient", id)
}

// FindByName matches the stored name ignoring case and surrounding space.
func (s ingredients) FindByName(ctx context.Context, name string) (catalog.Ingredient, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE lower(i.name) = $1 LIMIT 1",
		ingredientProjection.Columns(),
		ingredientProjection.From(),
	)
	i, err := repository.QueryOne(ctx, s.conn, q, []any{catalog.NormalizeName(name)}, scanIngredient)
	return i, mapError(err, "ingredient", fmt.Sprintf("%q", name))
}

func (s ingredients) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filter catalog.IngredientFilter,
) (pagination.PageResult[catalog.Ingredient], error) {
	qb := query.
		NewBuilder(ingredientProjection, ingredientSort).
		WhereSearch(page.Search, "Name", "ECode", "Description").
		WhereContains("Name", filter.Name).
		WhereEquals("Status", filter.Status)

	if sort := sortable(page.Sort, ingredientSortable); len(sort) > 0 {
		qb.OrderByFields(append(sort, ingredientSort))
	}

	return searchPage(ctx, s.conn, qb, page, scanIngredient)
}

func (s ingredients) Insert(ctx context.Context, i catalog.Ingredient) error {
	const q = `
		INSERT INTO public.ingredients
			(id, name, status, ecode, description, halal_in, haram_in, mushbooh_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9, $10)`

	_, err := s.conn.ExecContext(ctx, q,
		i.ID, i.Name, i.Status, i.ECode, i.Description,
		encodeSet(i.HalalIn), encodeSet(i.HaramIn), encodeSet(i.MushboohIn),
		i.CreatedAt, i.UpdatedAt,
	)
	return mapError(err, "ingredient", fmt.Sprintf("%q", i.Name))
}

func (s ingredients) Update(ctx context.Context, i catalog.Ingredient) error {
	const q = `
		UPDATE public.ingredients
		SET name = $2, status = $3, ecode = $4, description = $5,
			halal_in = $6::jsonb, haram_in = $7::jsonb, mushbooh_in = $8::jsonb, updated_at = $9
		WHERE id = $1`

	err := repository.ExecExpectOne(ctx, s.conn, q,
		i.ID, i.Name, i.Status, i.ECode, i.Description,
		encodeSet(i.HalalIn), encodeSet(i.HaramIn), encodeSet(i.MushboohIn),
		i.UpdatedAt,
	)
	return mapError(err, "ingredient", i.ID)
}

func (s ingredients) SetStatus(ctx context.Context, id uuid.UUID, st status.Status) error {
	const q = "UPDATE public.ingredients SET status = $2, updated_at = NOW() WHERE id = $1"
	return mapError(repository.ExecExpectOne(ctx, s.conn, q, id, st), "ingredient", id)
}
