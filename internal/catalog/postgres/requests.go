package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/query"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

type requests struct{ conn repository.Conn }

func (s requests) Find(ctx context.Context, id uuid.UUID) (catalog.ChangeRequest, error) {
	q, args := query.NewBuilder(requestProjection).BuildSingle("ID", id)
	r, err := repository.QueryOne(ctx, s.conn, q, args, scanRequest)
	return r, mapError(err, "change request", id)
}

func (s requests) List(ctx context.Context, filter catalog.RequestFilter) ([]catalog.ChangeRequest, error) {
	q, args := query.
		NewBuilder(requestProjection, requestSort).
		WhereEquals("Status", filter.Status).
		WhereEquals("RequestedBy", filter.RequestedBy).
		Build()

	items, err := repository.QueryMany(ctx, s.conn, q, args, scanRequest)
	return items, mapError(err, "change requests", "list")
}

func (s requests) Insert(ctx context.Context, r catalog.ChangeRequest) error {
	const q = `
		INSERT INTO public.change_requests
			(id, type, status, requested_by, requested_at, actioned_at, actioned_by, rejection_reason,
			 product_id, name, country, category, description, barcode, image_url,
			 ingredients, use_only_user_ingredients)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16::jsonb, $17)`

	_, err := s.conn.ExecContext(ctx, q,
		r.ID, r.Type, r.Status, r.RequestedBy, r.RequestedAt, r.ActionedAt, r.ActionedBy, r.RejectionReason,
		r.ProductID, r.Name, r.Country, r.Category, r.Description, r.Barcode, r.ImageURL,
		encodeSet(r.Ingredients), r.UseOnlyUserIngredients,
	)
	return mapError(err, "change request", r.ID)
}

func (s requests) Update(ctx context.Context, r catalog.ChangeRequest) error {
	const q = `
		UPDATE public.change_requests
		SET status = $2, actioned_at = $3, actioned_by = $4, rejection_reason = $5,
			product_id = $6, name = $7, country = $8, category = $9, description = $10,
			barcode = $11, image_url = $12, ingredients = $13::jsonb, use_only_user_ingredients = $14
		WHERE id = $1`

	err := repository.ExecExpectOne(ctx, s.conn, q,
		r.ID, r.Status, r.ActionedAt, r.ActionedBy, r.RejectionReason,
		r.ProductID, r.Name, r.Country, r.Category, r.Description,
		r.Barcode, r.ImageURL, encodeSet(r.Ingredients), r.UseOnlyUserIngredients,
	)
	return mapError(err, "change request", r.ID)
}
