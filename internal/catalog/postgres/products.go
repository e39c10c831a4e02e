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

type products struct{ conn repository.Conn }

func (s products) Find(ctx context.Context, id uuid.UUID) (catalog.Product, error) {
	q, args := query.NewBuilder(productProjection).BuildSingle("ID", id)
	p, err := repository.QueryOne(ctx, s.conn, q, args, scanProduct)
	return p, mapError(err, "product", id)
}

func (s products) FindByName(ctx context.Context, name string) (catalog.Product, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE lower(p.name) = lower($1) LIMIT 1",
		productProjection.Columns(),
		productProjection.From(),
	)
	p, err := repository.QueryOne(ctx, s.conn, q, []any{name}, scanProduct)
	return p, mapError(err, "product", fmt.Sprintf("%q", name))
}

func (s products) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filter catalog.ProductFilter,
) (pagination.PageResult[catalog.Product], error) {
	qb := query.
		NewBuilder(productProjection, productSort).
		WhereSearch(page.Search, "Name", "Description", "Category").
		WhereContains("Name", filter.Name).
		WhereInFold("Category", filter.Categories).
		WhereEquals("Status", filter.Status)

	if filter.Country != nil && *filter.Country != "" {
		qb.WhereInFold("Country", []string{*filter.Country})
	}
	if sort := sortable(page.Sort, productSortable); len(sort) > 0 {
		qb.OrderByFields(append(sort, productSort))
	}

	return searchPage(ctx, s.conn, qb, page, scanProduct)
}

func (s products) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return repository.QueryExists(ctx, s.conn, "SELECT 1 FROM public.products WHERE id = $1", id)
}

func (s products) Insert(ctx context.Context, p catalog.Product) error {
	const q = `
		INSERT INTO public.products
			(id, name, status, category, description, country, barcode, image_url, added_by, verified_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.conn.ExecContext(ctx, q,
		p.ID, p.Name, p.Status, p.Category, p.Description, p.Country,
		p.Barcode, p.ImageURL, p.AddedBy, p.VerifiedBy, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err, "product", p.ID)
}

func (s products) Update(ctx context.Context, p catalog.Product) error {
	const q = `
		UPDATE public.products
		SET name = $2, status = $3, category = $4, description = $5, country = $6,
			barcode = $7, image_url = $8, added_by = $9, verified_by = $10, updated_at = $11
		WHERE id = $1`

	err := repository.ExecExpectOne(ctx, s.conn, q,
		p.ID, p.Name, p.Status, p.Category, p.Description, p.Country,
		p.Barcode, p.ImageURL, p.AddedBy, p.VerifiedBy, p.UpdatedAt,
	)
	return mapError(err, "product", p.ID)
}

func (s products) SetStatus(ctx context.Context, id uuid.UUID, st status.Status) error {
	const q = "UPDATE public.products SET status = $2, updated_at = NOW() WHERE id = $1"
	return mapError(repository.ExecExpectOne(ctx, s.conn, q, id, st), "product", id)
}

// Delete removes the product. Links and polls cascade; change requests keep
// their snapshot with a cleared product reference.
func (s products) Delete(ctx context.Context, id uuid.UUID) error {
	const q = "DELETE FROM public.products WHERE id = $1"
	return mapError(repository.ExecExpectOne(ctx, s.conn, q, id), "product", id)
}

func (s products) Categories(ctx context.Context) ([]string, error) {
	return distinct(ctx, s.conn, "category")
}

func (s products) Countries(ctx context.Context) ([]string, error) {
	return distinct(ctx, s.conn, "country")
}

func distinct(ctx context.Context, conn repository.Conn, column string) ([]string, error) {
	q := fmt.Sprintf(
		"SELECT DISTINCT btrim(%[1]s) FROM public.products WHERE btrim(%[1]s) <> '' ORDER BY 1",
		column,
	)
	return repository.QueryMany(ctx, conn, q, nil, func(s repository.Scanner) (string, error) {
		var v string
		err := s.Scan(&v)
		return v, err
	})
}

// sortable keeps the requested sort fields the projection allows. Unknown
// names never reach the ORDER BY clause.
func sortable(fields []query.SortField, allowed map[string]bool) []query.SortField {
	var out []query.SortField
	for _, f := range fields {
		if allowed[f.Field] {
			out = append(out, f)
		}
	}
	return out
}

func searchPage[T any](
	ctx context.Context,
	conn repository.Conn,
	qb *query.Builder,
	page pagination.PageRequest,
	scan repository.ScanFunc[T],
) (pagination.PageResult[T], error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 20
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := conn.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return pagination.PageResult[T]{}, fmt.Errorf("count: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, conn, pageSQL, pageArgs, scan)
	if err != nil {
		return pagination.PageResult[T]{}, fmt.Errorf("query: %w", err)
	}

	return pagination.NewPageResult(items, total, page.Page, page.PageSize), nil
}
