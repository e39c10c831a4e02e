package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
)

type service struct {
	store      catalog.Store
	classifier classification.System
	cache      *cache.Loader
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates the products system.
func New(
	store catalog.Store,
	classifier classification.System,
	loader *cache.Loader,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &service{
		store:      store,
		classifier: classifier,
		cache:      loader,
		logger:     logger.With("system", "products"),
		pagination: pagination,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *service) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filter catalog.ProductFilter,
) (*pagination.PageResult[catalog.Product], error) {
	page.Normalize(s.pagination)

	load := func(ctx context.Context) (pagination.PageResult[catalog.Product], error) {
		return s.store.Products().Search(ctx, page, filter)
	}

	var (
		result pagination.PageResult[catalog.Product]
		err    error
	)
	if s.cache != nil && unfiltered(page, filter, s.pagination) {
		result, err = cache.Remember(ctx, s.cache, catalog.CacheProductsAll, load)
	} else {
		result, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Detail, error) {
	return detail(ctx, s.store, id)
}

func detail(ctx context.Context, store catalog.Store, id uuid.UUID) (*Detail, error) {
	p, err := store.Products().Find(ctx, id)
	if err != nil {
		return nil, err
	}

	ingredients, err := store.Links().IngredientsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Detail{Product: p, Ingredients: ingredients}, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Products().Categories(ctx)
}

func (s *service) Countries(ctx context.Context) ([]string, error) {
	return s.store.Products().Countries(ctx)
}

func (s *service) Ingredients(
	ctx context.Context,
	page pagination.PageRequest,
	filter catalog.IngredientFilter,
) (*pagination.PageResult[catalog.Ingredient], error) {
	page.Normalize(s.pagination)

	result, err := s.store.Ingredients().Search(ctx, page, filter)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) FindIngredient(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error) {
	in, err := s.store.Ingredients().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *service) Create(ctx context.Context, admin string, cmd Command) (*Detail, error) {
	cmd.normalize()
	if err := cmd.validate(true); err != nil {
		return nil, err
	}
	if err := s.nameAvailable(ctx, cmd.Name, uuid.Nil); err != nil {
		return nil, err
	}

	ingredients, err := s.ingredients(ctx, cmd)
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := catalog.Product{
		ID:          uuid.New(),
		Name:        cmd.Name,
		Status:      status.Unknown,
		Category:    cmd.Category,
		Description: cmd.Description,
		Country:     cmd.Country,
		Barcode:     cmd.Barcode,
		ImageURL:    cmd.ImageURL,
		AddedBy:     admin,
		VerifiedBy:  &admin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var out *Detail
	err = s.store.WithinTx(ctx, func(tx catalog.Store) error {
		if err := tx.Products().Insert(ctx, product); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		var err error
		out, err = relink(ctx, tx, product.ID, ingredients, cmd.Status, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", "id", out.ID, "status", out.Status, "ingredients", len(out.Ingredients))
	s.invalidate(ctx)
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, admin string, cmd Command) (*Detail, error) {
	cmd.normalize()
	if err := cmd.validate(false); err != nil {
		return nil, err
	}
	if _, err := s.store.Products().Find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.nameAvailable(ctx, cmd.Name, id); err != nil {
		return nil, err
	}

	var ingredients []catalog.Ingredient
	if cmd.relinks() {
		var err error
		if ingredients, err = s.ingredients(ctx, cmd); err != nil {
			return nil, err
		}
	}

	var out *Detail
	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		p, err := tx.Products().Find(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		p.Name = cmd.Name
		p.Country = cmd.Country
		p.Description = cmd.Description
		keep := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		keep(&p.Category, cmd.Category)
		keep(&p.Barcode, cmd.Barcode)
		keep(&p.ImageURL, cmd.ImageURL)
		if !cmd.relinks() && cmd.Status != nil {
			p.Status = *cmd.Status
		}
		p.VerifiedBy = &admin
		p.UpdatedAt = now

		if err := tx.Products().Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		if !cmd.relinks() {
			out, err = detail(ctx, tx, id)
			return err
		}

		if err := tx.Links().UnlinkProduct(ctx, id); err != nil {
			return fmt.Errorf("unlink product: %w", err)
		}
		out, err = relink(ctx, tx, id, ingredients, nil, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", "id", id, "status", out.Status, "relinked", cmd.relinks())
	s.invalidate(ctx)
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		if err := tx.Links().UnlinkProduct(ctx, id); err != nil {
			return fmt.Errorf("unlink product: %w", err)
		}
		return tx.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", "id", id)
	s.invalidate(ctx)
	return nil
}

func (s *service) nameAvailable(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.store.Products().FindByName(ctx, name)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("product %q: %w", name, catalog.ErrDuplicate)
	}
	return nil
}

// ingredients resolves the command's ingredient source. Text service
// failures are logged and yield no ingredients.
func (s *service) ingredients(ctx context.Context, cmd Command) ([]catalog.Ingredient, error) {
	switch {
	case cmd.UseAI:
		res, err := s.classifier.ClassifyByNameOrBarcode(ctx, classification.ProductQuery{
			Name:    cmd.Name,
			Barcode: cmd.Barcode,
			Country: cmd.Country,
		})
		if errors.Is(err, classification.ErrUpstream) || errors.Is(err, classification.ErrUpstreamFormat) {
			s.logger.Warn("text service failed, proceeding without ingredients", "name", cmd.Name, "error", err)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return res.Ingredients, nil

	case len(cmd.Records) > 0:
		out := make([]catalog.Ingredient, 0, len(cmd.Records))
		for _, in := range cmd.Records {
			out = append(out, unverified(in, cmd.Country))
		}
		return out, nil

	default:
		out := make([]catalog.Ingredient, 0, len(cmd.Ingredients))
		for _, name := range cmd.Ingredients {
			out = append(out, unverified(catalog.Ingredient{Name: name}, cmd.Country))
		}
		return out, nil
	}
}

// unverified defaults an admin-supplied ingredient without a status to
// Mushbooh in country. Stored ingredients of the same name take precedence
// when linking.
func unverified(in catalog.Ingredient, country string) catalog.Ingredient {
	if in.Status == "" {
		in.Status = status.Mushbooh
		in.Scope = catalog.NewScope(country, status.Mushbooh)
	}
	return in
}

// relink links ingredients to the product and stores its evaluated status.
// With no ingredients the product takes fallback when given.
func relink(
	ctx context.Context,
	tx catalog.Store,
	id uuid.UUID,
	ingredients []catalog.Ingredient,
	fallback *status.Status,
	now time.Time,
) (*Detail, error) {
	if _, err := classification.Link(ctx, tx, id, ingredients, now); err != nil {
		return nil, err
	}

	if len(ingredients) == 0 && fallback != nil {
		if err := tx.Products().SetStatus(ctx, id, *fallback); err != nil {
			return nil, err
		}
	} else if _, err := classification.Evaluate(ctx, tx, id); err != nil {
		return nil, err
	}

	return detail(ctx, tx, id)
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalog.CacheProductsAll)
	}
}
