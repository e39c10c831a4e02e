package requests

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/cache"
)

type service struct {
	store      catalog.Store
	classifier classification.System
	cache      *cache.Loader
	logger     *slog.Logger
	now        func() time.Time
}

// New creates the change request system.
func New(
	store catalog.Store,
	classifier classification.System,
	loader *cache.Loader,
	logger *slog.Logger,
) System {
	return &service{
		store:      store,
		classifier: classifier,
		cache:      loader,
		logger:     logger.With("system", "requests"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Submit(ctx context.Context, sub Submission, requester string) (*catalog.ChangeRequest, error) {
	if strings.TrimSpace(requester) == "" {
		return nil, fmt.Errorf("%w: requester is required", ErrAuthorization)
	}

	req := catalog.ChangeRequest{
		ID:          uuid.New(),
		Type:        sub.Type,
		Status:      catalog.RequestPending,
		RequestedBy: requester,
		RequestedAt: s.now(),
	}

	switch sub.Type {
	case catalog.RequestAdd:
		sub.overlay(&req.Proposal)
		if req.Name == "" || req.Country == "" {
			return nil, validationf("product name and country are required")
		}

	case catalog.RequestEdit:
		if sub.country() == "" {
			return nil, validationf("country is required")
		}
		if !sub.changes() && (sub.UseOnlyUserIngredients == nil || !*sub.UseOnlyUserIngredients) {
			return nil, validationf("at least one field or use_only_user_ingredients is required")
		}
		product, names, err := s.owned(ctx, sub.ProductID, requester)
		if err != nil {
			return nil, err
		}
		req.ProductID = &product.ID
		req.Proposal = snapshot(product, names)
		sub.overlay(&req.Proposal)

	case catalog.RequestDelete:
		product, _, err := s.owned(ctx, sub.ProductID, requester)
		if err != nil {
			return nil, err
		}
		req.ProductID = &product.ID
		req.Name = product.Name
		req.Country = product.Country

	default:
		return nil, validationf("unknown request type %q", sub.Type)
	}

	if err := s.store.Requests().Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	s.logger.Info("request submitted", "id", req.ID, "type", req.Type, "requested_by", requester)
	s.invalidate(ctx, catalog.CachePendingRequests)
	return &req, nil
}

// owned loads the target product and its ingredient names, requiring that
// requester added it.
func (s *service) owned(ctx context.Context, id *uuid.UUID, requester string) (catalog.Product, []string, error) {
	if id == nil || *id == uuid.Nil {
		return catalog.Product{}, nil, validationf("product_id is required")
	}

	product, err := s.store.Products().Find(ctx, *id)
	if err != nil {
		return catalog.Product{}, nil, err
	}
	if product.AddedBy != requester {
		return catalog.Product{}, nil, fmt.Errorf("%w: product %s belongs to another user", ErrAuthorization, product.ID)
	}

	linked, err := s.store.Links().IngredientsOf(ctx, product.ID)
	if err != nil {
		return catalog.Product{}, nil, err
	}
	names := make([]string, len(linked))
	for i, in := range linked {
		names[i] = in.Name
	}
	return product, names, nil
}

func snapshot(p catalog.Product, ingredients []string) catalog.Proposal {
	return catalog.Proposal{
		Name:        p.Name,
		Country:     p.Country,
		Category:    p.Category,
		Description: p.Description,
		Barcode:     p.Barcode,
		ImageURL:    p.ImageURL,
		Ingredients: ingredients,
	}
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, fields Fields, requester string) (*catalog.ChangeRequest, error) {
	if fields.country() == "" {
		return nil, validationf("country is required")
	}

	req, err := s.store.Requests().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RequestedBy != requester {
		return nil, fmt.Errorf("%w: request %s belongs to another user", ErrAuthorization, id)
	}
	if req.Status != catalog.RequestPending {
		return nil, fmt.Errorf("%w: request %s is %s", ErrConflict, id, req.Status)
	}

	fields.overlay(&req.Proposal)

	if err := s.store.Requests().Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	s.logger.Info("request edited", "id", id)
	s.invalidate(ctx, catalog.CachePendingRequests)
	return &req, nil
}

func (s *service) VerifyIngredients(ctx context.Context, id uuid.UUID) ([]catalog.Ingredient, error) {
	req, err := s.store.Requests().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != catalog.RequestPending {
		return nil, fmt.Errorf("%w: request %s is %s", ErrConflict, id, req.Status)
	}

	if req.UseOnlyUserIngredients && len(req.Ingredients) > 0 {
		s.logger.Info("verifying user ingredients", "id", id, "count", len(req.Ingredients))
		res, err := s.classifier.ClassifyByNameList(ctx, classification.ListQuery{
			Names:   req.Ingredients,
			Country: req.Country,
		})
		if err != nil {
			return nil, err
		}
		return res.Ingredients, nil
	}

	s.logger.Info("verifying product ingredients", "id", id, "name", req.Name, "country", req.Country)
	res, err := s.classifier.ClassifyByNameOrBarcode(ctx, classification.ProductQuery{
		Name:    req.Name,
		Barcode: req.Barcode,
		Country: req.Country,
	})
	if err != nil {
		return nil, err
	}

	// User ingredients are persisted as evidence but only the product
	// classification is returned.
	if len(req.Ingredients) > 0 {
		if _, err := s.classifier.ClassifyByNameList(ctx, classification.ListQuery{
			Names:   req.Ingredients,
			Country: req.Country,
		}); err != nil {
			return nil, err
		}
	}

	return res.Ingredients, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, admin string, cmd ApproveCommand) (*Approval, error) {
	var out *Approval

	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		req, err := tx.Requests().Find(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != catalog.RequestPending {
			return fmt.Errorf("%w: request %s is %s", ErrConflict, id, req.Status)
		}

		now := s.now()
		out = &Approval{Ingredients: []catalog.Ingredient{}}

		switch req.Type {
		case catalog.RequestAdd:
			out.Product, out.Ingredients, err = s.applyAdd(ctx, tx, req, admin, cmd.Ingredients, now)
		case catalog.RequestEdit:
			out.Product, out.Ingredients, err = s.applyEdit(ctx, tx, req, admin, cmd.Ingredients, now)
		case catalog.RequestDelete:
			err = s.applyDelete(ctx, tx, req)
		default:
			err = validationf("unknown request type %q", req.Type)
		}
		if err != nil {
			return err
		}

		req.Status = catalog.RequestApproved
		req.ActionedAt = &now
		req.ActionedBy = &admin
		if err := tx.Requests().Update(ctx, req); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		out.Request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request approved", "id", id, "type", out.Request.Type, "actioned_by", admin)
	s.invalidate(ctx, catalog.CachePendingRequests, catalog.CacheProductsAll)
	return out, nil
}

func (s *service) applyAdd(
	ctx context.Context,
	tx catalog.Store,
	req catalog.ChangeRequest,
	admin string,
	ingredients []catalog.Ingredient,
	now time.Time,
) (*catalog.Product, []catalog.Ingredient, error) {
	product := catalog.Product{
		ID:          uuid.New(),
		Name:        orDefault(req.Name, "Product_"+uuid.NewString()[:8]),
		Status:      status.Unknown,
		Category:    orDefault(req.Category, placeholderCategory),
		Description: orDefault(req.Description, placeholderDescription),
		Country:     req.Country,
		Barcode:     req.Barcode,
		ImageURL:    req.ImageURL,
		AddedBy:     req.RequestedBy,
		VerifiedBy:  &admin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tx.Products().Insert(ctx, product); err != nil {
		return nil, nil, fmt.Errorf("insert product: %w", err)
	}

	return s.relink(ctx, tx, product.ID, ingredients, now)
}

func (s *service) applyEdit(
	ctx context.Context,
	tx catalog.Store,
	req catalog.ChangeRequest,
	admin string,
	ingredients []catalog.Ingredient,
	now time.Time,
) (*catalog.Product, []catalog.Ingredient, error) {
	if req.ProductID == nil {
		return nil, nil, fmt.Errorf("request %s target: %w", req.ID, catalog.ErrNotFound)
	}

	product, err := tx.Products().Find(ctx, *req.ProductID)
	if err != nil {
		return nil, nil, err
	}

	replace := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	replace(&product.Name, req.Name)
	replace(&product.Country, req.Country)
	replace(&product.Category, req.Category)
	replace(&product.Description, req.Description)
	replace(&product.ImageURL, req.ImageURL)
	replace(&product.Barcode, req.Barcode)
	product.VerifiedBy = &admin
	product.UpdatedAt = now

	if err := tx.Products().Update(ctx, product); err != nil {
		return nil, nil, fmt.Errorf("update product: %w", err)
	}
	if err := tx.Links().UnlinkProduct(ctx, product.ID); err != nil {
		return nil, nil, fmt.Errorf("unlink product: %w", err)
	}

	return s.relink(ctx, tx, product.ID, ingredients, now)
}

// relink links the final ingredients and stores the evaluated status.
func (s *service) relink(
	ctx context.Context,
	tx catalog.Store,
	productID uuid.UUID,
	ingredients []catalog.Ingredient,
	now time.Time,
) (*catalog.Product, []catalog.Ingredient, error) {
	if _, err := classification.Link(ctx, tx, productID, ingredients, now); err != nil {
		return nil, nil, err
	}

	eval, err := classification.Evaluate(ctx, tx, productID)
	if err != nil {
		return nil, nil, err
	}

	product, err := tx.Products().Find(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return &product, eval.Ingredients, nil
}

func (s *service) applyDelete(ctx context.Context, tx catalog.Store, req catalog.ChangeRequest) error {
	if req.ProductID == nil {
		return fmt.Errorf("request %s target: %w", req.ID, catalog.ErrNotFound)
	}
	if err := tx.Links().UnlinkProduct(ctx, *req.ProductID); err != nil {
		return fmt.Errorf("unlink product: %w", err)
	}
	if err := tx.Products().Delete(ctx, *req.ProductID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, admin string, cmd RejectCommand) (*catalog.ChangeRequest, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, validationf("rejection reason is required")
	}

	var req catalog.ChangeRequest
	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		var err error
		req, err = tx.Requests().Find(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != catalog.RequestPending {
			return fmt.Errorf("%w: request %s is %s", ErrConflict, id, req.Status)
		}

		now := s.now()
		req.Status = catalog.RequestRejected
		req.ActionedAt = &now
		req.ActionedBy = &admin
		req.RejectionReason = &reason
		return tx.Requests().Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request rejected", "id", id, "actioned_by", admin)
	s.invalidate(ctx, catalog.CachePendingRequests)
	return &req, nil
}

// List returns requests matching filter, newest first. The unscoped
// Pending listing is served from cache.
func (s *service) List(ctx context.Context, filter catalog.RequestFilter) ([]catalog.ChangeRequest, error) {
	load := func(ctx context.Context) ([]catalog.ChangeRequest, error) {
		return s.store.Requests().List(ctx, filter)
	}

	pendingOnly := filter.Status != nil && *filter.Status == catalog.RequestPending && filter.RequestedBy == nil
	if pendingOnly && s.cache != nil {
		return cache.Remember(ctx, s.cache, catalog.CachePendingRequests, load)
	}
	return load(ctx)
}

func (s *service) ListByRequester(ctx context.Context, requester string) ([]catalog.ChangeRequest, error) {
	return s.store.Requests().List(ctx, catalog.RequestFilter{RequestedBy: &requester})
}

func (s *service) Find(ctx context.Context, id uuid.UUID, p auth.Principal) (*catalog.ChangeRequest, error) {
	req, err := s.store.Requests().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && req.RequestedBy != p.Subject {
		return nil, fmt.Errorf("%w: request %s", ErrAuthorization, id)
	}
	return &req, nil
}

func (s *service) invalidate(ctx context.Context, keys ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, keys...)
	}
}
