package classification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/status"
)

// The functions in this file take a catalog.Store so they can run inside a
// caller's transaction.

const defaultECode = "N/A"

// Merge inserts parsed ingredients or updates the existing record of the
// same normalized name, recording the observed status for country. Placeholder
// E-codes and descriptions do not overwrite stored values. It returns the
// stored records.
func Merge(ctx context.Context, store catalog.Store, country string, found []catalog.Ingredient, now time.Time) ([]catalog.Ingredient, error) {
	out := make([]catalog.Ingredient, 0, len(found))

	for _, in := range found {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}

		existing, err := store.Ingredients().FindByName(ctx, name)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			in.Name = name
			if in.ID == uuid.Nil {
				in.ID = uuid.New()
			}
			in.Scope.Apply(country, in.Status)
			in.CreatedAt, in.UpdatedAt = now, now
			if err := store.Ingredients().Insert(ctx, in); err != nil {
				return nil, fmt.Errorf("insert ingredient %q: %w", name, err)
			}
			out = append(out, in)

		case err != nil:
			return nil, fmt.Errorf("find ingredient %q: %w", name, err)

		default:
			existing.Status = in.Status
			if in.ECode != "" && in.ECode != defaultECode {
				existing.ECode = in.ECode
			}
			if in.Description != "" && !strings.EqualFold(in.Description, in.Name) {
				existing.Description = in.Description
			}
			existing.Scope.Apply(country, in.Status)
			existing.UpdatedAt = now
			if err := store.Ingredients().Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("update ingredient %q: %w", name, err)
			}
			out = append(out, existing)
		}
	}

	return out, nil
}

// Resolve returns the stored ingredient matching in by id, then by name,
// creating it when neither matches. Created records default to Unknown
// status, an N/A E-code, and the name as description.
func Resolve(ctx context.Context, store catalog.Store, in catalog.Ingredient, now time.Time) (catalog.Ingredient, error) {
	if in.ID != uuid.Nil {
		found, err := store.Ingredients().Find(ctx, in.ID)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.Ingredient{}, err
		}
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return catalog.Ingredient{}, validationf("ingredient name is required")
	}

	found, err := store.Ingredients().FindByName(ctx, name)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return catalog.Ingredient{}, err
	}

	created := catalog.Ingredient{
		ID:          in.ID,
		Name:        name,
		Status:      in.Status,
		ECode:       in.ECode,
		Description: in.Description,
		Scope:       in.Scope,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	if created.Status == "" {
		created.Status = status.Unknown
	}
	if created.ECode == "" {
		created.ECode = defaultECode
	}
	if created.Description == "" {
		created.Description = name
	}
	created.Scope.Apply("", created.Status)

	if err := store.Ingredients().Insert(ctx, created); err != nil {
		return catalog.Ingredient{}, fmt.Errorf("insert ingredient %q: %w", name, err)
	}
	return created, nil
}

// Link resolves each ingredient and associates it with the product.
func Link(ctx context.Context, store catalog.Store, productID uuid.UUID, ingredients []catalog.Ingredient, now time.Time) ([]catalog.Ingredient, error) {
	linked := make([]catalog.Ingredient, 0, len(ingredients))

	for _, in := range ingredients {
		resolved, err := Resolve(ctx, store, in, now)
		if err != nil {
			return nil, err
		}

		err = store.Links().Link(ctx, catalog.Link{
			ProductID:    productID,
			IngredientID: resolved.ID,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, fmt.Errorf("link ingredient %q: %w", resolved.Name, err)
		}
		linked = append(linked, resolved)
	}

	return linked, nil
}

// Evaluate aggregates the statuses of a product's linked ingredients and
// stores the result as the product status.
func Evaluate(ctx context.Context, store catalog.Store, productID uuid.UUID) (*Evaluation, error) {
	product, err := store.Products().Find(ctx, productID)
	if err != nil {
		return nil, err
	}

	ingredients, err := store.Links().IngredientsOf(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load ingredients of %s: %w", productID, err)
	}

	statuses := make([]status.Status, len(ingredients))
	for i, in := range ingredients {
		statuses[i] = in.Status
	}
	s := status.Aggregate(statuses)

	if err := store.Products().SetStatus(ctx, productID, s); err != nil {
		return nil, err
	}

	return &Evaluation{
		ProductID:   product.ID,
		ProductName: product.Name,
		Country:     product.Country,
		Status:      s,
		Ingredients: ingredients,
	}, nil
}
