package products

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
)

// System defines the public contract for catalog browsing and product
// management.
type System interface {
	Handler() *Handler

	Search(ctx context.Context, page pagination.PageRequest, filter catalog.ProductFilter) (*pagination.PageResult[catalog.Product], error)
	Find(ctx context.Context, id uuid.UUID) (*Detail, error)
	Categories(ctx context.Context) ([]string, error)
	Countries(ctx context.Context) ([]string, error)
	Ingredients(ctx context.Context, page pagination.PageRequest, filter catalog.IngredientFilter) (*pagination.PageResult[catalog.Ingredient], error)
	FindIngredient(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error)

	// Create stores a product, links its ingredients, and evaluates its
	// status. A text service failure under UseAI leaves the product without
	// ingredients instead of failing.
	Create(ctx context.Context, admin string, cmd Command) (*Detail, error)
	// Update replaces a product's fields. Ingredients are relinked and the
	// status re-evaluated only when the command supplies them.
	Update(ctx context.Context, id uuid.UUID, admin string, cmd Command) (*Detail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
