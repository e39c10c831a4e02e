package classification

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for classification operations.
type System interface {
	Handler() *Handler

	// ClassifyByNameOrBarcode queries the text service for a product's
	// ingredients and merges them into the catalog.
	ClassifyByNameOrBarcode(ctx context.Context, q ProductQuery) (*Result, error)
	// ClassifyByNameList classifies a batch of ingredient names in one query.
	ClassifyByNameList(ctx context.Context, q ListQuery) (*Result, error)
	// EvaluateProductStatus recomputes a product's status from its linked ingredients.
	EvaluateProductStatus(ctx context.Context, productID uuid.UUID) (*Evaluation, error)
	// DiscoverAndEvaluate classifies and links ingredients for a product
	// that has none, then evaluates it.
	DiscoverAndEvaluate(ctx context.Context, productID uuid.UUID) (*Evaluation, error)
	// LinkIngredients associates ingredients with a product and re-evaluates it.
	LinkIngredients(ctx context.Context, productID uuid.UUID, cmd LinkCommand) (*Evaluation, error)
}
