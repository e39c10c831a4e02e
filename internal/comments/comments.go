// Package comments records user discussion attached to products and
// ingredients.
package comments

import (
	"github.com/google/uuid"
)

// CreateCommand attaches content to exactly one product or ingredient.
type CreateCommand struct {
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	IngredientID *uuid.UUID `json:"ingredient_id,omitempty"`
	Content      string     `json:"content"`
}
