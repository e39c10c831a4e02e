// Package classification resolves product and ingredient names into
// classified ingredient records through the text-generation service, merges
// them into the catalog, and derives product statuses from linked ingredients.
package classification

import (
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/parser"
	"github.com/JaimeStill/halalcheck/internal/prompts"
	"github.com/JaimeStill/halalcheck/internal/status"
)

// ProductQuery identifies a product by name or barcode in a country.
type ProductQuery struct {
	Name    string `json:"name"`
	Barcode string `json:"barcode"`
	Country string `json:"country"`
}

func (q ProductQuery) validate() error {
	if strings.TrimSpace(q.Name) == "" && strings.TrimSpace(q.Barcode) == "" {
		return validationf("product name or barcode is required")
	}
	if strings.TrimSpace(q.Country) == "" {
		return validationf("country is required")
	}
	return nil
}

// ListQuery asks for the classification of several ingredient names at once.
// Country is optional.
type ListQuery struct {
	Names   []string `json:"names"`
	Country string   `json:"country"`
}

// names returns the trimmed, non-blank names of the query.
func (q ListQuery) names() []string {
	out := make([]string, 0, len(q.Names))
	for _, n := range q.Names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Result is the outcome of one classification call. Ingredients hold the
// persisted records, carrying catalog ids for names that already existed.
type Result struct {
	Subject     string               `json:"subject"`
	Country     string               `json:"country,omitempty"`
	Kind        prompts.Kind         `json:"kind"`
	Tier        parser.Tier          `json:"tier"`
	ArchiveKey  string               `json:"archive_key,omitempty"`
	Ingredients []catalog.Ingredient `json:"ingredients"`
}

// Evaluation is a product's status as derived from its linked ingredients.
type Evaluation struct {
	ProductID   uuid.UUID            `json:"product_id"`
	ProductName string               `json:"product_name"`
	Country     string               `json:"country"`
	Status      status.Status        `json:"status"`
	Ingredients []catalog.Ingredient `json:"ingredients"`
}

// LinkCommand associates ingredients with a product. Each entry is matched
// by id, then by name, and created when neither matches. Replace drops the
// product's existing links first.
type LinkCommand struct {
	Ingredients []catalog.Ingredient `json:"ingredients"`
	Replace     bool                 `json:"replace"`
}
