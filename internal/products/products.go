// Package products serves the catalog: product and ingredient search,
// product detail with linked ingredients, the distinct categories and
// countries in use, and direct product management by administrators.
package products

import (
	"strings"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
)

// Detail is a product with its linked ingredients.
type Detail struct {
	catalog.Product
	Ingredients []catalog.Ingredient `json:"ingredients"`
}

// SearchRequest combines pagination and filter criteria for the product search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	catalog.ProductFilter
}

// IngredientSearchRequest combines pagination and filter criteria for ingredient search.
type IngredientSearchRequest struct {
	pagination.PageRequest
	catalog.IngredientFilter
}

// unfiltered reports whether page and filter describe the default first
// page of all products, the view cached under catalog.CacheProductsAll.
func unfiltered(page pagination.PageRequest, filter catalog.ProductFilter, cfg pagination.Config) bool {
	return page.IsDefault(cfg) &&
		filter.Name == nil &&
		len(filter.Categories) == 0 &&
		filter.Country == nil &&
		filter.Status == nil
}

// Command carries an administrator's product fields. Ingredients are taken
// from the text service when UseAI is set, otherwise from Records, otherwise
// from the Ingredients names. Status applies only when no ingredients are
// supplied.
type Command struct {
	Name        string               `json:"name"`
	Country     string               `json:"country"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Barcode     string               `json:"barcode"`
	ImageURL    string               `json:"image_url"`
	Status      *status.Status       `json:"status,omitempty"`
	UseAI       bool                 `json:"use_ai"`
	Ingredients []string             `json:"ingredients,omitempty"`
	Records     []catalog.Ingredient `json:"ingredient_records,omitempty"`
}

func (c *Command) normalize() {
	for _, f := range []*string{&c.Name, &c.Country, &c.Category, &c.Description, &c.Barcode, &c.ImageURL} {
		*f = strings.TrimSpace(*f)
	}
}

// validate checks required fields. Category may be omitted on update, where
// the stored value is kept.
func (c Command) validate(create bool) error {
	if c.Name == "" || c.Country == "" || c.Description == "" {
		return validationf("name, country, and description are required")
	}
	if create && c.Category == "" {
		return validationf("category is required")
	}
	if c.UseAI && c.Barcode == "" {
		return validationf("barcode is required to classify with use_ai")
	}
	return nil
}

// relinks reports whether the command replaces the product's ingredients.
func (c Command) relinks() bool {
	return c.UseAI || len(c.Records) > 0 || len(c.Ingredients) > 0
}
