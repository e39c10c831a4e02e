// Package requests moderates community change requests against the catalog.
// A request starts Pending and is moved once, by an admin, to Approved or
// Rejected. Approval applies the proposed change to the catalog and records
// the transition in a single transaction.
package requests

import (
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
)

const (
	placeholderCategory    = "Unknown"
	placeholderDescription = "No description provided"
)

// Fields is a partial proposal. Nil fields are absent and keep the value
// they overlay.
type Fields struct {
	Name                   *string  `json:"name,omitempty"`
	Country                *string  `json:"country,omitempty"`
	Category               *string  `json:"category,omitempty"`
	Description            *string  `json:"description,omitempty"`
	Barcode                *string  `json:"barcode,omitempty"`
	ImageURL               *string  `json:"image_url,omitempty"`
	Ingredients            []string `json:"ingredients,omitempty"`
	UseOnlyUserIngredients *bool    `json:"use_only_user_ingredients,omitempty"`
}

// changes reports whether any product field or the ingredient list is set.
func (f Fields) changes() bool {
	for _, v := range []*string{f.Name, f.Barcode, f.Category, f.Description, f.ImageURL} {
		if v != nil && strings.TrimSpace(*v) != "" {
			return true
		}
	}
	return len(f.Ingredients) > 0
}

// overlay applies the present fields onto p.
func (f Fields) overlay(p *catalog.Proposal) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Name, f.Name)
	set(&p.Country, f.Country)
	set(&p.Category, f.Category)
	set(&p.Description, f.Description)
	set(&p.Barcode, f.Barcode)
	set(&p.ImageURL, f.ImageURL)
	if f.Ingredients != nil {
		p.Ingredients = cleanNames(f.Ingredients)
	}
	if f.UseOnlyUserIngredients != nil {
		p.UseOnlyUserIngredients = *f.UseOnlyUserIngredients
	}
}

func (f Fields) country() string {
	if f.Country == nil {
		return ""
	}
	return strings.TrimSpace(*f.Country)
}

// Submission proposes a new change request. ProductID targets the product
// of Edit and Delete requests.
type Submission struct {
	Type      catalog.RequestType `json:"type"`
	ProductID *uuid.UUID          `json:"product_id,omitempty"`
	Fields
}

// Approval is the outcome of an approved request. Product is nil for
// Delete requests.
type Approval struct {
	Request     catalog.ChangeRequest `json:"request"`
	Product     *catalog.Product      `json:"product"`
	Ingredients []catalog.Ingredient  `json:"ingredients"`
}

// ApproveCommand carries the ingredient set an admin settled on.
type ApproveCommand struct {
	Ingredients []catalog.Ingredient `json:"ingredients"`
}

// RejectCommand carries the reason shown to the requester.
type RejectCommand struct {
	Reason string `json:"reason"`
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
