// Package catalog defines the product catalog entities and the storage
// boundary the classification, moderation, and polling systems consume.
//
// Entities reference each other by id only. Product to ingredient
// navigation is resolved through the Links store rather than embedded
// back-pointers.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/status"
)

// Product is a consumer product whose status is derived from its linked ingredients.
type Product struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Status      status.Status `json:"status"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Country     string        `json:"country"`
	Barcode     string        `json:"barcode"`
	ImageURL    string        `json:"image_url"`
	AddedBy     string        `json:"added_by"`
	VerifiedBy  *string       `json:"verified_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Ingredient is a classified ingredient with per-country evidence.
type Ingredient struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Status      status.Status `json:"status"`
	ECode       string        `json:"ecode"`
	Description string        `json:"description"`
	Scope
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i Ingredient) clone() Ingredient {
	i.Scope = i.Scope.clone()
	return i
}

// Link associates a product with one of its ingredients.
type Link struct {
	ProductID    uuid.UUID `json:"product_id"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// RequestType is the kind of catalog change a request proposes.
type RequestType string

const (
	RequestAdd    RequestType = "Add"
	RequestEdit   RequestType = "Edit"
	RequestDelete RequestType = "Delete"
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	return t == RequestAdd || t == RequestEdit || t == RequestDelete
}

// RequestStatus is the moderation state of a change request.
// Approved and Rejected are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// ParseRequestStatus matches s case-insensitively against the request states.
func ParseRequestStatus(s string) (RequestStatus, error) {
	s = strings.TrimSpace(s)
	for _, v := range []RequestStatus{RequestPending, RequestApproved, RequestRejected} {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRequestStatus, s)
}

// Proposal is the denormalized snapshot of values a change request carries.
type Proposal struct {
	Name                   string   `json:"name"`
	Country                string   `json:"country"`
	Category               string   `json:"category"`
	Description            string   `json:"description"`
	Barcode                string   `json:"barcode"`
	ImageURL               string   `json:"image_url"`
	Ingredients            []string `json:"ingredients"`
	UseOnlyUserIngredients bool     `json:"use_only_user_ingredients"`
}

// ChangeRequest is a community-submitted proposal to add, edit, or delete a product.
type ChangeRequest struct {
	ID              uuid.UUID     `json:"id"`
	Type            RequestType   `json:"type"`
	Status          RequestStatus `json:"status"`
	RequestedBy     string        `json:"requested_by"`
	RequestedAt     time.Time     `json:"requested_at"`
	ActionedAt      *time.Time    `json:"actioned_at"`
	ActionedBy      *string       `json:"actioned_by"`
	RejectionReason *string       `json:"rejection_reason"`
	ProductID       *uuid.UUID    `json:"product_id"`
	Proposal
}

func (r ChangeRequest) clone() ChangeRequest {
	r.Ingredients = slices.Clone(r.Ingredients)
	return r
}

// Poll collects community votes on exactly one product or ingredient.
type Poll struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    *uuid.UUID `json:"product_id"`
	IngredientID *uuid.UUID `json:"ingredient_id"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Active       bool       `json:"active"`
}

// Open reports whether the poll accepts votes at the given time.
func (p Poll) Open(now time.Time) bool {
	return p.Active && now.Before(p.ExpiresAt)
}

// CommentTarget names the kind of entity a comment is attached to.
type CommentTarget string

const (
	CommentOnProduct    CommentTarget = "Product"
	CommentOnIngredient CommentTarget = "Ingredient"
)

// Comment is a user's note on exactly one product or ingredient.
type Comment struct {
	ID           uuid.UUID     `json:"id"`
	Target       CommentTarget `json:"target"`
	ProductID    *uuid.UUID    `json:"product_id"`
	IngredientID *uuid.UUID    `json:"ingredient_id"`
	UserID       string        `json:"user_id"`
	Content      string        `json:"content"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Vote is one user's classification in a poll.
type Vote struct {
	ID      uuid.UUID     `json:"id"`
	PollID  uuid.UUID     `json:"poll_id"`
	UserID  string        `json:"user_id"`
	Status  status.Status `json:"status"`
	VotedAt time.Time     `json:"voted_at"`
}
