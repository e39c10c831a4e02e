package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
)

// Store is the catalog persistence capability. Implementations must make
// WithinTx atomic: either every write made through the transaction store
// becomes visible or none does.
type Store interface {
	Products() ProductStore
	Ingredients() IngredientStore
	Links() LinkStore
	Requests() RequestStore
	Polls() PollStore
	Comments() CommentStore

	// WithinTx runs fn against a transactional view of the store. A non-nil
	// error from fn discards every write fn made. Nested calls join the
	// enclosing transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// ProductStore persists products. Names are unique.
type ProductStore interface {
	Find(ctx context.Context, id uuid.UUID) (Product, error)
	FindByName(ctx context.Context, name string) (Product, error)
	Search(ctx context.Context, page pagination.PageRequest, filter ProductFilter) (pagination.PageResult[Product], error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	SetStatus(ctx context.Context, id uuid.UUID, s status.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
	Countries(ctx context.Context) ([]string, error)
}

// IngredientStore persists ingredients. Names are unique ignoring case.
type IngredientStore interface {
	Find(ctx context.Context, id uuid.UUID) (Ingredient, error)
	FindByName(ctx context.Context, name string) (Ingredient, error)
	Search(ctx context.Context, page pagination.PageRequest, filter IngredientFilter) (pagination.PageResult[Ingredient], error)
	Insert(ctx context.Context, i Ingredient) error
	Update(ctx context.Context, i Ingredient) error
	SetStatus(ctx context.Context, id uuid.UUID, s status.Status) error
}

// LinkStore persists product to ingredient associations.
type LinkStore interface {
	// Link associates the pair. Linking an existing pair is a no-op.
	Link(ctx context.Context, l Link) error
	// UnlinkProduct removes every link of the product.
	UnlinkProduct(ctx context.Context, productID uuid.UUID) error
	IngredientsOf(ctx context.Context, productID uuid.UUID) ([]Ingredient, error)
	ProductsOf(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error)
}

// RequestStore persists change requests.
type RequestStore interface {
	Find(ctx context.Context, id uuid.UUID) (ChangeRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]ChangeRequest, error)
	Insert(ctx context.Context, r ChangeRequest) error
	Update(ctx context.Context, r ChangeRequest) error
}

// PollStore persists polls and their votes.
type PollStore interface {
	Find(ctx context.Context, id uuid.UUID) (Poll, error)
	List(ctx context.Context, activeOnly bool) ([]Poll, error)
	Insert(ctx context.Context, p Poll) error
	Update(ctx context.Context, p Poll) error
	// AddVote records v. A second vote by the same user in the same poll
	// fails with ErrDuplicate.
	AddVote(ctx context.Context, v Vote) error
	// Votes returns the poll's votes in the order they were cast.
	Votes(ctx context.Context, pollID uuid.UUID) ([]Vote, error)
}

// CommentStore persists comments. Comments are removed with their target.
type CommentStore interface {
	Insert(ctx context.Context, c Comment) error
	// List returns comments matching filter, newest first.
	List(ctx context.Context, filter CommentFilter) ([]Comment, error)
}

// ProductFilter narrows product searches. Nil and empty fields are ignored.
type ProductFilter struct {
	Name       *string        `json:"name,omitempty"`
	Categories []string       `json:"categories,omitempty"`
	Country    *string        `json:"country,omitempty"`
	Status     *status.Status `json:"status,omitempty"`
}

// ProductFilterFromQuery extracts filter values from URL query parameters.
// Categories may repeat or be comma separated.
func ProductFilterFromQuery(values url.Values) ProductFilter {
	var f ProductFilter

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	for _, raw := range values["category"] {
		for c := range strings.SplitSeq(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Categories = append(f.Categories, c)
			}
		}
	}
	if c := values.Get("country"); c != "" {
		f.Country = &c
	}
	if s, err := status.Parse(values.Get("status")); err == nil {
		f.Status = &s
	}

	return f
}

// IngredientFilter narrows ingredient searches.
type IngredientFilter struct {
	Name   *string        `json:"name,omitempty"`
	Status *status.Status `json:"status,omitempty"`
}

// IngredientFilterFromQuery extracts filter values from URL query parameters.
func IngredientFilterFromQuery(values url.Values) IngredientFilter {
	var f IngredientFilter

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if s, err := status.Parse(values.Get("status")); err == nil {
		f.Status = &s
	}

	return f
}

// RequestFilter narrows change request listings.
type RequestFilter struct {
	Status      *RequestStatus
	RequestedBy *string
}

// CommentFilter narrows comment listings to one target.
type CommentFilter struct {
	ProductID    *uuid.UUID
	IngredientID *uuid.UUID
}

// NormalizeName is the identity ingredient names are matched by.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
