package catalog

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
	"github.com/JaimeStill/halalcheck/pkg/query"
)

type linkKey struct {
	product    uuid.UUID
	ingredient uuid.UUID
}

type arena struct {
	products    map[uuid.UUID]Product
	ingredients map[uuid.UUID]Ingredient
	links       map[linkKey]Link
	requests    map[uuid.UUID]ChangeRequest
	polls       map[uuid.UUID]Poll
	votes       map[uuid.UUID][]Vote
	comments    map[uuid.UUID]Comment
}

func newArena() *arena {
	return &arena{
		products:    make(map[uuid.UUID]Product),
		ingredients: make(map[uuid.UUID]Ingredient),
		links:       make(map[linkKey]Link),
		requests:    make(map[uuid.UUID]ChangeRequest),
		polls:       make(map[uuid.UUID]Poll),
		votes:       make(map[uuid.UUID][]Vote),
		comments:    make(map[uuid.UUID]Comment),
	}
}

func (a *arena) clone() *arena {
	c := &arena{
		products:    maps.Clone(a.products),
		ingredients: make(map[uuid.UUID]Ingredient, len(a.ingredients)),
		links:       maps.Clone(a.links),
		requests:    make(map[uuid.UUID]ChangeRequest, len(a.requests)),
		polls:       maps.Clone(a.polls),
		votes:       make(map[uuid.UUID][]Vote, len(a.votes)),
		comments:    maps.Clone(a.comments),
	}
	for id, i := range a.ingredients {
		c.ingredients[id] = i.clone()
	}
	for id, r := range a.requests {
		c.requests[id] = r.clone()
	}
	for id, v := range a.votes {
		c.votes[id] = slices.Clone(v)
	}
	return c
}

// Memory is an in-process Store. Entities live in flat maps keyed by id and
// every read returns a copy. Transactions stage writes on a cloned arena and
// swap it in on success; they are serialized with all other access, so fn
// must only use the store it is handed.
type Memory struct {
	mu   *sync.Mutex
	data *arena
	inTx bool
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		mu:   &sync.Mutex{},
		data: newArena(),
	}
}

func (m *Memory) Products() ProductStore       { return memProducts{m} }
func (m *Memory) Ingredients() IngredientStore { return memIngredients{m} }
func (m *Memory) Links() LinkStore             { return memLinks{m} }
func (m *Memory) Requests() RequestStore       { return memRequests{m} }
func (m *Memory) Polls() PollStore             { return memPolls{m} }
func (m *Memory) Comments() CommentStore       { return memComments{m} }

func (m *Memory) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := m.data.clone()
	if err := fn(&Memory{mu: m.mu, data: staged, inTx: true}); err != nil {
		return err
	}

	*m.data = *staged
	return nil
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

type memProducts struct{ m *Memory }

func (s memProducts) Find(_ context.Context, id uuid.UUID) (Product, error) {
	defer s.m.lock()()
	p, ok := s.m.data.products[id]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s memProducts) FindByName(_ context.Context, name string) (Product, error) {
	defer s.m.lock()()
	if p, ok := s.byName(name, uuid.Nil); ok {
		return p, nil
	}
	return Product{}, fmt.Errorf("product %q: %w", name, ErrNotFound)
}

func (s memProducts) byName(name string, except uuid.UUID) (Product, bool) {
	key := NormalizeName(name)
	for _, p := range s.m.data.products {
		if p.ID != except && NormalizeName(p.Name) == key {
			return p, true
		}
	}
	return Product{}, false
}

func (s memProducts) Search(
	_ context.Context,
	page pagination.PageRequest,
	filter ProductFilter,
) (pagination.PageResult[Product], error) {
	defer s.m.lock()()

	items := make([]Product, 0)
	for _, p := range s.m.data.products {
		if matchProduct(p, page.Search, filter) {
			items = append(items, p)
		}
	}

	sortBy(items, page.Sort, productKeys)
	return pagination.Slice(items, page), nil
}

func (s memProducts) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	defer s.m.lock()()
	_, ok := s.m.data.products[id]
	return ok, nil
}

func (s memProducts) Insert(_ context.Context, p Product) error {
	defer s.m.lock()()
	if _, ok := s.m.data.products[p.ID]; ok {
		return fmt.Errorf("product %s: %w", p.ID, ErrDuplicate)
	}
	if _, ok := s.byName(p.Name, uuid.Nil); ok {
		return fmt.Errorf("product %q: %w", p.Name, ErrDuplicate)
	}
	s.m.data.products[p.ID] = p
	return nil
}

func (s memProducts) Update(_ context.Context, p Product) error {
	defer s.m.lock()()
	if _, ok := s.m.data.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	if _, ok := s.byName(p.Name, p.ID); ok {
		return fmt.Errorf("product %q: %w", p.Name, ErrDuplicate)
	}
	s.m.data.products[p.ID] = p
	return nil
}

func (s memProducts) SetStatus(_ context.Context, id uuid.UUID, st status.Status) error {
	defer s.m.lock()()
	p, ok := s.m.data.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p.Status = st
	p.UpdatedAt = time.Now().UTC()
	s.m.data.products[id] = p
	return nil
}

// Delete removes the product along with its links, polls, and comments. Change requests
// that targeted it keep their snapshot and lose the reference.
func (s memProducts) Delete(_ context.Context, id uuid.UUID) error {
	defer s.m.lock()()
	d := s.m.data
	if _, ok := d.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	delete(d.products, id)
	maps.DeleteFunc(d.links, func(k linkKey, _ Link) bool {
		return k.product == id
	})
	maps.DeleteFunc(d.polls, func(pid uuid.UUID, p Poll) bool {
		if p.ProductID != nil && *p.ProductID == id {
			delete(d.votes, pid)
			return true
		}
		return false
	})
	maps.DeleteFunc(d.comments, func(_ uuid.UUID, c Comment) bool {
		return c.ProductID != nil && *c.ProductID == id
	})
	for rid, r := range d.requests {
		if r.ProductID != nil && *r.ProductID == id {
			r.ProductID = nil
			d.requests[rid] = r
		}
	}
	return nil
}

func (s memProducts) Categories(_ context.Context) ([]string, error) {
	defer s.m.lock()()
	return distinct(s.m.data.products, func(p Product) string { return p.Category }), nil
}

func (s memProducts) Countries(_ context.Context) ([]string, error) {
	defer s.m.lock()()
	return distinct(s.m.data.products, func(p Product) string { return p.Country }), nil
}

type memIngredients struct{ m *Memory }

func (s memIngredients) Find(_ context.Context, id uuid.UUID) (Ingredient, error) {
	defer s.m.lock()()
	i, ok := s.m.data.ingredients[id]
	if !ok {
		return Ingredient{}, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
	}
	return i.clone(), nil
}

func (s memIngredients) FindByName(_ context.Context, name string) (Ingredient, error) {
	defer s.m.lock()()
	if i, ok := s.byName(name, uuid.Nil); ok {
		return i.clone(), nil
	}
	return Ingredient{}, fmt.Errorf("ingredient %q: %w", name, ErrNotFound)
}

func (s memIngredients) byName(name string, except uuid.UUID) (Ingredient, bool) {
	key := NormalizeName(name)
	for _, i := range s.m.data.ingredients {
		if i.ID != except && NormalizeName(i.Name) == key {
			return i, true
		}
	}
	return Ingredient{}, false
}

func (s memIngredients) Search(
	_ context.Context,
	page pagination.PageRequest,
	filter IngredientFilter,
) (pagination.PageResult[Ingredient], error) {
	defer s.m.lock()()

	items := make([]Ingredient, 0)
	for _, i := range s.m.data.ingredients {
		if matchIngredient(i, page.Search, filter) {
			items = append(items, i.clone())
		}
	}

	sortBy(items, page.Sort, ingredientKeys)
	return pagination.Slice(items, page), nil
}

func (s memIngredients) Insert(_ context.Context, i Ingredient) error {
	defer s.m.lock()()
	if _, ok := s.m.data.ingredients[i.ID]; ok {
		return fmt.Errorf("ingredient %s: %w", i.ID, ErrDuplicate)
	}
	if _, ok := s.byName(i.Name, uuid.Nil); ok {
		return fmt.Errorf("ingredient %q: %w", i.Name, ErrDuplicate)
	}
	s.m.data.ingredients[i.ID] = i.clone()
	return nil
}

func (s memIngredients) Update(_ context.Context, i Ingredient) error {
	defer s.m.lock()()
	if _, ok := s.m.data.ingredients[i.ID]; !ok {
		return fmt.Errorf("ingredient %s: %w", i.ID, ErrNotFound)
	}
	if _, ok := s.byName(i.Name, i.ID); ok {
		return fmt.Errorf("ingredient %q: %w", i.Name, ErrDuplicate)
	}
	s.m.data.ingredients[i.ID] = i.clone()
	return nil
}

func (s memIngredients) SetStatus(_ context.Context, id uuid.UUID, st status.Status) error {
	defer s.m.lock()()
	i, ok := s.m.data.ingredients[id]
	if !ok {
		return fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
	}
	i.Status = st
	i.UpdatedAt = time.Now().UTC()
	s.m.data.ingredients[id] = i
	return nil
}

type memLinks struct{ m *Memory }

func (s memLinks) Link(_ context.Context, l Link) error {
	defer s.m.lock()()
	d := s.m.data
	if _, ok := d.products[l.ProductID]; !ok {
		return fmt.Errorf("product %s: %w", l.ProductID, ErrNotFound)
	}
	if _, ok := d.ingredients[l.IngredientID]; !ok {
		return fmt.Errorf("ingredient %s: %w", l.IngredientID, ErrNotFound)
	}

	key := linkKey{l.ProductID, l.IngredientID}
	if _, ok := d.links[key]; !ok {
		d.links[key] = l
	}
	return nil
}

func (s memLinks) UnlinkProduct(_ context.Context, productID uuid.UUID) error {
	defer s.m.lock()()
	maps.DeleteFunc(s.m.data.links, func(k linkKey, _ Link) bool {
		return k.product == productID
	})
	return nil
}

func (s memLinks) IngredientsOf(_ context.Context, productID uuid.UUID) ([]Ingredient, error) {
	defer s.m.lock()()
	d := s.m.data

	items := make([]Ingredient, 0)
	for k := range d.links {
		if k.product == productID {
			items = append(items, d.ingredients[k.ingredient].clone())
		}
	}

	slices.SortFunc(items, func(a, b Ingredient) int {
		return strings.Compare(a.Name, b.Name)
	})
	return items, nil
}

func (s memLinks) ProductsOf(_ context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	defer s.m.lock()()

	ids := make([]uuid.UUID, 0)
	for k := range s.m.data.links {
		if k.ingredient == ingredientID {
			ids = append(ids, k.product)
		}
	}

	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids, nil
}

type memRequests struct{ m *Memory }

func (s memRequests) Find(_ context.Context, id uuid.UUID) (ChangeRequest, error) {
	defer s.m.lock()()
	r, ok := s.m.data.requests[id]
	if !ok {
		return ChangeRequest{}, fmt.Errorf("change request %s: %w", id, ErrNotFound)
	}
	return r.clone(), nil
}

func (s memRequests) List(_ context.Context, filter RequestFilter) ([]ChangeRequest, error) {
	defer s.m.lock()()

	items := make([]ChangeRequest, 0)
	for _, r := range s.m.data.requests {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.RequestedBy != nil && r.RequestedBy != *filter.RequestedBy {
			continue
		}
		items = append(items, r.clone())
	}

	slices.SortFunc(items, func(a, b ChangeRequest) int {
		return b.RequestedAt.Compare(a.RequestedAt)
	})
	return items, nil
}

func (s memRequests) Insert(_ context.Context, r ChangeRequest) error {
	defer s.m.lock()()
	if _, ok := s.m.data.requests[r.ID]; ok {
		return fmt.Errorf("change request %s: %w", r.ID, ErrDuplicate)
	}
	s.m.data.requests[r.ID] = r.clone()
	return nil
}

func (s memRequests) Update(_ context.Context, r ChangeRequest) error {
	defer s.m.lock()()
	if _, ok := s.m.data.requests[r.ID]; !ok {
		return fmt.Errorf("change request %s: %w", r.ID, ErrNotFound)
	}
	s.m.data.requests[r.ID] = r.clone()
	return nil
}

type memPolls struct{ m *Memory }

func (s memPolls) Find(_ context.Context, id uuid.UUID) (Poll, error) {
	defer s.m.lock()()
	p, ok := s.m.data.polls[id]
	if !ok {
		return Poll{}, fmt.Errorf("poll %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s memPolls) List(_ context.Context, activeOnly bool) ([]Poll, error) {
	defer s.m.lock()()

	items := make([]Poll, 0)
	for _, p := range s.m.data.polls {
		if activeOnly && !p.Active {
			continue
		}
		items = append(items, p)
	}

	slices.SortFunc(items, func(a, b Poll) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

func (s memPolls) Insert(_ context.Context, p Poll) error {
	defer s.m.lock()()
	d := s.m.data
	if _, ok := d.polls[p.ID]; ok {
		return fmt.Errorf("poll %s: %w", p.ID, ErrDuplicate)
	}
	if p.ProductID != nil {
		if _, ok := d.products[*p.ProductID]; !ok {
			return fmt.Errorf("product %s: %w", *p.ProductID, ErrNotFound)
		}
	}
	if p.IngredientID != nil {
		if _, ok := d.ingredients[*p.IngredientID]; !ok {
			return fmt.Errorf("ingredient %s: %w", *p.IngredientID, ErrNotFound)
		}
	}
	d.polls[p.ID] = p
	return nil
}

func (s memPolls) Update(_ context.Context, p Poll) error {
	defer s.m.lock()()
	if _, ok := s.m.data.polls[p.ID]; !ok {
		return fmt.Errorf("poll %s: %w", p.ID, ErrNotFound)
	}
	s.m.data.polls[p.ID] = p
	return nil
}

func (s memPolls) AddVote(_ context.Context, v Vote) error {
	defer s.m.lock()()
	d := s.m.data
	if _, ok := d.polls[v.PollID]; !ok {
		return fmt.Errorf("poll %s: %w", v.PollID, ErrNotFound)
	}
	for _, existing := range d.votes[v.PollID] {
		if existing.UserID == v.UserID {
			return fmt.Errorf("vote by %s in poll %s: %w", v.UserID, v.PollID, ErrDuplicate)
		}
	}
	d.votes[v.PollID] = append(d.votes[v.PollID], v)
	return nil
}

func (s memPolls) Votes(_ context.Context, pollID uuid.UUID) ([]Vote, error) {
	defer s.m.lock()()
	votes := slices.Clone(s.m.data.votes[pollID])
	if votes == nil {
		votes = []Vote{}
	}
	return votes, nil
}

type memComments struct{ m *Memory }

func (s memComments) Insert(_ context.Context, c Comment) error {
	defer s.m.lock()()
	d := s.m.data
	if _, ok := d.comments[c.ID]; ok {
		return fmt.Errorf("comment %s: %w", c.ID, ErrDuplicate)
	}
	if c.ProductID != nil {
		if _, ok := d.products[*c.ProductID]; !ok {
			return fmt.Errorf("product %s: %w", *c.ProductID, ErrNotFound)
		}
	}
	if c.IngredientID != nil {
		if _, ok := d.ingredients[*c.IngredientID]; !ok {
			return fmt.Errorf("ingredient %s: %w", *c.IngredientID, ErrNotFound)
		}
	}
	d.comments[c.ID] = c
	return nil
}

func (s memComments) List(_ context.Context, filter CommentFilter) ([]Comment, error) {
	defer s.m.lock()()

	items := make([]Comment, 0)
	for _, c := range s.m.data.comments {
		if filter.ProductID != nil && (c.ProductID == nil || *c.ProductID != *filter.ProductID) {
			continue
		}
		if filter.IngredientID != nil && (c.IngredientID == nil || *c.IngredientID != *filter.IngredientID) {
			continue
		}
		items = append(items, c)
	}

	slices.SortFunc(items, func(a, b Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

func matchProduct(p Product, search *string, f ProductFilter) bool {
	if search != nil && *search != "" &&
		!containsFold(p.Name, *search) &&
		!containsFold(p.Description, *search) &&
		!containsFold(p.Category, *search) {
		return false
	}
	if f.Name != nil && !containsFold(p.Name, *f.Name) {
		return false
	}
	if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, func(c string) bool {
		return strings.EqualFold(c, p.Category)
	}) {
		return false
	}
	if f.Country != nil && *f.Country != "" && !strings.EqualFold(*f.Country, p.Country) {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	return true
}

func matchIngredient(i Ingredient, search *string, f IngredientFilter) bool {
	if search != nil && *search != "" &&
		!containsFold(i.Name, *search) &&
		!containsFold(i.Description, *search) &&
		!containsFold(i.ECode, *search) {
		return false
	}
	if f.Name != nil && !containsFold(i.Name, *f.Name) {
		return false
	}
	if f.Status != nil && i.Status != *f.Status {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

var productKeys = map[string]func(a, b Product) int{
	"Name":      func(a, b Product) int { return strings.Compare(a.Name, b.Name) },
	"Category":  func(a, b Product) int { return strings.Compare(a.Category, b.Category) },
	"Country":   func(a, b Product) int { return strings.Compare(a.Country, b.Country) },
	"Status":    func(a, b Product) int { return strings.Compare(string(a.Status), string(b.Status)) },
	"CreatedAt": func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"UpdatedAt": func(a, b Product) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

var ingredientKeys = map[string]func(a, b Ingredient) int{
	"Name":      func(a, b Ingredient) int { return strings.Compare(a.Name, b.Name) },
	"Status":    func(a, b Ingredient) int { return strings.Compare(string(a.Status), string(b.Status)) },
	"ECode":     func(a, b Ingredient) int { return strings.Compare(a.ECode, b.ECode) },
	"CreatedAt": func(a, b Ingredient) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"UpdatedAt": func(a, b Ingredient) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

// sortBy orders items by the requested fields, falling back to Name.
// Unknown field names are ignored.
func sortBy[T any](items []T, fields []query.SortField, keys map[string]func(a, b T) int) {
	fields = append(slices.Clone(fields), query.SortField{Field: "Name"})

	slices.SortStableFunc(items, func(a, b T) int {
		for _, f := range fields {
			compare, ok := keys[f.Field]
			if !ok {
				continue
			}
			c := compare(a, b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func distinct[T any](m map[uuid.UUID]T, field func(T) string) []string {
	seen := make(map[string]struct{})
	for _, v := range m {
		if f := strings.TrimSpace(field(v)); f != "" {
			seen[f] = struct{}{}
		}
	}
	out := slices.Collect(maps.Keys(seen))
	slices.SortFunc(out, cmp.Compare[string])
	return out
}
