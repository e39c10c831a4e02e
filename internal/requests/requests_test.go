package requests_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/internal/gemini/geminitest"
	"github.com/JaimeStill/halalcheck/internal/requests"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store catalog.Store
	mem   *catalog.Memory
	gen   *geminitest.Fake
	cache *cache.Memory
	sys   requests.System
}

func newFixture(wrap func(catalog.Store) catalog.Store) *fixture {
	f := &fixture{
		mem:   catalog.NewMemory(),
		gen:   &geminitest.Fake{},
		cache: cache.NewMemory(),
	}
	f.store = catalog.Store(f.mem)
	if wrap != nil {
		f.store = wrap(f.mem)
	}

	loader := cache.NewLoader(f.cache, time.Minute, discard())
	classifier := classification.New(f.store, f.gen, nil, loader, discard())
	f.sys = requests.New(f.store, classifier, loader, discard())
	return f
}

func (f *fixture) product(t *testing.T, name, owner string, ingredients ...string) catalog.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	p := catalog.Product{
		ID: uuid.New(), Name: name, Status: status.Unknown, Country: "UK",
		Category: "Snacks", Description: "original", AddedBy: owner,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.mem.Products().Insert(ctx, p))

	for _, n := range ingredients {
		in := catalog.Ingredient{ID: uuid.New(), Name: n, Status: status.Halal, Scope: catalog.NewScope("UK", status.Halal)}
		require.NoError(t, f.mem.Ingredients().Insert(ctx, in))
		require.NoError(t, f.mem.Links().Link(ctx, catalog.Link{ProductID: p.ID, IngredientID: in.ID}))
	}
	return p
}

func (f *fixture) submitAdd(t *testing.T, name string) *catalog.ChangeRequest {
	t.Helper()
	req, err := f.sys.Submit(context.Background(), requests.Submission{
		Type:   catalog.RequestAdd,
		Fields: requests.Fields{Name: ptr(name), Country: ptr("UK")},
	}, "user-1")
	require.NoError(t, err)
	return req
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	owned := f.product(t, "KitKat", "user-1")

	tests := []struct {
		name      string
		sub       requests.Submission
		requester string
		want      error
	}{
		{
			name:      "add without country",
			sub:       requests.Submission{Type: catalog.RequestAdd, Fields: requests.Fields{Name: ptr("KitKat")}},
			requester: "user-1",
			want:      requests.ErrValidation,
		},
		{
			name:      "add with blank name",
			sub:       requests.Submission{Type: catalog.RequestAdd, Fields: requests.Fields{Name: ptr(" "), Country: ptr("UK")}},
			requester: "user-1",
			want:      requests.ErrValidation,
		},
		{
			name:      "unknown type",
			sub:       requests.Submission{Type: "Merge"},
			requester: "user-1",
			want:      requests.ErrValidation,
		},
		{
			name:      "edit without changes",
			sub:       requests.Submission{Type: catalog.RequestEdit, ProductID: &owned.ID, Fields: requests.Fields{Country: ptr("UK")}},
			requester: "user-1",
			want:      requests.ErrValidation,
		},
		{
			name:      "edit of another user's product",
			sub:       requests.Submission{Type: catalog.RequestEdit, ProductID: &owned.ID, Fields: requests.Fields{Country: ptr("UK"), Name: ptr("x")}},
			requester: "user-2",
			want:      requests.ErrAuthorization,
		},
		{
			name:      "delete of another user's product",
			sub:       requests.Submission{Type: catalog.RequestDelete, ProductID: &owned.ID},
			requester: "user-2",
			want:      requests.ErrAuthorization,
		},
		{
			name:      "delete of missing product",
			sub:       requests.Submission{Type: catalog.RequestDelete, ProductID: ptr(uuid.New())},
			requester: "user-1",
			want:      catalog.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sys.Submit(ctx, tt.sub, tt.requester)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := f.mem.Requests().List(ctx, catalog.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmitEditFillsFromProduct(t *testing.T) {
	f := newFixture(nil)
	p := f.product(t, "KitKat", "user-1", "Sugar", "Cocoa Butter")

	req, err := f.sys.Submit(context.Background(), requests.Submission{
		Type:      catalog.RequestEdit,
		ProductID: &p.ID,
		Fields:    requests.Fields{Country: ptr("Malaysia"), Description: ptr("wafer bar")},
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, catalog.RequestPending, req.Status)
	assert.Equal(t, "KitKat", req.Name)
	assert.Equal(t, "Snacks", req.Category)
	assert.Equal(t, "Malaysia", req.Country)
	assert.Equal(t, "wafer bar", req.Description)
	assert.Equal(t, []string{"Cocoa Butter", "Sugar"}, req.Ingredients)
	assert.Equal(t, p.ID, *req.ProductID)
}

func TestSubmitInvalidatesPendingCache(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	pending := catalog.RequestPending

	first, err := f.sys.List(ctx, catalog.RequestFilter{Status: &pending})
	require.NoError(t, err)
	assert.Empty(t, first)

	f.submitAdd(t, "KitKat")

	second, err := f.sys.List(ctx, catalog.RequestFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestEdit(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	req := f.submitAdd(t, "KitKat")

	edited, err := f.sys.Edit(ctx, req.ID, requests.Fields{Country: ptr("France"), Category: ptr("Chocolate")}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "KitKat", edited.Name, "absent fields keep their value")
	assert.Equal(t, "France", edited.Country)
	assert.Equal(t, "Chocolate", edited.Category)

	_, err = f.sys.Edit(ctx, req.ID, requests.Fields{Country: ptr("France")}, "user-2")
	assert.ErrorIs(t, err, requests.ErrAuthorization)

	_, err = f.sys.Reject(ctx, req.ID, "admin", requests.RejectCommand{Reason: "duplicate"})
	require.NoError(t, err)

	_, err = f.sys.Edit(ctx, req.ID, requests.Fields{Country: ptr("France")}, "user-1")
	assert.ErrorIs(t, err, requests.ErrConflict)
	assert.Equal(t, http.StatusConflict, requests.MapHTTPStatus(err))
}

func TestApproveAdd(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	req := f.submitAdd(t, "Gummy Bears")

	approval, err := f.sys.Approve(ctx, req.ID, "admin", requests.ApproveCommand{Ingredients: []catalog.Ingredient{
		{Name: "Sugar", Status: status.Halal},
		{Name: "Gelatin", Status: status.Haram, ECode: "E441"},
	}})
	require.NoError(t, err)

	assert.Equal(t, catalog.RequestApproved, approval.Request.Status)
	assert.Equal(t, "admin", *approval.Request.ActionedBy)
	require.NotNil(t, approval.Product)
	assert.Equal(t, "Gummy Bears", approval.Product.Name)
	assert.Equal(t, "Unknown", approval.Product.Category)
	assert.Equal(t, "No description provided", approval.Product.Description)
	assert.Equal(t, "user-1", approval.Product.AddedBy)
	assert.Equal(t, status.Haram, approval.Product.Status)
	assert.Len(t, approval.Ingredients, 2)

	stored, err := f.mem.Products().FindByName(ctx, "Gummy Bears")
	require.NoError(t, err)
	assert.Equal(t, status.Haram, stored.Status)
}

func TestApproveTwiceConflicts(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	req := f.submitAdd(t, "Gummy Bears")
	cmd := requests.ApproveCommand{Ingredients: []catalog.Ingredient{{Name: "Sugar", Status: status.Halal}}}

	_, err := f.sys.Approve(ctx, req.ID, "admin", cmd)
	require.NoError(t, err)

	_, err = f.sys.Approve(ctx, req.ID, "admin", cmd)
	assert.ErrorIs(t, err, requests.ErrConflict)

	page, err := f.mem.Products().Search(ctx, pageAll(), catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = f.sys.Reject(ctx, req.ID, "admin", requests.RejectCommand{Reason: "late"})
	assert.ErrorIs(t, err, requests.ErrConflict)
}

func TestApproveEditReplacesLinks(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	p := f.product(t, "Trail Mix", "user-1", "Almonds", "Raisins")

	req, err := f.sys.Submit(ctx, requests.Submission{
		Type:      catalog.RequestEdit,
		ProductID: &p.ID,
		Fields:    requests.Fields{Country: ptr("UK"), Name: ptr("Trail Mix Deluxe")},
	}, "user-1")
	require.NoError(t, err)

	approval, err := f.sys.Approve(ctx, req.ID, "admin", requests.ApproveCommand{Ingredients: []catalog.Ingredient{
		{Name: "almonds"},
		{Name: "Pork Rind", Status: status.Haram},
	}})
	require.NoError(t, err)

	assert.Equal(t, "Trail Mix Deluxe", approval.Product.Name)
	assert.Equal(t, "Snacks", approval.Product.Category, "empty proposal fields leave the product unchanged")
	assert.Equal(t, status.Haram, approval.Product.Status)

	linked, err := f.mem.Links().IngredientsOf(ctx, p.ID)
	require.NoError(t, err)
	names := []string{linked[0].Name, linked[1].Name}
	assert.Equal(t, []string{"Almonds", "Pork Rind"}, names)
}

func TestApproveDelete(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	p := f.product(t, "KitKat", "user-1", "Sugar")

	req, err := f.sys.Submit(ctx, requests.Submission{Type: catalog.RequestDelete, ProductID: &p.ID}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "KitKat", req.Name)

	approval, err := f.sys.Approve(ctx, req.ID, "admin", requests.ApproveCommand{})
	require.NoError(t, err)
	assert.Nil(t, approval.Product)

	_, err = f.mem.Products().Find(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	sugar, err := f.mem.Ingredients().FindByName(ctx, "Sugar")
	require.NoError(t, err, "ingredients outlive the products that used them")
	ids, err := f.mem.Links().ProductsOf(ctx, sugar.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestApproveRollsBackOnLinkFailure(t *testing.T) {
	f := newFixture(func(s catalog.Store) catalog.Store {
		return &failingStore{Store: s, failAfter: 1}
	})
	ctx := context.Background()
	req := f.submitAdd(t, "Gummy Bears")

	_, err := f.sys.Approve(ctx, req.ID, "admin", requests.ApproveCommand{Ingredients: []catalog.Ingredient{
		{Name: "Sugar", Status: status.Halal},
		{Name: "Gelatin", Status: status.Haram},
	}})
	require.ErrorIs(t, err, errLinkFailed)

	_, err = f.mem.Products().FindByName(ctx, "Gummy Bears")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = f.mem.Ingredients().FindByName(ctx, "Sugar")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	stored, err := f.mem.Requests().Find(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.RequestPending, stored.Status)
	assert.Nil(t, stored.ActionedBy)
}

func TestReject(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	req := f.submitAdd(t, "KitKat")

	_, err := f.sys.Reject(ctx, req.ID, "admin", requests.RejectCommand{Reason: "  "})
	assert.ErrorIs(t, err, requests.ErrValidation)

	rejected, err := f.sys.Reject(ctx, req.ID, "admin", requests.RejectCommand{Reason: "duplicate entry"})
	require.NoError(t, err)
	assert.Equal(t, catalog.RequestRejected, rejected.Status)
	assert.Equal(t, "duplicate entry", *rejected.RejectionReason)
	assert.NotNil(t, rejected.ActionedAt)

	_, err = f.sys.Reject(ctx, uuid.New(), "admin", requests.RejectCommand{Reason: "x"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestVerifyIngredients(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	f.gen.On("'KitKat'", "Ingredient: Sugar: N/A: sweetener: Halal\nIngredient: Whey: N/A: dairy: Mushbooh")
	f.gen.On("Cocoa Butter, Lecithin", "Cocoa Butter: N/A: fat: Halal\nLecithin: E322: emulsifier: Mushbooh")

	req, err := f.sys.Submit(ctx, requests.Submission{
		Type:   catalog.RequestAdd,
		Fields: requests.Fields{Name: ptr("KitKat"), Country: ptr("UK"), Ingredients: []string{"Cocoa Butter", "Lecithin"}},
	}, "user-1")
	require.NoError(t, err)

	verified, err := f.sys.VerifyIngredients(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, verified, 2)
	assert.Equal(t, "Sugar", verified[0].Name)
	assert.Len(t, f.gen.Prompts(), 2)

	lecithin, err := f.mem.Ingredients().FindByName(ctx, "Lecithin")
	require.NoError(t, err, "user ingredients are persisted as evidence")
	assert.Equal(t, "E322", lecithin.ECode)

	stored, err := f.mem.Requests().Find(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.RequestPending, stored.Status)
}

func TestVerifyUserIngredientsOnly(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	f.gen.Default = "Cocoa Butter: N/A: fat: Halal"

	req, err := f.sys.Submit(ctx, requests.Submission{
		Type: catalog.RequestAdd,
		Fields: requests.Fields{
			Name: ptr("KitKat"), Country: ptr("UK"),
			Ingredients: []string{"Cocoa Butter"}, UseOnlyUserIngredients: ptr(true),
		},
	}, "user-1")
	require.NoError(t, err)

	verified, err := f.sys.VerifyIngredients(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, "Cocoa Butter", verified[0].Name)
	require.Len(t, f.gen.Prompts(), 1)
	assert.Contains(t, f.gen.Prompts()[0], "following ingredients")
}

func TestVerifyProcessedRequestConflicts(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	req := f.submitAdd(t, "KitKat")

	_, err := f.sys.Reject(ctx, req.ID, "admin", requests.RejectCommand{Reason: "no"})
	require.NoError(t, err)

	_, err = f.sys.VerifyIngredients(ctx, req.ID)
	assert.ErrorIs(t, err, requests.ErrConflict)
	assert.Empty(t, f.gen.Prompts())
}

func TestFindVisibility(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	req := f.submitAdd(t, "KitKat")

	_, err := f.sys.Find(ctx, req.ID, auth.NewPrincipal("user-1", "", nil, "Admin"))
	assert.NoError(t, err)

	_, err = f.sys.Find(ctx, req.ID, auth.NewPrincipal("admin", "", []string{"Admin"}, "Admin"))
	assert.NoError(t, err)

	_, err = f.sys.Find(ctx, req.ID, auth.NewPrincipal("user-2", "", nil, "Admin"))
	assert.ErrorIs(t, err, requests.ErrAuthorization)
	assert.Equal(t, http.StatusForbidden, requests.MapHTTPStatus(err))

	mine, err := f.sys.ListByRequester(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.sys.ListByRequester(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

var errLinkFailed = errors.New("link failed")

// failingStore fails every Link call after the first failAfter succeed.
type failingStore struct {
	catalog.Store
	failAfter int
	calls     int
}

func (s *failingStore) Links() catalog.LinkStore {
	return failingLinks{LinkStore: s.Store.Links(), parent: s}
}

func (s *failingStore) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx catalog.Store) error {
		return fn(&failingStore{Store: tx, failAfter: s.failAfter})
	})
}

type failingLinks struct {
	catalog.LinkStore
	parent *failingStore
}

func (l failingLinks) Link(ctx context.Context, link catalog.Link) error {
	l.parent.calls++
	if l.parent.calls > l.parent.failAfter {
		return errLinkFailed
	}
	return l.LinkStore.Link(ctx, link)
}

func pageAll() pagination.PageRequest {
	return pagination.PageRequest{Page: 1, PageSize: 100}
}
