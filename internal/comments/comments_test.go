package comments_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/comments"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

type fixture struct {
	store *catalog.Memory
	sys   comments.System
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := catalog.NewMemory()
	return &fixture{store: store, sys: comments.New(store, logger)}
}

func (f *fixture) product(t *testing.T, name string) catalog.Product {
	t.Helper()
	p := catalog.Product{ID: uuid.New(), Name: name, Status: status.Unknown, Country: "UK"}
	require.NoError(t, f.store.Products().Insert(context.Background(), p))
	return p
}

func (f *fixture) ingredient(t *testing.T, name string) catalog.Ingredient {
	t.Helper()
	in := catalog.Ingredient{ID: uuid.New(), Name: name, Status: status.Mushbooh, Scope: catalog.NewScope("", status.Mushbooh)}
	require.NoError(t, f.store.Ingredients().Insert(context.Background(), in))
	return in
}

func ptr[T any](v T) *T { return &v }

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	p := f.product(t, "KitKat")
	in := f.ingredient(t, "Gelatin")

	tests := []struct {
		name string
		user string
		cmd  comments.CreateCommand
		want error
	}{
		{"no target", "u1", comments.CreateCommand{Content: "hi"}, comments.ErrValidation},
		{"both targets", "u1", comments.CreateCommand{ProductID: &p.ID, IngredientID: &in.ID, Content: "hi"}, comments.ErrValidation},
		{"blank content", "u1", comments.CreateCommand{ProductID: &p.ID, Content: "  \n "}, comments.ErrValidation},
		{"no user", "", comments.CreateCommand{ProductID: &p.ID, Content: "hi"}, comments.ErrValidation},
		{"missing product", "u1", comments.CreateCommand{ProductID: ptr(uuid.New()), Content: "hi"}, catalog.ErrNotFound},
		{"missing ingredient", "u1", comments.CreateCommand{IngredientID: ptr(uuid.New()), Content: "hi"}, catalog.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sys.Create(context.Background(), tt.user, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(t, "KitKat")
	in := f.ingredient(t, "Gelatin")

	first, err := f.sys.Create(ctx, "u1", comments.CreateCommand{ProductID: &p.ID, Content: "  contains whey "})
	require.NoError(t, err)
	assert.Equal(t, catalog.CommentOnProduct, first.Target)
	assert.Equal(t, "contains whey", first.Content)

	time.Sleep(time.Millisecond)
	second, err := f.sys.Create(ctx, "u2", comments.CreateCommand{ProductID: &p.ID, Content: "certified in MY"})
	require.NoError(t, err)

	onIngredient, err := f.sys.Create(ctx, "u1", comments.CreateCommand{IngredientID: &in.ID, Content: "source varies"})
	require.NoError(t, err)
	assert.Equal(t, catalog.CommentOnIngredient, onIngredient.Target)

	got, err := f.sys.List(ctx, catalog.CommentFilter{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	got, err = f.sys.List(ctx, catalog.CommentFilter{IngredientID: &in.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, onIngredient.ID, got[0].ID)

	_, err = f.sys.List(ctx, catalog.CommentFilter{})
	assert.ErrorIs(t, err, comments.ErrValidation)
}

func TestCommentsRemovedWithProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(t, "KitKat")

	_, err := f.sys.Create(ctx, "u1", comments.CreateCommand{ProductID: &p.ID, Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, f.store.Products().Delete(ctx, p.ID))

	got, err := f.store.Comments().List(ctx, catalog.CommentFilter{ProductID: &p.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHandler(t *testing.T) {
	f := newFixture()
	p := f.product(t, "KitKat")

	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())

	post := func(principal *auth.Principal, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(body))
		if principal != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), *principal))
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}
	get := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/comments"+query, nil))
		return rec
	}

	user := auth.NewPrincipal("u1", "", nil, "Admin")
	body := `{"product_id":"` + p.ID.String() + `","content":"no pork"}`

	assert.Equal(t, http.StatusUnauthorized, post(nil, body).Code)
	assert.Equal(t, http.StatusBadRequest, post(&user, `{"product_id":"`+p.ID.String()+`","content":""}`).Code)
	assert.Equal(t, http.StatusNotFound, post(&user, `{"product_id":"`+uuid.NewString()+`","content":"x"}`).Code)
	assert.Equal(t, http.StatusCreated, post(&user, body).Code)

	assert.Equal(t, http.StatusBadRequest, get("").Code)
	assert.Equal(t, http.StatusBadRequest, get("?product_id=nope").Code)

	rec := get("?product_id=" + p.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var items []catalog.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "u1", items[0].UserID)
	assert.Equal(t, "no pork", items[0].Content)
}
