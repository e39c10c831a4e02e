package products_test

import (
	"context"
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
	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/internal/gemini/geminitest"
	"github.com/JaimeStill/halalcheck/internal/products"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

var pageCfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

type fixture struct {
	store *catalog.Memory
	cache *cache.Memory
	gen   *geminitest.Fake
	sys   products.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{store: catalog.NewMemory(), cache: cache.NewMemory(), gen: &geminitest.Fake{}}
	loader := cache.NewLoader(f.cache, time.Minute, logger)
	classifier := classification.New(f.store, f.gen, nil, loader, logger)
	f.sys = products.New(f.store, classifier, loader, logger, pageCfg)

	ctx := context.Background()
	seed := []catalog.Product{
		{ID: uuid.New(), Name: "KitKat", Category: "Chocolate", Country: "UK", Status: status.Mushbooh},
		{ID: uuid.New(), Name: "Haribo Goldbears", Category: "Candy", Country: "Germany", Status: status.Haram},
		{ID: uuid.New(), Name: "Chicken Breast", Category: "Meat", Country: "UK", Status: status.Halal},
	}
	for _, p := range seed {
		require.NoError(t, f.store.Products().Insert(ctx, p))
	}

	sugar := catalog.Ingredient{ID: uuid.New(), Name: "Sugar", Status: status.Halal, ECode: "N/A", Scope: catalog.NewScope("UK", status.Halal)}
	require.NoError(t, f.store.Ingredients().Insert(ctx, sugar))
	require.NoError(t, f.store.Links().Link(ctx, catalog.Link{ProductID: seed[0].ID, IngredientID: sugar.ID}))
	return f
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uk := "UK"
	haram := status.Haram

	tests := []struct {
		name   string
		page   pagination.PageRequest
		filter catalog.ProductFilter
		want   []string
	}{
		{"all by name", pagination.PageRequest{}, catalog.ProductFilter{}, []string{"Chicken Breast", "Haribo Goldbears", "KitKat"}},
		{"country", pagination.PageRequest{}, catalog.ProductFilter{Country: &uk}, []string{"Chicken Breast", "KitKat"}},
		{"category set", pagination.PageRequest{}, catalog.ProductFilter{Categories: []string{"candy", "Meat"}}, []string{"Chicken Breast", "Haribo Goldbears"}},
		{"status", pagination.PageRequest{}, catalog.ProductFilter{Status: &haram}, []string{"Haribo Goldbears"}},
		{"search", pagination.PageRequest{Search: ptr("kit")}, catalog.ProductFilter{}, []string{"KitKat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.sys.Search(ctx, tt.page, tt.filter)
			require.NoError(t, err)

			names := make([]string, len(res.Data))
			for i, p := range res.Data {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, pageCfg.DefaultPageSize, res.PageSize)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestSearchCachesDefaultPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sys.Search(ctx, pagination.PageRequest{}, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	_, ok, err := f.cache.Get(ctx, catalog.CacheProductsAll)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.store.Products().Insert(ctx, catalog.Product{ID: uuid.New(), Name: "Oreo"}))

	res, err = f.sys.Search(ctx, pagination.PageRequest{}, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total, "served from cache until invalidated")

	require.NoError(t, f.cache.Delete(ctx, catalog.CacheProductsAll))
	res, err = f.sys.Search(ctx, pagination.PageRequest{}, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
}

func TestFindIncludesIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kitkat, err := f.store.Products().FindByName(ctx, "kitkat")
	require.NoError(t, err)

	detail, err := f.sys.Find(ctx, kitkat.ID)
	require.NoError(t, err)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "Sugar", detail.Ingredients[0].Name)

	_, err = f.sys.Find(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCategoriesAndCountries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cats, err := f.sys.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Candy", "Chocolate", "Meat"}, cats)

	countries, err := f.sys.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Germany", "UK"}, countries)
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture(t)
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())

	tests := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{"GET", "/products?country=Germany", "", http.StatusOK, "Haribo Goldbears"},
		{"POST", "/products/search", `{"page":1,"categories":["Meat"]}`, http.StatusOK, "Chicken Breast"},
		{"GET", "/products/categories", "", http.StatusOK, "Chocolate"},
		{"GET", "/products/countries", "", http.StatusOK, "Germany"},
		{"GET", "/products/nope", "", http.StatusBadRequest, `"success":false`},
		{"GET", "/products/" + uuid.NewString(), "", http.StatusNotFound, "not found"},
		{"GET", "/ingredients?search=sug", "", http.StatusOK, `"Sugar"`},
		{"POST", "/ingredients/search", `{"status":"Halal"}`, http.StatusOK, `"Sugar"`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
