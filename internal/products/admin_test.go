package products_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/gemini"
	"github.com/JaimeStill/halalcheck/internal/products"
	"github.com/JaimeStill/halalcheck/internal/status"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

func command(name string) products.Command {
	return products.Command{
		Name:        name,
		Country:     "UK",
		Category:    "Chocolate",
		Description: "milk chocolate bar",
		Barcode:     "5000159461122",
	}
}

func ingredientNames(items []catalog.Ingredient) []string {
	out := make([]string, len(items))
	for i, in := range items {
		out[i] = in.Name
	}
	return out
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*products.Command)
		want   error
	}{
		{"missing description", func(c *products.Command) { c.Description = " " }, products.ErrValidation},
		{"missing country", func(c *products.Command) { c.Country = "" }, products.ErrValidation},
		{"missing category", func(c *products.Command) { c.Category = "" }, products.ErrValidation},
		{"ai without barcode", func(c *products.Command) { c.UseAI, c.Barcode = true, "" }, products.ErrValidation},
		{"duplicate name", func(c *products.Command) { c.Name = "kitkat" }, catalog.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := command("Twix")
			tt.mutate(&cmd)
			_, err := f.sys.Create(context.Background(), "admin", cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, f.gen.Prompts())
}

func TestCreateWithIngredientNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.Search(ctx, pagination.PageRequest{}, catalog.ProductFilter{})
	require.NoError(t, err)

	cmd := command("Twix")
	cmd.Ingredients = []string{"sugar", "Caramel"}

	got, err := f.sys.Create(ctx, "admin", cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Caramel", "Sugar"}, ingredientNames(got.Ingredients))
	assert.Equal(t, status.Mushbooh, got.Status)
	assert.Equal(t, "admin", got.AddedBy)
	require.NotNil(t, got.VerifiedBy)

	caramel, err := f.store.Ingredients().FindByName(ctx, "caramel")
	require.NoError(t, err)
	assert.Equal(t, status.Mushbooh, caramel.Status)
	assert.Equal(t, []string{"UK"}, caramel.MushboohIn)

	_, cached, err := f.cache.Get(ctx, catalog.CacheProductsAll)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestCreateWithRecords(t *testing.T) {
	f := newFixture(t)

	cmd := command("Jelly Babies")
	cmd.Records = []catalog.Ingredient{
		{Name: "Gelatin", Status: status.Haram, ECode: "E441"},
		{Name: "Sugar"},
	}

	got, err := f.sys.Create(context.Background(), "admin", cmd)
	require.NoError(t, err)
	assert.Equal(t, status.Haram, got.Status)
	assert.Equal(t, []string{"Gelatin", "Sugar"}, ingredientNames(got.Ingredients))
}

func TestCreateWithAI(t *testing.T) {
	f := newFixture(t)
	f.gen.Default = "Ingredient: Cocoa Butter: N/A: fat: Halal\nIngredient: Whey: N/A: dairy: Mushbooh"

	cmd := command("Twix")
	cmd.UseAI = true
	cmd.Ingredients = []string{"ignored"}

	got, err := f.sys.Create(context.Background(), "admin", cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cocoa Butter", "Whey"}, ingredientNames(got.Ingredients))
	assert.Equal(t, status.Mushbooh, got.Status)
	require.Len(t, f.gen.Prompts(), 1)
	assert.Contains(t, f.gen.Prompts()[0], "Twix")
}

func TestCreateWithAIProceedsWhenTextServiceFails(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback *status.Status
		want     status.Status
	}{
		{"transport failure", errors.New("connection reset"), nil, status.Unknown},
		{"no candidates", gemini.ErrNoCandidates, nil, status.Unknown},
		{"explicit status kept", errors.New("timeout"), ptr(status.Halal), status.Halal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gen.Err = tt.err

			cmd := command("Twix")
			cmd.UseAI = true
			cmd.Status = tt.fallback

			got, err := f.sys.Create(context.Background(), "admin", cmd)
			require.NoError(t, err)
			assert.Empty(t, got.Ingredients)
			assert.Equal(t, tt.want, got.Status)

			stored, err := f.store.Products().FindByName(context.Background(), "Twix")
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Status)
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kitkat, err := f.store.Products().FindByName(ctx, "KitKat")
	require.NoError(t, err)

	cmd := command("KitKat Chunky")
	cmd.Category = ""
	cmd.Status = ptr(status.Halal)

	got, err := f.sys.Update(ctx, kitkat.ID, "admin", cmd)
	require.NoError(t, err)
	assert.Equal(t, "KitKat Chunky", got.Name)
	assert.Equal(t, "Chocolate", got.Category)
	assert.Equal(t, status.Halal, got.Status)
	assert.Equal(t, []string{"Sugar"}, ingredientNames(got.Ingredients))

	cmd.Ingredients = []string{"Gelatin"}
	got, err = f.sys.Update(ctx, kitkat.ID, "admin", cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gelatin"}, ingredientNames(got.Ingredients))
	assert.Equal(t, status.Mushbooh, got.Status, "re-evaluated from the new ingredients")

	_, err = f.sys.Update(ctx, kitkat.ID, "admin", command("Chicken Breast"))
	assert.ErrorIs(t, err, catalog.ErrDuplicate)

	_, err = f.sys.Update(ctx, uuid.New(), "admin", command("Oreo"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateWithAIFailureClearsIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gen.Err = errors.New("timeout")

	kitkat, err := f.store.Products().FindByName(ctx, "KitKat")
	require.NoError(t, err)

	cmd := command("KitKat")
	cmd.UseAI = true

	got, err := f.sys.Update(ctx, kitkat.ID, "admin", cmd)
	require.NoError(t, err)
	assert.Empty(t, got.Ingredients)
	assert.Equal(t, status.Unknown, got.Status)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kitkat, err := f.store.Products().FindByName(ctx, "KitKat")
	require.NoError(t, err)

	require.NoError(t, f.sys.Delete(ctx, kitkat.ID))

	_, err = f.sys.Find(ctx, kitkat.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	sugar, err := f.store.Ingredients().FindByName(ctx, "Sugar")
	require.NoError(t, err, "ingredients outlive the product")
	ids, err := f.store.Links().ProductsOf(ctx, sugar.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, f.sys.Delete(ctx, kitkat.ID), catalog.ErrNotFound)
}

func TestHandlerAdminWrites(t *testing.T) {
	f := newFixture(t)
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())

	user := auth.NewPrincipal("u1", "", nil, "Admin")
	admin := auth.NewPrincipal("admin", "", []string{"Admin"}, "Admin")

	serve := func(method, path, body string, p *auth.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if p != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	body := `{"name":"Twix","country":"UK","category":"Chocolate","description":"bar","ingredients":["Sugar"]}`

	assert.Equal(t, http.StatusUnauthorized, serve("POST", "/products", body, nil).Code)
	assert.Equal(t, http.StatusForbidden, serve("POST", "/products", body, &user).Code)
	assert.Equal(t, http.StatusBadRequest, serve("POST", "/products", `{"name":"Twix"}`, &admin).Code)

	rec := serve("POST", "/products", body, &admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created products.Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, status.Halal, created.Status)

	assert.Equal(t, http.StatusConflict, serve("POST", "/products", body, &admin).Code)

	path := "/products/" + created.ID.String()
	rec = serve("PUT", path, `{"name":"Twix Xtra","country":"UK","description":"bar"}`, &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Twix Xtra"`)

	assert.Equal(t, http.StatusForbidden, serve("DELETE", path, "", &user).Code)
	assert.Equal(t, http.StatusNoContent, serve("DELETE", path, "", &admin).Code)
	assert.Equal(t, http.StatusNotFound, serve("DELETE", path, "", &admin).Code)
	assert.Equal(t, http.StatusBadRequest, serve("PUT", "/products/nope", "{}", &admin).Code)
}
