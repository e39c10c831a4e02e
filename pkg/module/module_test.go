package module_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/pkg/handlers"
	"github.com/JaimeStill/halalcheck/pkg/module"
)

func TestNewPrefixValidation(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantPanic bool
	}{
		{"api", "/api", false},
		{"empty", "", true},
		{"no leading slash", "api", true},
		{"nested path", "/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantPanic {
				assert.Panics(t, func() { module.New(tt.prefix, http.NewServeMux()) })
				return
			}
			m := module.New(tt.prefix, http.NewServeMux())
			assert.Equal(t, tt.prefix, m.Prefix())
		})
	}
}

func TestServeStripsPrefix(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantPath string
	}{
		{"nested", "/api/products/42", "/products/42"},
		{"root", "/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			mux := http.NewServeMux()
			mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
				received = r.URL.Path
			})

			m := module.New("/api", mux)
			m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.wantPath, received)
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inner", r.Header.Get("X-User-ID"))
	})

	m := module.New("/api", mux)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Set("X-User-ID", "alice")
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api", nil))
	assert.Equal(t, "alice", rec.Header().Get("X-Inner"))
}

func newRouter() *module.Router {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("products"))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return router
}

func TestRouterDispatch(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{"module", "/api/products", "products"},
		{"trailing slash", "/api/products/", "products"},
		{"native", "/healthz", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRouterUnknownPathIsJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/nowhere", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body handlers.Failure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "/nowhere")
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := newRouter()
	assert.Panics(t, func() {
		router.Mount(module.New("/api", http.NewServeMux()))
	})
}

func TestServeKeepsEscapedPath(t *testing.T) {
	var raw string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /archive/{key...}", func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.EscapedPath()
	})

	m := module.New("/api", mux)
	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/archive/2026%2F10%2Fkitkat.json", nil))
	assert.Equal(t, "/archive/2026%2F10%2Fkitkat.json", raw)
}
