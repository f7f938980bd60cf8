package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(h http.Handler, method, origin string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS_Wildcard(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"*"}})(okHandler())

	rec := corsRequest(h, http.MethodGet, "https://shop.example", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowListEchoesConfiguredCase(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"https://Shop.Example"}})(okHandler())

	rec := corsRequest(h, http.MethodGet, "https://shop.example", nil)
	assert.Equal(t, "https://Shop.Example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"https://shop.example"}})(okHandler())

	rec := corsRequest(h, http.MethodGet, "https://evil.example", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the request itself still runs")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) { reached = true })
	h := CORS(CORSConfig{
		AllowOrigins: []string{"https://shop.example"},
		AllowHeaders: []string{"Content-Type", "X-API-Key"},
		MaxAge:       600,
	})(next)

	rec := corsRequest(h, http.MethodOptions, "https://shop.example", map[string]string{
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, reached, "preflight must not reach the handler")
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "Content-Type, X-API-Key", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PreflightEchoesRequestedHeaders(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"*"}})(okHandler())

	rec := corsRequest(h, http.MethodOptions, "https://shop.example", map[string]string{
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "X-Session-ID",
	})

	assert.Equal(t, "X-Session-ID", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_CredentialsDisableWildcard(t *testing.T) {
	h := CORS(CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	})(okHandler())

	rec := corsRequest(h, http.MethodGet, "https://shop.example", nil)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"),
		"wildcard plus credentials must not echo *")
}
