package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/myshop/myshop-manager/internal/apisrv/admin"
	"github.com/myshop/myshop-manager/internal/apisrv/auth"
	"github.com/myshop/myshop-manager/internal/apisrv/frontend"
	"github.com/myshop/myshop-manager/internal/mail"
	"github.com/myshop/myshop-manager/internal/ratelimit"
	"github.com/myshop/myshop-manager/internal/report"
	"github.com/myshop/myshop-manager/internal/stats"
	"github.com/myshop/myshop-manager/internal/store/bunt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"
)

func newTestHandler(t *testing.T, c *Config) http.Handler {
	t.Helper()
	bs, err := bunt.New(context.Background(), bunt.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(bs.Close)

	st, err := stats.New(&stats.Config{}, bs, nil)
	require.NoError(t, err)
	rr, err := report.New("MyShop", language.English, st.Location())
	require.NoError(t, err)
	m, err := mail.New(&mail.Config{}, bs.Mail())
	require.NoError(t, err)
	limiter := ratelimit.NewMultiKeyLimiter()
	as, err := auth.New(&auth.Config{
		JWTSecret:      "hehe",
		AdminEmail:     "owner@myshop.cm",
		MasterPassword: "secret",
		BcryptCost:     bcrypt.MinCost,
		JWTTTL:         "1h",
	}, bs.Admin(), limiter)
	require.NoError(t, err)

	return New(c).Handler(admin.New(bs, m, st, rr, as), frontend.New(bs, m, st, limiter))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	h := newTestHandler(t, &Config{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/api/shipping-fees", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/api/stats", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, httptest.NewRequest(http.MethodGet, "/api/pos/receipts", nil)).Code)

	login := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"email":"owner@myshop.cm","password":"secret"}`))
	w = serve(h, login)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"token"`)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t, &Config{AllowedOrigins: []string{"https://myshop.cm"}})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/admin/orders", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		return serve(h, req)
	}

	w := preflight("https://myshop.cm")
	assert.Equal(t, "https://myshop.cm", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)

	w = preflight("http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, &Config{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"https://myshop.cm"}
	assert.True(t, isOriginAllowed("https://localhost:5173", allowed))
	assert.True(t, isOriginAllowed("https://myshop.cm", allowed))
	assert.False(t, isOriginAllowed("https://myshop.cm.evil", allowed))
	assert.True(t, isOriginAllowed("https://anything", []string{"*"}))
}
