package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIdentifier(t *testing.T) {
	var ip, session string
	h := func(trust bool) http.Handler {
		return ClientIdentifier(trust)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip = GetClientIP(r.Context())
			session = GetClientSession(r.Context())
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	req.Header.Set("X-Forwarded-For", "41.202.1.1, 10.0.0.1")

	h(false).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.0.0.7", ip)
	assert.Len(t, session, 16)

	h(true).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "41.202.1.1", ip)

	req.RemoteAddr = "[::1]:80"
	h(false).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "::1", ip)
}

func TestGetClientIPWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "unknown", GetClientIP(req.Context()))
	assert.Equal(t, "unknown", GetClientSession(req.Context()))
}
