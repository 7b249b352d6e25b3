package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/myshop/myshop-manager/internal/auth/jwt"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/myshop/myshop-manager/internal/ratelimit"
	"github.com/myshop/myshop-manager/internal/store/bunt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtSecret      = "hehe"
	adminEmail     = "owner@myshop.cm"
	masterPassword = "FJKqDyBvr9pAQMB3f8Uj4s"

	subEmail    = "eko@myshop.cm"
	subPassword = "testPassword"
)

func newTestServer(t *testing.T, limits ratelimit.Limits) (*Server, *bunt.BuntStore) {
	t.Helper()
	bs, err := bunt.New(context.Background(), bunt.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(bs.Close)

	s, err := New(&Config{
		JWTSecret:      jwtSecret,
		AdminEmail:     adminEmail,
		AdminName:      "Owner",
		MasterPassword: masterPassword,
		BcryptCost:     bcrypt.MinCost,
		JWTTTL:         "60m",
	}, bs.Admin(), ratelimit.NewCustomMultiKeyLimiter(limits))
	require.NoError(t, err)
	return s, bs
}

func addSubAdmin(t *testing.T, s *Server, bs *bunt.BuntStore, perms entity.Permissions) *entity.SubAdmin {
	t.Helper()
	hash, err := s.HashPassword(subPassword)
	require.NoError(t, err)
	sa := &entity.SubAdmin{
		Id:           "sa-1",
		Name:         "Eko",
		Email:        subEmail,
		PasswordHash: hash,
		Permissions:  perms,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, bs.Admin().AddSubAdmin(context.Background(), sa))
	return sa
}

func login(s *Server, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(dto.LoginRequest{Email: email, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(string(body)))
	w := httptest.NewRecorder()
	s.Login(w, req)
	return w
}

func TestNewConfig(t *testing.T) {
	_, err := New(&Config{AdminEmail: adminEmail, MasterPassword: "x", JWTTTL: "1h"}, nil, nil)
	assert.Error(t, err)
	_, err = New(&Config{JWTSecret: "s", AdminEmail: adminEmail, JWTTTL: "1h"}, nil, nil)
	assert.Error(t, err)
	_, err = New(&Config{JWTSecret: "s", AdminEmail: adminEmail, MasterPassword: "x", JWTTTL: "soon"}, nil, nil)
	assert.Error(t, err)
}

func TestLoginSuperAdmin(t *testing.T) {
	s, _ := newTestServer(t, ratelimit.Limits{})

	w := login(s, "Owner@MyShop.cm", masterPassword)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.RoleSuperAdmin, resp.Role)
	assert.Equal(t, "Owner", resp.Name)

	c, err := jwt.VerifyToken(s.JwtAuth, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, adminEmail, c.Subject)

	w = login(s, adminEmail, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSubAdmin(t *testing.T) {
	s, bs := newTestServer(t, ratelimit.Limits{})
	addSubAdmin(t, s, bs, entity.Permissions{entity.PermManagePOS: true})

	w := login(s, subEmail, subPassword)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.RoleSubAdmin, resp.Role)

	c, err := jwt.VerifyToken(s.JwtAuth, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "sa-1", c.SubAdminId)
	assert.Equal(t, []entity.Permission{entity.PermManagePOS}, c.Permissions)

	assert.Equal(t, http.StatusUnauthorized, login(s, subEmail, "nope").Code)
	assert.Equal(t, http.StatusUnauthorized, login(s, "ghost@myshop.cm", subPassword).Code)
	assert.Equal(t, http.StatusBadRequest, login(s, "", "").Code)
}

func TestLoginRateLimited(t *testing.T) {
	s, _ := newTestServer(t, ratelimit.Limits{LoginPerIP: 2})

	assert.Equal(t, http.StatusUnauthorized, login(s, adminEmail, "a").Code)
	assert.Equal(t, http.StatusUnauthorized, login(s, adminEmail, "b").Code)
	assert.Equal(t, http.StatusTooManyRequests, login(s, adminEmail, masterPassword).Code)
}

func protected(s *Server, mw ...func(http.Handler) http.Handler) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return s.WithAuth(h)
}

func call(h http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	s, bs := newTestServer(t, ratelimit.Limits{})
	sa := addSubAdmin(t, s, bs, entity.Permissions{entity.PermManagePOS: true})

	super, err := jwt.NewToken(s.JwtAuth, time.Hour, &jwt.Claims{Subject: adminEmail, Role: entity.RoleSuperAdmin})
	require.NoError(t, err)
	sub, err := jwt.NewToken(s.JwtAuth, time.Hour, &jwt.Claims{
		Subject: subEmail, Role: entity.RoleSubAdmin, SubAdminId: sa.Id,
		Permissions: []entity.Permission{entity.PermManagePOS},
	})
	require.NoError(t, err)

	pos := protected(s, RequirePermission(entity.PermManagePOS))
	stats := protected(s, RequirePermission(entity.PermViewStatistics))
	superOnly := protected(s, RequireSuper)

	assert.Equal(t, http.StatusUnauthorized, call(pos, ""))
	assert.Equal(t, http.StatusUnauthorized, call(pos, "garbage"))

	assert.Equal(t, http.StatusNoContent, call(pos, super))
	assert.Equal(t, http.StatusNoContent, call(stats, super))
	assert.Equal(t, http.StatusNoContent, call(superOnly, super))

	assert.Equal(t, http.StatusNoContent, call(pos, sub))
	assert.Equal(t, http.StatusForbidden, call(stats, sub))
	assert.Equal(t, http.StatusForbidden, call(superOnly, sub))

	// permissions are read from the store, not the token
	sa.Permissions = entity.Permissions{entity.PermViewStatistics: true}
	require.NoError(t, bs.Admin().UpdateSubAdmin(ctx, sa))
	assert.Equal(t, http.StatusForbidden, call(pos, sub))
	assert.Equal(t, http.StatusNoContent, call(stats, sub))

	require.NoError(t, bs.Admin().DeleteSubAdmin(ctx, sa.Id))
	assert.Equal(t, http.StatusUnauthorized, call(stats, sub))
}
