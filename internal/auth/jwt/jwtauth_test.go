package jwt

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	jwtAuth := jwtauth.New("HS256", []byte("secret"), nil)

	tok, err := NewToken(jwtAuth, time.Hour, &Claims{
		Subject:     "eko@myshop.cm",
		Role:        entity.RoleSubAdmin,
		SubAdminId:  "sa-1",
		Permissions: []entity.Permission{entity.PermManagePOS},
	})
	require.NoError(t, err)

	c, err := VerifyToken(jwtAuth, tok)
	require.NoError(t, err)
	assert.Equal(t, "eko@myshop.cm", c.Subject)
	assert.Equal(t, entity.RoleSubAdmin, c.Role)
	assert.Equal(t, "sa-1", c.SubAdminId)
	assert.True(t, c.Can(entity.PermManagePOS))
	assert.False(t, c.Can(entity.PermViewStatistics))
}

func TestSuperAdminCanEverything(t *testing.T) {
	c := &Claims{Role: entity.RoleSuperAdmin}
	for _, p := range entity.AllPermissions {
		assert.True(t, c.Can(p))
	}
}

func TestVerifyRejects(t *testing.T) {
	jwtAuth := jwtauth.New("HS256", []byte("secret"), nil)
	other := jwtauth.New("HS256", []byte("other"), nil)

	tok, err := NewToken(other, time.Hour, &Claims{Subject: "a", Role: entity.RoleSuperAdmin})
	require.NoError(t, err)
	_, err = VerifyToken(jwtAuth, tok)
	assert.Error(t, err)

	tok, err = NewToken(jwtAuth, -time.Hour, &Claims{Subject: "a", Role: entity.RoleSuperAdmin})
	require.NoError(t, err)
	_, err = VerifyToken(jwtAuth, tok)
	assert.Error(t, err)

	tok, err = NewToken(jwtAuth, time.Hour, &Claims{Subject: "a", Role: "root"})
	require.NoError(t, err)
	_, err = VerifyToken(jwtAuth, tok)
	assert.Error(t, err)
}
