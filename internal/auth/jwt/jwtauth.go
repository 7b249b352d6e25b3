package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/myshop/myshop-manager/internal/entity"
)

const (
	claimRole        = "role"
	claimSubAdminId  = "subAdminId"
	claimPermissions = "permissions"
)

// Claims identify the admin a token was issued to.
type Claims struct {
	// Subject is the admin email.
	Subject     string
	Role        entity.Role
	SubAdminId  string
	Permissions []entity.Permission
}

// Can reports whether the holder may use perm. The super admin can do anything.
func (c *Claims) Can(perm entity.Permission) bool {
	if c.Role == entity.RoleSuperAdmin {
		return true
	}
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

func VerifyToken(jwtAuth *jwtauth.JWTAuth, token string) (*Claims, error) {
	t, err := jwtauth.VerifyToken(jwtAuth, token)
	if err != nil {
		return nil, err
	}
	pc := t.PrivateClaims()

	c := &Claims{Subject: t.Subject()}
	role, _ := pc[claimRole].(string)
	c.Role = entity.Role(role)
	if c.Role != entity.RoleSuperAdmin && c.Role != entity.RoleSubAdmin {
		return nil, fmt.Errorf("token has unknown role %q", role)
	}
	c.SubAdminId, _ = pc[claimSubAdminId].(string)

	switch perms := pc[claimPermissions].(type) {
	case []interface{}:
		for _, p := range perms {
			if s, ok := p.(string); ok {
				c.Permissions = append(c.Permissions, entity.Permission(s))
			}
		}
	case []string:
		for _, s := range perms {
			c.Permissions = append(c.Permissions, entity.Permission(s))
		}
	}
	return c, nil
}

// NewToken signs c with an expiry ttl from now.
func NewToken(jwtAuth *jwtauth.JWTAuth, ttl time.Duration, c *Claims) (string, error) {
	perms := make([]string, 0, len(c.Permissions))
	for _, p := range c.Permissions {
		perms = append(perms, string(p))
	}
	claims := map[string]interface{}{
		"sub":            c.Subject,
		"exp":            time.Now().Add(ttl).Unix(),
		claimRole:        string(c.Role),
		claimPermissions: perms,
	}
	if c.SubAdminId != "" {
		claims[claimSubAdminId] = c.SubAdminId
	}
	_, ts, err := jwtAuth.Encode(claims)
	if err != nil {
		return ts, err
	}
	return ts, nil
}
