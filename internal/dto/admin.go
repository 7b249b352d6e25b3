package dto

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

const minPasswordLength = 6

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
	Name  string      `json:"name"`
}

type SubAdminNew struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Permissions map[string]bool `json:"permissions"`
}

func (sn *SubAdminNew) Validate() error {
	if strings.TrimSpace(sn.Name) == "" {
		return gerr.Validation("name", "is required")
	}
	if !govalidator.IsEmail(strings.TrimSpace(sn.Email)) {
		return gerr.Validation("email", "is not a valid email")
	}
	if len(sn.Password) < minPasswordLength {
		return gerr.Validation("password", "must be at least %d characters", minPasswordLength)
	}
	return ConvertPermissions(sn.Permissions, nil)
}

type SubAdminUpdate struct {
	Name        *string         `json:"name"`
	Email       *string         `json:"email"`
	Password    *string         `json:"password"`
	Permissions map[string]bool `json:"permissions"`
}

func (su *SubAdminUpdate) Validate() error {
	if su.Name != nil && strings.TrimSpace(*su.Name) == "" {
		return gerr.Validation("name", "must not be empty")
	}
	if su.Email != nil && !govalidator.IsEmail(strings.TrimSpace(*su.Email)) {
		return gerr.Validation("email", "is not a valid email")
	}
	if su.Password != nil && len(*su.Password) < minPasswordLength {
		return gerr.Validation("password", "must be at least %d characters", minPasswordLength)
	}
	return ConvertPermissions(su.Permissions, nil)
}

// ConvertPermissions checks every name in in and, when out is not nil, copies
// the flags into it.
func ConvertPermissions(in map[string]bool, out entity.Permissions) error {
	for name, v := range in {
		known := false
		for _, p := range entity.AllPermissions {
			if string(p) == name {
				known = true
				break
			}
		}
		if !known {
			return gerr.Validation("permissions", "unknown permission %q", name)
		}
		if out != nil {
			out[entity.Permission(name)] = v
		}
	}
	return nil
}

type SubAdmin struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Permissions map[string]bool `json:"permissions"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ConvertEntitySubAdminToDto drops the password hash and lists every
// permission explicitly.
func ConvertEntitySubAdminToDto(sa *entity.SubAdmin) *SubAdmin {
	perms := make(map[string]bool, len(entity.AllPermissions))
	for _, p := range entity.AllPermissions {
		perms[string(p)] = sa.Permissions.Has(p)
	}
	return &SubAdmin{
		Id:          sa.Id,
		Name:        sa.Name,
		Email:       sa.Email,
		Permissions: perms,
		CreatedAt:   sa.CreatedAt,
	}
}

func ConvertEntitySubAdminsToDto(sas []entity.SubAdmin) []*SubAdmin {
	out := make([]*SubAdmin, 0, len(sas))
	for i := range sas {
		out = append(out, ConvertEntitySubAdminToDto(&sas[i]))
	}
	return out
}
