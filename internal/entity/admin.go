package entity

import "time"

type Role string

const (
	RoleSuperAdmin Role = "admin"
	RoleSubAdmin   Role = "subadmin"
)

type Permission string

const (
	PermManageOrders     Permission = "manageOrders"
	PermManagePOS        Permission = "managePOS"
	PermViewPOSAnalytics Permission = "viewPOSAnalytics"
	PermViewStatistics   Permission = "viewStatistics"
	PermManageShipping   Permission = "manageShipping"
	PermManageProducts   Permission = "manageProducts"
	PermManageChat       Permission = "manageChat"
)

// AllPermissions lists every permission a sub-admin can be granted.
var AllPermissions = []Permission{
	PermManageOrders,
	PermManagePOS,
	PermViewPOSAnalytics,
	PermViewStatistics,
	PermManageShipping,
	PermManageProducts,
	PermManageChat,
}

// Permissions is the set of flags granted to a sub-admin.
type Permissions map[Permission]bool

func (p Permissions) Has(perm Permission) bool {
	return p[perm]
}

// Granted returns the enabled permissions in a stable order.
func (p Permissions) Granted() []Permission {
	var out []Permission
	for _, perm := range AllPermissions {
		if p[perm] {
			out = append(out, perm)
		}
	}
	return out
}

// SubAdmin is a restricted dashboard account managed by the super admin.
type SubAdmin struct {
	Id           string      `json:"id"`
	Name         string      `json:"name" valid:"required"`
	Email        string      `json:"email" valid:"required,email"`
	PasswordHash string      `json:"passwordHash" valid:"-"`
	Permissions  Permissions `json:"permissions" valid:"-"`
	CreatedAt    time.Time   `json:"createdAt" valid:"-"`
}
