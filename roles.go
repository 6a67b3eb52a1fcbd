package authkit

// UserRole is the user's role
type UserRole = string

const (
	// RoleCashier can operate the register (process sales)
	RoleCashier UserRole = "cashier"
	// RoleManager can additionally manage products and stock
	RoleManager UserRole = "manager"
	// RoleAdmin can additionally manage users and settings
	RoleAdmin UserRole = "admin"
)

type roleLevel int

func levelFor(r UserRole) (roleLevel, bool) {
	switch r {
	case RoleCashier:
		return 0, true
	case RoleManager:
		return 1, true
	case RoleAdmin:
		return 2, true
	default:
		return -1, false
	}
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	_, ok := levelFor(r)
	return ok
}

// RoleIsAtLeast checks if role meets the minimum required level. Unknown
// roles never satisfy any minimum.
func RoleIsAtLeast(r, minRole UserRole) bool {
	current, ok := levelFor(r)
	if !ok {
		return false
	}

	min, ok := levelFor(minRole)
	if !ok {
		return false
	}

	return current >= min
}

// CanProcessSales reports whether the role can operate the register
func CanProcessSales(r UserRole) bool {
	return IsValidRole(r)
}

// CanManageProducts reports whether the role can create or edit products
// and stock levels
func CanManageProducts(r UserRole) bool {
	return RoleIsAtLeast(r, RoleManager)
}

// CanManageUsers reports whether the role can administer user accounts
func CanManageUsers(r UserRole) bool {
	return RoleIsAtLeast(r, RoleAdmin)
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{RoleCashier, RoleManager, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
