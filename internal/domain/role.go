package domain

// Role is the authorization attribute of a user.
type Role string

const (
	RoleUser           Role = "user"
	RoleSalesExecutive Role = "sales_executive"
	RoleAdmin          Role = "admin"
)

// ValidRole reports whether r is one of the fixed role values.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleSalesExecutive, RoleAdmin:
		return true
	}
	return false
}

// RoleSet is an immutable set of roles used as an authorization policy.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether the role is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// ManagerRoles returns the set of roles allowed to create, edit and delete
// products. Whether admins are included is a deployment decision
// (ADMIN_MANAGES_PRODUCTS); sales executives always are.
func ManagerRoles(includeAdmin bool) RoleSet {
	if includeAdmin {
		return NewRoleSet(RoleSalesExecutive, RoleAdmin)
	}
	return NewRoleSet(RoleSalesExecutive)
}

// CanManage is the authorization predicate for product mutations: the user
// must be an active account holding one of the manager roles.
func (s RoleSet) CanManage(u User) bool {
	return u.IsActive && s.Contains(u.Role)
}
