package identity

// Role is the access level of a platform user
type Role string

const (
	RoleAdmin      Role = "admin"      // platform operator, sees every partner
	RoleManager    Role = "manager"    // runs a partner account
	RoleCashier    Role = "cashier"    // POS operator
	RoleTechnician Role = "technician" // service center staff
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleTechnician:
		return true
	}
	return false
}

// rank orders roles for "at least" checks
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleCashier, RoleTechnician:
		return 1
	}
	return 0
}

// AtLeast reports whether r carries at least the privileges of other
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

// CanAssign reports whether a user with role r may grant role target
func (r Role) CanAssign(target Role) bool {
	if r == RoleAdmin {
		return target.IsValid()
	}
	if r == RoleManager {
		return target == RoleManager || target == RoleCashier || target == RoleTechnician
	}
	return false
}
