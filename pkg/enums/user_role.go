package enums

// UserRole describes what a staff account is allowed to do.
type UserRole string

const (
	// RoleAdmin manages accounts, pricing, and templates.
	RoleAdmin UserRole = "admin"
	// RoleManager runs day-to-day order operations.
	RoleManager UserRole = "manager"
	// RoleProduction works the grow room and reports lifecycle events.
	RoleProduction UserRole = "production"
)

var allUserRoles = []UserRole{RoleAdmin, RoleManager, RoleProduction}

func (r UserRole) IsValid() bool {
	for _, role := range allUserRoles {
		if r == role {
			return true
		}
	}
	return false
}
