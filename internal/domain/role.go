package domain

// Role is the closed set of account roles.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleDonor, RoleHospital, RoleAdmin:
		return true
	}
	return false
}
