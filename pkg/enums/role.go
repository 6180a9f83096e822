package enums

import "fmt"

// Role classifies an identity and determines which portal it may reach.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStaff       Role = "staff"
	RoleVolunteer   Role = "volunteer"
	RoleBeneficiary Role = "beneficiary"
)

var validRoles = []Role{
	RoleAdmin,
	RoleStaff,
	RoleVolunteer,
	RoleBeneficiary,
}

// Roles returns the closed set of known roles.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable label for the role. Unknown values
// fall back to a generic label instead of failing.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleStaff:
		return "Staff Member"
	case RoleVolunteer:
		return "Volunteer"
	case RoleBeneficiary:
		return "Beneficiary"
	}
	return "Member"
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
