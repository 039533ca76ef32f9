package model

// Role is the authenticated identity class of a clinic user. It is a closed
// enumeration: anything outside the known set parses to RoleUnknown, which
// holds no capabilities at all.
type Role string

const (
	RoleDoctor    Role = "doctor"
	RoleClinician Role = "clinician"
	RoleFrontDesk Role = "front_desk"
	RolePetOwner  Role = "pet_owner"
	RoleUnknown   Role = "unknown"
)

// ParseRole maps a stored or token-borne role string onto the enumeration.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleDoctor, RoleClinician, RoleFrontDesk, RolePetOwner:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// Valid reports whether the role is one of the known clinic roles.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleClinician || r == RoleFrontDesk || r == RolePetOwner
}

func (r Role) String() string {
	return string(r)
}
