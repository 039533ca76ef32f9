// Package rbac holds the static role-to-capability table for the clinic.
// The table is fixed at compile time: escalating a role takes a code change
// and a review, never a data change.
package rbac

import (
	"github.com/vetdesk/clinic-api/internal/model"
)

// Capability is a named permission checked against a role.
type Capability string

const (
	CapEditProfile         Capability = "edit_profile"
	CapAddVaccination      Capability = "add_vaccination"
	CapAddRecord           Capability = "add_record"
	CapUpdateRecord        Capability = "update_record"
	CapViewContactInfo     Capability = "view_contact_info"
	CapAlwaysEditDiagnosis Capability = "always_edit_diagnosis"
)

// capabilities is the full permission table. Only doctors carry
// CapAlwaysEditDiagnosis; that flag is the sole unconditional bypass of
// the diagnosis lock.
var capabilities = map[model.Role]map[Capability]bool{
	model.RoleDoctor: {
		CapEditProfile:         true,
		CapAddVaccination:      true,
		CapAddRecord:           true,
		CapUpdateRecord:        true,
		CapViewContactInfo:     true,
		CapAlwaysEditDiagnosis: true,
	},
	model.RoleClinician: {
		CapEditProfile:         true,
		CapAddVaccination:      true,
		CapAddRecord:           true,
		CapUpdateRecord:        true,
		CapViewContactInfo:     true,
		CapAlwaysEditDiagnosis: false,
	},
	model.RoleFrontDesk: {
		CapEditProfile:         true,
		CapAddVaccination:      false,
		CapAddRecord:           false,
		CapUpdateRecord:        false,
		CapViewContactInfo:     true,
		CapAlwaysEditDiagnosis: false,
	},
	model.RolePetOwner: {
		CapEditProfile:         false,
		CapAddVaccination:      false,
		CapAddRecord:           false,
		CapUpdateRecord:        false,
		CapViewContactInfo:     false,
		CapAlwaysEditDiagnosis: false,
	},
}

// Can reports whether the role holds the capability. Unknown roles and
// unknown capabilities are denied.
func Can(role model.Role, cap Capability) bool {
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	return caps[cap]
}

// Capabilities returns a copy of the role's capability set, for
// introspection endpoints. Unknown roles get an empty set.
func Capabilities(role model.Role) map[Capability]bool {
	caps, ok := capabilities[role]
	if !ok {
		return map[Capability]bool{}
	}
	out := make(map[Capability]bool, len(caps))
	for c, v := range caps {
		out[c] = v
	}
	return out
}
