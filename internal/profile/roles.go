package profile

import "rentctl/internal/errs"

// Role is one classification an identity may hold.
type Role uint8

const (
	RoleTenant Role = 1 << iota
	RoleLandlord
	RoleUSCitizen
	RoleInternationalStudent
	RoleStudent
)

const citizenship = RoleUSCitizen | RoleInternationalStudent

var allRoles = []Role{RoleLandlord, RoleTenant, RoleUSCitizen, RoleInternationalStudent, RoleStudent}

func (r Role) String() string {
	switch r {
	case RoleTenant:
		return "Tenant"
	case RoleLandlord:
		return "Landlord"
	case RoleUSCitizen:
		return "US Citizen"
	case RoleInternationalStudent:
		return "International Student"
	case RoleStudent:
		return "Student"
	default:
		return "Unknown"
	}
}

var ErrAlreadyClassified = errs.New(errs.Precondition, "already registered as a US Citizen or International Student")

// RoleSet is the set of roles an identity holds. US citizen and international
// student are mutually exclusive, and international student implies student.
type RoleSet uint8

func (s RoleSet) Has(r Role) bool {
	return s&RoleSet(r) != 0
}

// Classified reports whether a citizenship role is held.
func (s RoleSet) Classified() bool {
	return s&RoleSet(citizenship) != 0
}

// Attach returns the set after adding r along with any role r implies.
// Attaching a citizenship role to a classified set fails; every other role
// attaches idempotently.
func (s RoleSet) Attach(r Role) (RoleSet, error) {
	switch r {
	case RoleUSCitizen:
		if s.Classified() {
			return s, ErrAlreadyClassified
		}
		return s | RoleSet(RoleUSCitizen), nil
	case RoleInternationalStudent:
		if s.Classified() {
			return s, ErrAlreadyClassified
		}
		return s | RoleSet(RoleInternationalStudent|RoleStudent), nil
	default:
		return s | RoleSet(r), nil
	}
}

// Added lists the roles in next that are not in s.
func (s RoleSet) Added(next RoleSet) []Role {
	var added []Role
	for _, r := range allRoles {
		if next.Has(r) && !s.Has(r) {
			added = append(added, r)
		}
	}
	return added
}

// Roles lists the held roles in display order.
func (s RoleSet) Roles() []Role {
	return RoleSet(0).Added(s)
}
