package account

import (
	"strings"
)

// Role constants as issued by the marketplace API.
const (
	RoleSuperAdmin   = "SUPER_ADMIN"
	RoleAcademyAdmin = "ACADEMY_ADMIN"
	RoleTeacher      = "TEACHER"
	RoleStudent      = "STUDENT"
)

// ValidRoles contains all roles the frontend knows how to route.
var ValidRoles = []string{RoleSuperAdmin, RoleAcademyAdmin, RoleTeacher, RoleStudent}

// User is the authenticated visitor's profile as returned by /user/me.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	ProfilePhoto string
	Role         string
}

// FullName returns "First Last" with empty parts dropped, falling back to the email.
// INVARIANT: User fields are not mutated
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// NormalizeRole upper-cases a role and maps the common aliases the API has used.
// PRE: none
// POST: Returns one of ValidRoles, or the upper-cased input when unknown
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	r = strings.ReplaceAll(r, "-", "_")
	switch r {
	case "SUPERADMIN", "ADMIN":
		return RoleSuperAdmin
	case "ACADEMYADMIN", "ACADEMY":
		return RoleAcademyAdmin
	case "INSTRUCTOR":
		return RoleTeacher
	case "USER", "MEMBER":
		return RoleStudent
	}
	return r
}

// IsValidRole reports whether role (after normalisation) is known.
func IsValidRole(role string) bool {
	r := NormalizeRole(role)
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}
