package users_enums

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "OWNER"
	ProjectRoleAdmin  ProjectRole = "ADMIN"
	ProjectRoleMember ProjectRole = "MEMBER"
	ProjectRoleViewer ProjectRole = "VIEWER"
)

// IsValid validates the ProjectRole
func (r ProjectRole) IsValid() bool {
	switch r {
	case ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleMember, ProjectRoleViewer:
		return true
	default:
		return false
	}
}

// Level maps a role onto the permission hierarchy. Unknown roles map
// to 0 and therefore never satisfy any requirement.
func (r ProjectRole) Level() int {
	switch r {
	case ProjectRoleOwner:
		return 4
	case ProjectRoleAdmin:
		return 3
	case ProjectRoleMember:
		return 2
	case ProjectRoleViewer:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether the role grants at least the required
// role's level.
func (r ProjectRole) Satisfies(required ProjectRole) bool {
	return r.Level() >= required.Level()
}
