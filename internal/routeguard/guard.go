// Package routeguard centralizes every role-keyed access decision. A single
// total function maps (identity, resolution state, required role) to one of
// four outcomes, which the HTTP layer translates uniformly.
package routeguard

import "github.com/taqyim-dev/taqyim-api/internal/models"

// Decision is the outcome of an access check.
type Decision int

const (
	// ShowLoading means identity resolution is still in progress and the
	// caller should wait rather than be redirected.
	ShowLoading Decision = iota
	// RedirectLogin means no authenticated identity exists.
	RedirectLogin
	// RedirectRoleHome means the identity is authenticated but its role
	// does not match the target route.
	RedirectRoleHome
	// Allow grants access.
	Allow
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show-loading"
	case RedirectLogin:
		return "redirect-to-login"
	case RedirectRoleHome:
		return "redirect-to-role-home"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decide maps the three inputs to exactly one outcome. identity is nil for
// unauthenticated sessions; resolving is true while the identity lookup is
// still outstanding.
func Decide(identity *models.User, resolving bool, required models.UserRole) Decision {
	if resolving {
		return ShowLoading
	}
	if identity == nil {
		return RedirectLogin
	}
	if identity.Role != required {
		return RedirectRoleHome
	}
	return Allow
}

// Home returns the landing path for a role. Unknown roles land on login.
func Home(identity *models.User) string {
	if identity == nil {
		return "/auth"
	}
	switch identity.Role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleTeacher:
		return "/teacher"
	default:
		return "/auth"
	}
}
