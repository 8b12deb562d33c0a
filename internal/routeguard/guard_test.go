package routeguard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taqyim-dev/taqyim-api/internal/models"
)

// The decision function must be total and deterministic: every combination
// of identity, resolving flag and required role maps to exactly one outcome.
func TestDecideFullCrossProduct(t *testing.T) {
	admin := &models.User{ID: "u1", Role: models.RoleAdmin}
	teacher := &models.User{ID: "u2", Role: models.RoleTeacher}

	identities := map[string]*models.User{
		"none":    nil,
		"admin":   admin,
		"teacher": teacher,
	}
	requiredRoles := []models.UserRole{models.RoleAdmin, models.RoleTeacher}

	tests := []struct {
		identity  string
		resolving bool
		required  models.UserRole
		want      Decision
	}{
		{"none", true, models.RoleAdmin, ShowLoading},
		{"none", true, models.RoleTeacher, ShowLoading},
		{"admin", true, models.RoleAdmin, ShowLoading},
		{"admin", true, models.RoleTeacher, ShowLoading},
		{"teacher", true, models.RoleAdmin, ShowLoading},
		{"teacher", true, models.RoleTeacher, ShowLoading},
		{"none", false, models.RoleAdmin, RedirectLogin},
		{"none", false, models.RoleTeacher, RedirectLogin},
		{"admin", false, models.RoleAdmin, Allow},
		{"admin", false, models.RoleTeacher, RedirectRoleHome},
		{"teacher", false, models.RoleAdmin, RedirectRoleHome},
		{"teacher", false, models.RoleTeacher, Allow},
	}

	// Sanity: the table covers the whole cross-product.
	assert.Len(t, tests, len(identities)*2*len(requiredRoles))

	for _, tc := range tests {
		t.Run(tc.identity+"/"+map[bool]string{true: "resolving", false: "resolved"}[tc.resolving]+"/"+string(tc.required), func(t *testing.T) {
			got := Decide(identities[tc.identity], tc.resolving, tc.required)
			assert.Equal(t, tc.want, got)
			// Deterministic: a second call yields the same outcome.
			assert.Equal(t, got, Decide(identities[tc.identity], tc.resolving, tc.required))
		})
	}
}

func TestHome(t *testing.T) {
	assert.Equal(t, "/auth", Home(nil))
	assert.Equal(t, "/admin", Home(&models.User{Role: models.RoleAdmin}))
	assert.Equal(t, "/teacher", Home(&models.User{Role: models.RoleTeacher}))
	assert.Equal(t, "/auth", Home(&models.User{Role: "intruder"}))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "show-loading", ShowLoading.String())
	assert.Equal(t, "redirect-to-login", RedirectLogin.String())
	assert.Equal(t, "redirect-to-role-home", RedirectRoleHome.String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unknown", Decision(99).String())
}
