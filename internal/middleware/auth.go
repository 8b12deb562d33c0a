package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taqyim-dev/taqyim-api/internal/identity"
	"github.com/taqyim-dev/taqyim-api/internal/models"
	"github.com/taqyim-dev/taqyim-api/internal/routeguard"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

// ContextClaimsKey is the gin context key storing JWT claims.
const ContextClaimsKey = "authClaims"

// ContextUserKey is the gin context key storing the resolved profile.
const ContextUserKey = "currentUser"

// ProfileSource is the slice of the domain store the auth layer needs.
type ProfileSource interface {
	UserByID(id string) *models.User
	Ready() bool
}

// Authenticate validates a bearer token when present and resolves the
// profile behind its credential. A request without a token continues
// unauthenticated; the role guard turns that into the proper outcome. An
// orphaned credential (valid token, deleted profile) resolves to no
// identity rather than an error.
func Authenticate(ids *identity.Service, profiles ProfileSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := ids.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		if profile := profiles.UserByID(claims.CredentialID); profile != nil {
			c.Set(ContextUserKey, profile)
		}
		c.Next()
	}
}

// RequireRole translates the access decision for the resolved identity into
// the HTTP outcome: 503 while the store is still initializing, 401 without
// an identity, 403 with the role home for a role mismatch.
func RequireRole(profiles ProfileSource, required models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := profileFromContext(c)

		switch routeguard.Decide(profile, !profiles.Ready(), required) {
		case routeguard.ShowLoading:
			response.Error(c, appErrors.ErrNotReady)
			c.Abort()
		case routeguard.RedirectLogin:
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
		case routeguard.RedirectRoleHome:
			appErr := appErrors.Clone(appErrors.ErrForbidden, "")
			c.JSON(appErr.Status, response.Envelope{
				Error: appErr,
				Meta:  map[string]interface{}{"redirect": routeguard.Home(profile)},
			})
			c.Abort()
		case routeguard.Allow:
			c.Next()
		}
	}
}

func profileFromContext(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	profile, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return profile
}
