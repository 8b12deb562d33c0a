package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taqyim-dev/taqyim-api/internal/identity"
	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

type profileResolver interface {
	UserByID(id string) *models.User
}

// AuthHandler wires HTTP endpoints to the identity service.
type AuthHandler struct {
	ids      *identity.Service
	profiles profileResolver
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(ids *identity.Service, profiles profileResolver) *AuthHandler {
	return &AuthHandler{ids: ids, profiles: profiles}
}

// Login godoc
// @Summary Sign in
// @Description Authenticate by email and password; returns the token and the resolved profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	token, expiresAt, claims, err := h.ids.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	issuedAt := claims.IssuedAt.Time
	res := models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(expiresAt.Sub(issuedAt).Seconds()),
		IssuedAt:    issuedAt,
		User:        h.profiles.UserByID(claims.CredentialID),
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Sign out
// @Description Stateless sign-out; the client discards its token
// @Tags Authentication
// @Produce json
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	response.NoContent(c)
}

// Me godoc
// @Summary Current identity
// @Description Returns the profile behind the presented token; null data for an orphaned credential
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// A valid token whose profile was deleted resolves to no identity,
	// not an error.
	response.JSON(c, http.StatusOK, h.profiles.UserByID(claims.CredentialID), nil)
}
