package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	"github.com/taqyim-dev/taqyim-api/internal/store"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

// UpdateUserRequest captures mutable profile fields.
type UpdateUserRequest struct {
	Name      string          `json:"name" validate:"required"`
	Email     string          `json:"email" validate:"required,email"`
	Role      models.UserRole `json:"role" validate:"required"`
	SubjectID string          `json:"subjectId"`
}

// UserHandler handles the admin user endpoints.
type UserHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewUserHandler constructs a user handler.
func NewUserHandler(s *store.Store, validate *validator.Validate) *UserHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &UserHandler{store: s, validate: validate}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Users(), nil)
}

// Create godoc
// @Summary Create user
// @Description Creates the login credential and the profile record; a duplicate email yields 409
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body store.AddUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req store.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if !req.Role.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
		return
	}

	user, err := h.store.AddUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body handler.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Router /admin/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := c.Param("id")
	if h.store.UserByID(id) == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "user not found"))
		return
	}

	user := models.User{ID: id, Name: req.Name, Email: req.Email, Role: req.Role, SubjectID: req.SubjectID}
	if err := h.store.UpdateUser(c.Request.Context(), user); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Delete user
// @Description Removes the profile and detaches the teacher from students; the login credential is kept
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
