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

// SubjectRequest captures subject fields for create and update.
type SubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// SubjectHandler handles the admin subject endpoints.
type SubjectHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(s *store.Store, validate *validator.Validate) *SubjectHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectHandler{store: s, validate: validate}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Subjects(), nil)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body handler.SubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /admin/subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.store.AddSubject(c.Request.Context(), models.Subject{Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body handler.SubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /admin/subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	id := c.Param("id")
	if h.store.SubjectByID(id) == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "subject not found"))
		return
	}
	subject := models.Subject{ID: id, Name: req.Name}
	if err := h.store.UpdateSubject(c.Request.Context(), subject); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary Delete subject
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 204
// @Router /admin/subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
