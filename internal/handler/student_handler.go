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

// StudentRequest captures student fields for create and update.
type StudentRequest struct {
	Name           string        `json:"name" validate:"required"`
	Gender         models.Gender `json:"gender" validate:"required"`
	ParentWhatsapp string        `json:"parentWhatsapp" validate:"required"`
	TeacherIDs     []string      `json:"teacherIds"`
}

// StudentHandler handles the admin student endpoints.
type StudentHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(s *store.Store, validate *validator.Validate) *StudentHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &StudentHandler{store: s, validate: validate}
}

func (h *StudentHandler) bind(c *gin.Context) (*StudentRequest, bool) {
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return nil, false
	}
	if !req.Gender.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown gender"))
		return nil, false
	}
	return &req, true
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Students(), nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body handler.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /admin/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	student, err := h.store.AddStudent(c.Request.Context(), models.Student{
		Name:           req.Name,
		Gender:         req.Gender,
		ParentWhatsapp: req.ParentWhatsapp,
		TeacherIDs:     req.TeacherIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body handler.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if h.store.StudentByID(id) == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "student not found"))
		return
	}
	student := models.Student{
		ID:             id,
		Name:           req.Name,
		Gender:         req.Gender,
		ParentWhatsapp: req.ParentWhatsapp,
		TeacherIDs:     req.TeacherIDs,
	}
	if err := h.store.UpdateStudent(c.Request.Context(), student); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Router /admin/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
