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

// ClassroomRequest captures classroom fields for create and update.
type ClassroomRequest struct {
	Name       string   `json:"name" validate:"required"`
	StudentIDs []string `json:"studentIds"`
}

// ClassroomHandler handles the admin classroom endpoints.
type ClassroomHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewClassroomHandler constructs a classroom handler.
func NewClassroomHandler(s *store.Store, validate *validator.Validate) *ClassroomHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ClassroomHandler{store: s, validate: validate}
}

func (h *ClassroomHandler) bind(c *gin.Context) (*ClassroomRequest, bool) {
	var req ClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return nil, false
	}
	return &req, true
}

// List godoc
// @Summary List classrooms
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Classrooms(), nil)
}

// Create godoc
// @Summary Create classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body handler.ClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /admin/classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	classroom, err := h.store.AddClassroom(c.Request.Context(), models.Classroom{
		Name:       req.Name,
		StudentIDs: req.StudentIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// Update godoc
// @Summary Update classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body handler.ClassroomRequest true "Classroom payload"
// @Success 200 {object} response.Envelope
// @Router /admin/classrooms/{id} [put]
func (h *ClassroomHandler) Update(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	classroom := models.Classroom{ID: c.Param("id"), Name: req.Name, StudentIDs: req.StudentIDs}
	if err := h.store.UpdateClassroom(c.Request.Context(), classroom); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Delete godoc
// @Summary Delete classroom
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 204
// @Router /admin/classrooms/{id} [delete]
func (h *ClassroomHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteClassroom(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
