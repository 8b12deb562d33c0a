package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taqyim-dev/taqyim-api/internal/store"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

// TeacherHandler serves the teacher-facing roster endpoints.
type TeacherHandler struct {
	store *store.Store
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(s *store.Store) *TeacherHandler {
	return &TeacherHandler{store: s}
}

// Students godoc
// @Summary List the current teacher's students
// @Tags Teacher
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/students [get]
func (h *TeacherHandler) Students(c *gin.Context) {
	teacher := userFromContext(c)
	if teacher == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.store.StudentsForTeacher(teacher.ID), nil)
}

// Subject godoc
// @Summary The current teacher's subject
// @Tags Teacher
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/subject [get]
func (h *TeacherHandler) Subject(c *gin.Context) {
	teacher := userFromContext(c)
	if teacher == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	subject := h.store.SubjectByID(teacher.SubjectID)
	if subject == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "subject not found"))
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}
