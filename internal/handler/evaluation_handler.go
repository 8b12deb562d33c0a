package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taqyim-dev/taqyim-api/internal/evaluation"
	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

// RateRequest carries the chosen evaluation level.
type RateRequest struct {
	Evaluation models.Evaluation `json:"evaluation" binding:"required"`
}

// EvaluationHandler exposes the per-student evaluation workflow.
type EvaluationHandler struct {
	workflow *evaluation.Manager
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(workflow *evaluation.Manager) *EvaluationHandler {
	return &EvaluationHandler{workflow: workflow}
}

func (h *EvaluationHandler) teacher(c *gin.Context) (models.User, bool) {
	profile := userFromContext(c)
	if profile == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.User{}, false
	}
	return *profile, true
}

// Open godoc
// @Summary Open an evaluation visit
// @Description Starts (or restarts) the visit; any prior state for the pair is discarded
// @Tags Evaluation
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/students/{id}/evaluation [post]
func (h *EvaluationHandler) Open(c *gin.Context) {
	teacher, ok := h.teacher(c)
	if !ok {
		return
	}
	session, err := h.workflow.Open(teacher, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Get godoc
// @Summary Current visit state
// @Tags Evaluation
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /teacher/students/{id}/evaluation [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	teacher, ok := h.teacher(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.workflow.Get(teacher, c.Param("id")), nil)
}

// Rate godoc
// @Summary Pick an evaluation level
// @Description Replaces the pending level; locked once a message was generated
// @Tags Evaluation
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body handler.RateRequest true "Evaluation level"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teacher/students/{id}/evaluation/level [put]
func (h *EvaluationHandler) Rate(c *gin.Context) {
	teacher, ok := h.teacher(c)
	if !ok {
		return
	}
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.workflow.Rate(teacher, c.Param("id"), req.Evaluation)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Generate godoc
// @Summary Generate the parent message
// @Description Calls the generative-text service; on failure the visit stays retryable
// @Tags Evaluation
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teacher/students/{id}/evaluation/message [post]
func (h *EvaluationHandler) Generate(c *gin.Context) {
	teacher, ok := h.teacher(c)
	if !ok {
		return
	}
	session, err := h.workflow.Generate(c.Request.Context(), teacher, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Send godoc
// @Summary Dispatch the message
// @Description Appends the report and returns the WhatsApp deep link; terminal and safe to repeat
// @Tags Evaluation
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teacher/students/{id}/evaluation/send [post]
func (h *EvaluationHandler) Send(c *gin.Context) {
	teacher, ok := h.teacher(c)
	if !ok {
		return
	}
	session, err := h.workflow.Send(c.Request.Context(), teacher, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Close godoc
// @Summary Close the visit
// @Description Discards the visit state, mirroring navigation away
// @Tags Evaluation
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Router /teacher/students/{id}/evaluation [delete]
func (h *EvaluationHandler) Close(c *gin.Context) {
	teacher, ok := h.teacher(c)
	if !ok {
		return
	}
	h.workflow.Close(teacher, c.Param("id"))
	response.NoContent(c)
}
