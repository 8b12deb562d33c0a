package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	"github.com/taqyim-dev/taqyim-api/internal/service"
	"github.com/taqyim-dev/taqyim-api/internal/store"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

// ExportRequest selects the rendered format for a report-log export.
type ExportRequest struct {
	Format models.ExportFormat `json:"format" binding:"required"`
}

// ReportHandler serves the admin report log and its exports. The exports
// service may be nil when exports are disabled.
type ReportHandler struct {
	store   *store.Store
	exports *service.ExportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(s *store.Store, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{store: s, exports: exports}
}

// List godoc
// @Summary List dispatched reports
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Reports(), nil)
}

// CreateExport godoc
// @Summary Queue a report-log export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body handler.ExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/reports/exports [post]
func (h *ReportHandler) CreateExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	requestedBy := ""
	if admin := userFromContext(c); admin != nil {
		requestedBy = admin.ID
	}

	job, err := h.exports.Enqueue(requestedBy, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ListExports godoc
// @Summary List export jobs
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/reports/exports [get]
func (h *ReportHandler) ListExports(c *gin.Context) {
	if h.exports == nil {
		response.JSON(c, http.StatusOK, []models.ExportJob{}, nil)
		return
	}
	response.JSON(c, http.StatusOK, h.exports.List(), nil)
}

// Download godoc
// @Summary Download a rendered export
// @Description The HMAC token authorizes the download; no session is needed
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	file, path, err := h.exports.OpenDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.FileAttachment(file.Name(), filepath.Base(path))
}
