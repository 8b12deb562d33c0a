package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/export"
	"github.com/taqyim-dev/taqyim-api/pkg/jobs"
	"github.com/taqyim-dev/taqyim-api/pkg/storage"
)

var reportColumns = []string{"Student", "Teacher", "Subject", "Evaluation", "Parent WhatsApp", "Created At"}

type reportSource interface {
	Reports() []models.Report
}

// ExportConfig tunes the export worker.
type ExportConfig struct {
	APIPrefix  string
	Workers    int
	MaxRetries int
}

// ExportService renders the report log into downloadable files. Jobs run on
// an in-memory queue; job bookkeeping is in memory too and does not survive
// a restart.
type ExportService struct {
	reports reportSource
	files   *storage.FileStore
	signer  *storage.Signer
	logger  *zap.Logger
	cfg     ExportConfig
	queue   *jobs.Queue

	mu      sync.Mutex
	jobByID map[string]*models.ExportJob
}

// NewExportService constructs an export service.
func NewExportService(reports reportSource, files *storage.FileStore, signer *storage.Signer, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		reports: reports,
		files:   files,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		jobByID: make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("report-exports", s.process, jobs.Options{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue registers a new export job and submits it for rendering.
func (s *ExportService) Enqueue(requestedBy string, format models.ExportFormat) (*models.ExportJob, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Format:      format,
		Status:      models.ExportStatusPending,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobByID[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Submit(jobs.Task{ID: job.ID, Kind: "report-export"}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	snapshot := *job
	return &snapshot, nil
}

// List returns every known job, newest first.
func (s *ExportService) List() []models.ExportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExportJob, 0, len(s.jobByID))
	for _, job := range s.jobByID {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// OpenDownload validates a signed token and opens the rendered file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, path, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.files.Open(path)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, path, nil
}

func (s *ExportService) process(ctx context.Context, task jobs.Task) error {
	s.mu.Lock()
	job, ok := s.jobByID[task.ID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	format := job.Format
	s.mu.Unlock()

	table := buildReportTable(s.reports.Reports())

	var payload []byte
	var err error
	switch format {
	case models.ExportFormatCSV:
		payload, err = export.CSV(table)
	case models.ExportFormatPDF:
		payload, err = export.PDF(table)
	case models.ExportFormatXLSX:
		payload, err = export.XLSX(table)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.fail(task.ID, err)
		return err
	}

	name := fmt.Sprintf("reports_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	path, err := s.files.Save(name, payload)
	if err != nil {
		s.fail(task.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Sign(task.ID, path)
	if err != nil {
		s.fail(task.ID, err)
		return err
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.jobByID[task.ID]; ok {
		job.Status = models.ExportStatusCompleted
		job.CompletedAt = &now
		job.DownloadURL = fmt.Sprintf("%s/export/%s", prefix, token)
		job.ExpiresAt = &expiresAt
		job.Error = ""
	}
	s.mu.Unlock()

	s.logger.Info("export rendered",
		zap.String("job_id", task.ID), zap.String("format", string(format)), zap.String("file", path))
	return nil
}

func (s *ExportService) fail(jobID string, err error) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobByID[jobID]; ok {
		job.Status = models.ExportStatusFailed
		job.CompletedAt = &now
		job.Error = err.Error()
	}
}

func buildReportTable(reports []models.Report) export.Table {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.StudentName,
			r.TeacherName,
			r.SubjectName,
			string(r.Evaluation),
			r.ParentWhatsapp,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Table{Title: "Reports", Columns: reportColumns, Rows: rows}
}
