package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/storage"
)

type fakeReportSource struct {
	reports []models.Report
}

func (f *fakeReportSource) Reports() []models.Report {
	return f.reports
}

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSigner("test-secret", time.Hour)

	source := &fakeReportSource{reports: []models.Report{{
		StudentName: "سارة",
		TeacherName: "أ. خالد",
		SubjectName: "لغتي",
		Evaluation:  models.EvaluationExcellent,
		CreatedAt:   time.Now().UTC(),
	}}}

	svc := NewExportService(source, files, signer, ExportConfig{APIPrefix: "/api/v1", Workers: 1}, zap.NewNop())
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func waitForJob(t *testing.T, svc *ExportService, jobID string) models.ExportJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, job := range svc.List() {
			if job.ID == jobID && job.Status != models.ExportStatusPending {
				return job
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never finished", jobID)
	return models.ExportJob{}
}

func TestExportServiceRendersCSV(t *testing.T) {
	svc := newExportFixture(t)

	job, err := svc.Enqueue("admin-1", models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusPending, job.Status)

	finished := waitForJob(t, svc, job.ID)
	assert.Equal(t, models.ExportStatusCompleted, finished.Status)
	assert.Contains(t, finished.DownloadURL, "/api/v1/export/")
	require.NotNil(t, finished.ExpiresAt)

	token := finished.DownloadURL[len("/api/v1/export/"):]
	file, path, err := svc.OpenDownload(token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	assert.Contains(t, path, ".csv")
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Enqueue("admin-1", models.ExportFormat("docx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRejectsBadToken(t *testing.T) {
	svc := newExportFixture(t)

	_, _, err := svc.OpenDownload("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
