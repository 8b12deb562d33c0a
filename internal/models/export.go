package models

import "time"

// ExportFormat selects the rendered file type for a report-log export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportFormatCSV, ExportFormatPDF, ExportFormatXLSX:
		return true
	}
	return false
}

// ExportStatus is the lifecycle state of an export job.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportJob tracks one asynchronous report-log export. Jobs live in memory
// only; restarting the server forgets them, the rendered files remain on
// disk until swept.
type ExportJob struct {
	ID          string       `json:"id"`
	Format      ExportFormat `json:"format"`
	Status      ExportStatus `json:"status"`
	RequestedBy string       `json:"requestedBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	Error       string       `json:"error,omitempty"`
}
