package models

import (
	"time"

	"github.com/google/uuid"
)

type HoursImportJobStatus string

const (
	HoursImportJobStatusPending    HoursImportJobStatus = "pending"
	HoursImportJobStatusProcessing HoursImportJobStatus = "processing"
	HoursImportJobStatusCompleted  HoursImportJobStatus = "completed"
	HoursImportJobStatusFailed     HoursImportJobStatus = "failed"
)

// HoursImportJob represents one asynchronous bulk hours import run
type HoursImportJob struct {
	BaseModel
	UserID        uuid.UUID            `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"user_id"`
	Status        HoursImportJobStatus `gorm:"not null;default:'pending'" json:"status"`
	FileName      string               `gorm:"not null" json:"file_name"`
	FilePath      string               `gorm:"not null" json:"-"`
	TotalRows     int                  `gorm:"default:0" json:"total_rows"`
	ProcessedRows int                  `gorm:"default:0" json:"processed_rows"`
	UpdatedRows   int                  `gorm:"default:0" json:"updated_rows"`
	NotFoundRows  int                  `gorm:"default:0" json:"not_found_rows"`
	FailedRows    int                  `gorm:"default:0" json:"failed_rows"`
	SuccessRate   float64              `gorm:"default:0" json:"success_rate"`
	ErrorDetails  *string              `gorm:"type:jsonb" json:"error_details,omitempty"`
	StartedAt     *time.Time           `json:"started_at"`
	CompletedAt   *time.Time           `json:"completed_at"`
}

// HoursImportJobProgress represents the progress of a job as pushed to clients
type HoursImportJobProgress struct {
	JobID         uuid.UUID            `json:"job_id"`
	Status        HoursImportJobStatus `json:"status"`
	TotalRows     int                  `json:"total_rows"`
	ProcessedRows int                  `json:"processed_rows"`
	UpdatedRows   int                  `json:"updated_rows"`
	NotFoundRows  int                  `json:"not_found_rows"`
	FailedRows    int                  `json:"failed_rows"`
	Progress      float64              `json:"progress"` // 0-100
	Message       string               `json:"message"`
	ErrorDetails  []string             `json:"error_details,omitempty"`
}

// CalculateProgress returns the percentage of rows processed so far
func (job *HoursImportJob) CalculateProgress() float64 {
	if job.TotalRows == 0 {
		return 0
	}
	return float64(job.ProcessedRows) / float64(job.TotalRows) * 100
}

// ToProgress converts a job to its progress projection
func (job *HoursImportJob) ToProgress() HoursImportJobProgress {
	return HoursImportJobProgress{
		JobID:         job.ID,
		Status:        job.Status,
		TotalRows:     job.TotalRows,
		ProcessedRows: job.ProcessedRows,
		UpdatedRows:   job.UpdatedRows,
		NotFoundRows:  job.NotFoundRows,
		FailedRows:    job.FailedRows,
		Progress:      job.CalculateProgress(),
	}
}
