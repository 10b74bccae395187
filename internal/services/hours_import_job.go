package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"tirefinder/internal/hours"
	"tirefinder/pkg/models"
)

// ImportProgressNotifier receives progress updates for running import jobs.
// The websocket layer implements this to push updates to connected admins.
type ImportProgressNotifier interface {
	BroadcastImportProgress(progress models.HoursImportJobProgress)
}

// HoursImportJobService runs hours CSV imports as background jobs
type HoursImportJobService struct {
	db           *gorm.DB
	hoursService *hours.Service
	notifier     ImportProgressNotifier
	uploadDir    string
}

func NewHoursImportJobService(db *gorm.DB, store hours.ShopStore) *HoursImportJobService {
	uploadDir := "uploads/imports"
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Error().Err(err).Str("dir", uploadDir).Msg("failed to create upload directory")
	}

	return &HoursImportJobService{
		db:           db,
		hoursService: hours.NewService(store),
		uploadDir:    uploadDir,
	}
}

// SetNotifier attaches the progress notifier. Safe to leave unset,
// progress then remains available through polling only.
func (s *HoursImportJobService) SetNotifier(n ImportProgressNotifier) {
	s.notifier = n
}

// ImportSync runs an import inline and returns the outcome when it finishes
func (s *HoursImportJobService) ImportSync(ctx context.Context, r io.Reader) (*hours.ImportOutcome, error) {
	svc := *s.hoursService
	svc.OnRow = nil
	return svc.ImportFromTable(ctx, r)
}

// CreateHoursImportJob stores the uploaded CSV and starts a background import
func (s *HoursImportJobService) CreateHoursImportJob(ctx context.Context, userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.HoursImportJob, error) {
	fileName := fmt.Sprintf("%s_%s", uuid.New().String(), header.Filename)
	filePath := filepath.Join(s.uploadDir, fileName)

	outFile, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, file)
	if err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}

	totalRows, err := s.countCSVRows(filePath)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	job := &models.HoursImportJob{
		UserID:    userID,
		Status:    models.HoursImportJobStatusPending,
		FileName:  header.Filename,
		FilePath:  filePath,
		TotalRows: totalRows,
	}

	err = s.db.WithContext(ctx).Create(job).Error
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	go s.processHoursImportJob(job.ID)

	return job, nil
}

// GetJobProgress returns the progress of a job
func (s *HoursImportJobService) GetJobProgress(ctx context.Context, jobID uuid.UUID) (*models.HoursImportJobProgress, error) {
	var job models.HoursImportJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}

	progress := job.ToProgress()

	switch job.Status {
	case models.HoursImportJobStatusPending:
		progress.Message = "Waiting for processing..."
	case models.HoursImportJobStatusProcessing:
		progress.Message = fmt.Sprintf("Processing %d of %d rows...", job.ProcessedRows, job.TotalRows)
	case models.HoursImportJobStatusCompleted:
		progress.Message = fmt.Sprintf("Done. %d updated, %d not found, %d failed", job.UpdatedRows, job.NotFoundRows, job.FailedRows)
	case models.HoursImportJobStatusFailed:
		progress.Message = "Import failed"
	}

	if job.ErrorDetails != nil && *job.ErrorDetails != "" {
		var errorDetails []string
		if err := json.Unmarshal([]byte(*job.ErrorDetails), &errorDetails); err == nil {
			progress.ErrorDetails = errorDetails
		}
	}

	return &progress, nil
}

// ListJobs returns import jobs, newest first, optionally filtered by status
func (s *HoursImportJobService) ListJobs(ctx context.Context, status string, limit, offset int) (*models.PaginationResult[models.HoursImportJob], error) {
	var jobs []models.HoursImportJob
	var total int64

	query := s.db.WithContext(ctx).Model(&models.HoursImportJob{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&jobs).Error
	if err != nil {
		return nil, err
	}

	return &models.PaginationResult[models.HoursImportJob]{
		Data:       jobs,
		Total:      total,
		Page:       offset/limit + 1,
		PerPage:    limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *HoursImportJobService) countCSVRows(filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Malformed rows still occupy one line each and the importer counts
	// them as failed, so they count here too.
	rows := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return 0, err
			}
		}
		rows++
	}

	// Subtract the header row
	if rows > 0 {
		return rows - 1, nil
	}
	return 0, nil
}

func (s *HoursImportJobService) processHoursImportJob(jobID uuid.UUID) {
	ctx := context.Background()

	var job models.HoursImportJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("failed to find import job")
		return
	}

	now := time.Now()
	job.Status = models.HoursImportJobStatusProcessing
	job.StartedAt = &now
	s.db.WithContext(ctx).Save(&job)
	s.broadcast(&job)

	outcome, err := s.runImport(ctx, &job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = models.HoursImportJobStatusFailed
		errorDetails, _ := json.Marshal([]string{err.Error()})
		errorString := string(errorDetails)
		job.ErrorDetails = &errorString
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("import job failed")
	} else {
		job.Status = models.HoursImportJobStatusCompleted
		job.TotalRows = outcome.Total
		job.ProcessedRows = outcome.Total
		job.UpdatedRows = outcome.Updated
		job.NotFoundRows = outcome.NotFound
		job.FailedRows = outcome.Failed
		job.SuccessRate = outcome.SuccessRate
		log.Info().
			Str("job_id", jobID.String()).
			Int("total", outcome.Total).
			Int("updated", outcome.Updated).
			Int("not_found", outcome.NotFound).
			Int("failed", outcome.Failed).
			Msg("import job completed")
	}

	s.db.WithContext(ctx).Save(&job)
	s.broadcast(&job)

	os.Remove(job.FilePath)
}

func (s *HoursImportJobService) runImport(ctx context.Context, job *models.HoursImportJob) (*hours.ImportOutcome, error) {
	file, err := os.Open(job.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var updated, notFound, failed int
	var failures []string

	svc := *s.hoursService
	svc.OnRow = func(processed int, res hours.RowResult) {
		switch res.Status {
		case hours.RowUpdated:
			updated++
		case hours.RowNotFound:
			notFound++
		case hours.RowFailed:
			failed++
			if len(failures) < 50 {
				failures = append(failures, res.Reason)
			}
		}

		if processed%100 == 0 || processed == job.TotalRows {
			s.db.WithContext(ctx).Model(job).Updates(map[string]interface{}{
				"processed_rows": processed,
				"updated_rows":   updated,
				"not_found_rows": notFound,
				"failed_rows":    failed,
			})
			job.ProcessedRows = processed
			job.UpdatedRows = updated
			job.NotFoundRows = notFound
			job.FailedRows = failed
			s.broadcast(job)
		}
	}

	outcome, err := svc.ImportFromTable(ctx, file)
	if err != nil {
		return nil, err
	}

	if len(failures) > 0 {
		errorDetails, _ := json.Marshal(failures)
		errorString := string(errorDetails)
		job.ErrorDetails = &errorString
	}

	return outcome, nil
}

func (s *HoursImportJobService) broadcast(job *models.HoursImportJob) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastImportProgress(job.ToProgress())
}
