package models

import (
	"math"
	"testing"
)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		total     int
		processed int
		expected  float64
	}{
		{0, 0, 0},
		{100, 0, 0},
		{100, 50, 50},
		{100, 100, 100},
		{3, 1, 33.333333333333},
	}

	for _, test := range tests {
		job := HoursImportJob{TotalRows: test.total, ProcessedRows: test.processed}
		if got := job.CalculateProgress(); math.Abs(got-test.expected) > 1e-9 {
			t.Errorf("CalculateProgress() with %d/%d = %v, expected %v",
				test.processed, test.total, got, test.expected)
		}
	}
}

func TestToProgress(t *testing.T) {
	job := HoursImportJob{
		Status:        HoursImportJobStatusProcessing,
		TotalRows:     200,
		ProcessedRows: 100,
		UpdatedRows:   80,
		NotFoundRows:  15,
		FailedRows:    5,
	}

	progress := job.ToProgress()
	if progress.Status != HoursImportJobStatusProcessing {
		t.Errorf("Status = %v, expected processing", progress.Status)
	}
	if progress.Progress != 50 {
		t.Errorf("Progress = %v, expected 50", progress.Progress)
	}
	if progress.UpdatedRows != 80 || progress.NotFoundRows != 15 || progress.FailedRows != 5 {
		t.Errorf("counters not carried over: %+v", progress)
	}
}
