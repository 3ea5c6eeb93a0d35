// internal/repository/repository.go

// Package repository owns every SQL statement the worker issues. Row
// validation happens here: the analysis components receive fully-typed
// records and never see raw row data.
package repository

import (
	"context"
	"database/sql"

	"student-report-worker/internal/models"
)

// Repository is the relational collaborator the pipeline consumes. Read
// methods return nil (not an empty slice) when zero rows match, which the
// analysis layer turns into null report sections.
type Repository interface {
	AllAssessments(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error)
	PriorAssessments(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error)
	PriorAssessmentsWithQuestionnaire(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error)
	Attendance(ctx context.Context, studentID int64, semesterID *int64) (*models.AttendanceSummary, error)
	UpdateJobStatus(ctx context.Context, status models.JobStatus, outputKey string) error
}

// Postgres implements Repository on a shared *sql.DB. Reconnection of a
// broken connection is the pool's job; no state is kept here.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Repository = (*Postgres)(nil)
