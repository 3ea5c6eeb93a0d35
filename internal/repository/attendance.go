// internal/repository/attendance.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"student-report-worker/internal/models"
)

const attendanceQuery = `
	SELECT
		COUNT(*) AS total_sessions,
		SUM(CASE WHEN NOT ss.absent THEN 1 ELSE 0 END) AS present,
		SUM(CASE WHEN ss.absent THEN 1 ELSE 0 END) AS absent
	FROM stu_tracker.Session_students ss
	WHERE ss.student_id = $1
	GROUP BY ss.student_id`

const attendanceSemesterQuery = `
	SELECT
		COUNT(*) AS total_sessions,
		SUM(CASE WHEN NOT ss.absent THEN 1 ELSE 0 END) AS present,
		SUM(CASE WHEN ss.absent THEN 1 ELSE 0 END) AS absent
	FROM stu_tracker.Session_students ss
	LEFT JOIN stu_tracker.Sessions st ON st.id = ss.session_id
	WHERE ss.student_id = $1 AND st.semester_id = $2
	GROUP BY ss.student_id`

// Attendance summarizes the student's session attendance, optionally within
// one semester. Returns (nil, nil) when the student has no sessions at all:
// the GROUP BY yields no row, and downstream that means a null section, not
// a zero-filled one.
func (p *Postgres) Attendance(ctx context.Context, studentID int64, semesterID *int64) (*models.AttendanceSummary, error) {
	var row *sql.Row
	if semesterID != nil {
		row = p.db.QueryRowContext(ctx, attendanceSemesterQuery, studentID, *semesterID)
	} else {
		row = p.db.QueryRowContext(ctx, attendanceQuery, studentID)
	}

	var summary models.AttendanceSummary
	err := row.Scan(&summary.TotalSessions, &summary.Present, &summary.Absent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	return &summary, nil
}

const updateJobStatusQuery = `
	UPDATE stu_tracker.Student_report
	SET status = $1 WHERE s3_output_key = $2`

// UpdateJobStatus records the terminal outcome of one pipeline run. The
// write is idempotent on the output key: a redelivered job overwrites the
// prior status instead of adding a row.
func (p *Postgres) UpdateJobStatus(ctx context.Context, status models.JobStatus, outputKey string) error {
	if _, err := p.db.ExecContext(ctx, updateJobStatusQuery, string(status), outputKey); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}
