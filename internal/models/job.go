// internal/models/job.go
package models

// JobStatus is the terminal marker persisted per report output key. It is
// written exactly once per pipeline run, after publish succeeds or fails.
type JobStatus string

const (
	StatusDone  JobStatus = "DONE"
	StatusError JobStatus = "ERROR"
)

// ReportJob is the inbound message payload announcing that a student's
// assessment data is ready for analysis.
type ReportJob struct {
	StudentID  int64  `json:"student_id"`
	SemesterID *int64 `json:"semester_id"`
	OutputKey  string `json:"s3_output_key"`
}
