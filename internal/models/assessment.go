// internal/models/assessment.go
package models

import "time"

// Stage names an assessment phase. A record carries at most one stage flag.
type Stage string

const (
	StagePre  Stage = "pre"
	StageMid  Stage = "mid"
	StagePost Stage = "post"
)

// AssessmentRecord is one scored event for one student. Rows are validated
// at the repository boundary; the analysis components treat them as
// immutable values owned by a single pipeline run.
type AssessmentRecord struct {
	SessionDate     time.Time
	Score           float64
	MaxScore        float64
	SubjectID       int64
	Subject         string
	Title           string
	AlphaIdentifier string
	Pre             bool
	Mid             bool
	Post            bool

	// Questionnaire fields, populated only on the questionnaire-scoped view.
	QuestionnaireID int64
	StudyHours      float64
	SleepHours      float64
	EffortScore     float64
	TutorSessions   float64
	SportsHours     float64
	PeerInfluence   string
}

// StageOf returns the record's stage flag, or false when no flag is set.
func (r AssessmentRecord) StageOf() (Stage, bool) {
	switch {
	case r.Pre:
		return StagePre, true
	case r.Mid:
		return StageMid, true
	case r.Post:
		return StagePost, true
	default:
		return "", false
	}
}

// AttendanceSummary aggregates session attendance for one student within an
// optional semester window. present + absent == total_sessions is expected
// but not enforced here; the repository owns row validation.
type AttendanceSummary struct {
	TotalSessions int
	Present       int
	Absent        int
}

// Ratio returns attendance as a percentage of total sessions.
func (a AttendanceSummary) Ratio() float64 {
	return float64(a.Present) / float64(a.TotalSessions) * 100
}
