// internal/repository/assessments.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"student-report-worker/internal/models"
)

const allAssessmentsBase = `
	SELECT
		ss.session_date,
		ast.score,
		asmt.max_score,
		asmt.subject_id,
		sj.title AS subject,
		asmt.pre,
		asmt.post,
		asmt.mid,
		asmt.alpha_identifier,
		asmt.title AS assessment_title
	FROM stu_tracker.Assessments_students ast
	LEFT JOIN stu_tracker.Sessions ss ON
		ss.id = ast.session_id
	LEFT JOIN stu_tracker.Assessments asmt ON
		asmt.id = ast.assessment_id
	LEFT JOIN stu_tracker.Subjects sj ON
		sj.id = asmt.subject_id
	WHERE ast.student_id = $1`

// AllAssessments returns every scored assessment for the student, newest
// session first, optionally narrowed to one semester.
func (p *Postgres) AllAssessments(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error) {
	query, args := scopeQuery(allAssessmentsBase, studentID, semesterID, "")

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var records []models.AssessmentRecord
	for rows.Next() {
		var (
			r         models.AssessmentRecord
			date      sql.NullTime
			subjectID sql.NullInt64
			subject   sql.NullString
			pre       sql.NullBool
			post      sql.NullBool
			mid       sql.NullBool
			alpha     sql.NullString
			title     sql.NullString
		)
		if err := rows.Scan(&date, &r.Score, &r.MaxScore, &subjectID, &subject,
			&pre, &post, &mid, &alpha, &title); err != nil {
			return nil, fmt.Errorf("scan assessment row: %w", err)
		}
		r.SessionDate = date.Time
		r.SubjectID = subjectID.Int64
		r.Subject = subject.String
		r.Pre = pre.Bool
		r.Post = post.Bool
		r.Mid = mid.Bool
		r.AlphaIdentifier = alpha.String
		r.Title = title.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessment rows: %w", err)
	}
	return records, nil
}

const priorAssessmentsBase = `
	SELECT
		ss.session_date,
		ast.score,
		asmt.max_score,
		asmt.subject_id,
		sj.title AS subject,
		asmt.pre,
		asmt.post,
		asmt.mid
	FROM stu_tracker.Assessments_students ast
	LEFT JOIN stu_tracker.Sessions ss ON
		ss.id = ast.session_id
	LEFT JOIN stu_tracker.Assessments asmt ON
		asmt.id = ast.assessment_id
	LEFT JOIN stu_tracker.Subjects sj ON
		sj.id = asmt.subject_id
	WHERE ast.student_id = $1`

// PriorAssessments returns the assessments recorded without an attached
// questionnaire, newest session first.
func (p *Postgres) PriorAssessments(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error) {
	query, args := scopeQuery(priorAssessmentsBase, studentID, semesterID,
		"AND ast.questionnaire_id IS NULL")

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prior assessments: %w", err)
	}
	defer rows.Close()

	var records []models.AssessmentRecord
	for rows.Next() {
		var (
			r         models.AssessmentRecord
			date      sql.NullTime
			subjectID sql.NullInt64
			subject   sql.NullString
			pre       sql.NullBool
			post      sql.NullBool
			mid       sql.NullBool
		)
		if err := rows.Scan(&date, &r.Score, &r.MaxScore, &subjectID, &subject,
			&pre, &post, &mid); err != nil {
			return nil, fmt.Errorf("scan prior assessment row: %w", err)
		}
		r.SessionDate = date.Time
		r.SubjectID = subjectID.Int64
		r.Subject = subject.String
		r.Pre = pre.Bool
		r.Post = post.Bool
		r.Mid = mid.Bool
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prior assessment rows: %w", err)
	}
	return records, nil
}

const questionnaireAssessmentsBase = `
	SELECT
		ss.session_date,
		ast.score,
		asmt.max_score,
		asmt.subject_id,
		asmt.title,
		paq.sleep_hours,
		paq.effort_score,
		paq.tutor_sessions,
		paq.sports_hours,
		paq.peer_influence,
		paq.study_hours,
		paq.id AS questionnaire_id,
		sj.title AS subject
	FROM stu_tracker.Assessments_students ast
	LEFT JOIN stu_tracker.Sessions ss ON
		ss.id = ast.session_id
	LEFT JOIN stu_tracker.Assessments asmt ON
		asmt.id = ast.assessment_id
	LEFT JOIN stu_tracker.Pre_assessment_questionnaire paq ON
		paq.id = ast.questionnaire_id
	LEFT JOIN stu_tracker.Subjects sj ON
		sj.id = asmt.subject_id
	WHERE ast.student_id = $1`

// PriorAssessmentsWithQuestionnaire returns the assessments that carry a
// pre-assessment questionnaire, newest session first. These rows feed the
// risk classifier and the score predictor.
func (p *Postgres) PriorAssessmentsWithQuestionnaire(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error) {
	query, args := scopeQuery(questionnaireAssessmentsBase, studentID, semesterID,
		"AND ast.questionnaire_id IS NOT NULL")

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questionnaire assessments: %w", err)
	}
	defer rows.Close()

	var records []models.AssessmentRecord
	for rows.Next() {
		var (
			r             models.AssessmentRecord
			date          sql.NullTime
			subjectID     sql.NullInt64
			title         sql.NullString
			sleepHours    sql.NullFloat64
			effortScore   sql.NullFloat64
			tutorSessions sql.NullFloat64
			sportsHours   sql.NullFloat64
			peerInfluence sql.NullString
			studyHours    sql.NullFloat64
			qid           sql.NullInt64
			subject       sql.NullString
		)
		if err := rows.Scan(&date, &r.Score, &r.MaxScore, &subjectID, &title,
			&sleepHours, &effortScore, &tutorSessions, &sportsHours,
			&peerInfluence, &studyHours, &qid, &subject); err != nil {
			return nil, fmt.Errorf("scan questionnaire assessment row: %w", err)
		}
		r.SessionDate = date.Time
		r.SubjectID = subjectID.Int64
		r.Title = title.String
		r.SleepHours = sleepHours.Float64
		r.EffortScore = effortScore.Float64
		r.TutorSessions = tutorSessions.Float64
		r.SportsHours = sportsHours.Float64
		r.PeerInfluence = peerInfluence.String
		r.StudyHours = studyHours.Float64
		r.QuestionnaireID = qid.Int64
		r.Subject = subject.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questionnaire assessment rows: %w", err)
	}
	return records, nil
}

// scopeQuery appends the optional semester filter, any extra predicate, and
// the session-date ordering shared by the assessment reads.
func scopeQuery(base string, studentID int64, semesterID *int64, extra string) (string, []interface{}) {
	parts := []string{base}
	args := []interface{}{studentID}
	if semesterID != nil {
		parts = append(parts, "AND ast.semester_id = $2")
		args = append(args, *semesterID)
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	parts = append(parts, "ORDER BY ss.session_date DESC")
	return strings.Join(parts, " "), args
}
