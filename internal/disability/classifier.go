// internal/disability/classifier.go

// Package disability derives a binary learning-disability risk
// classification from a student's consecutive assessment scores, attendance,
// and a fitted logistic model.
package disability

import (
	"student-report-worker/internal/analysis"
	"student-report-worker/internal/models"
	"student-report-worker/internal/predictor"
)

// Note strings are part of the published report contract; consumers match
// on them, so they are not reworded here.
const (
	NotesInsufficient = "Not enough data to make prognosis."
	NotesSplit        = "Split prediction, unsure of prognosis."
	NotesPositive     = "Postitive classification, based on previous assessment scores and questionnaires"
	NotesNegative     = "Negative classification, based on previous assessment scores and questionnaires"
)

// Analyzer feeds pairwise assessment features through an injected
// classifier and aggregates the votes. The loader is consulted per call;
// the artifact is never cached across jobs.
type Analyzer struct {
	loader predictor.ClassifierLoader
}

func New(loader predictor.ClassifierLoader) *Analyzer {
	return &Analyzer{loader: loader}
}

// Analyze classifies one student's record sequence. For each consecutive
// pair (prev, curr) it builds a feature vector and collects the model's
// binary vote; n records yield n-1 votes. The previous score is normalized
// against the current record's max score, not its own — downstream
// consumers were calibrated against that basis, so it stays.
//
// Returns (nil, nil) when the record view or the attendance summary is
// empty. A model-load failure surfaces as an ErrArtifactUnavailable-wrapped
// error so the caller can degrade to a null section.
func (a *Analyzer) Analyze(records []models.AssessmentRecord, attendance *models.AttendanceSummary) (*models.ClassificationResult, error) {
	if len(records) == 0 || attendance == nil {
		return nil, nil
	}
	model, err := a.loader.Load()
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(records))
	for _, r := range records {
		norm, err := analysis.Normalize(r.Score, r.MaxScore)
		if err != nil {
			return nil, err
		}
		values = append(values, norm)
	}

	ratio := attendance.Ratio()
	predictions := make([]int, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1], records[i]
		examScore, err := analysis.Normalize(curr.Score, curr.MaxScore)
		if err != nil {
			return nil, err
		}
		prevScore, err := analysis.Normalize(prev.Score, curr.MaxScore)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, model.Predict(predictor.Features{
			predictor.FeatureAttendance:     ratio,
			predictor.FeaturePreviousScores: prevScore,
			predictor.FeatureExamScore:      examScore,
			predictor.FeatureTutorSessions:  curr.TutorSessions,
		}))
	}

	return Classify(predictions, values), nil
}

// Classify aggregates binary votes into a single classification. With three
// or fewer votes the result is 0 with confidence 100: the confidence states
// certainty about not knowing, not evidence for the outcome. A tie is 0 at
// confidence 50. Both majority branches return classification 1 and encode
// the direction only in the notes text; callers distinguishing them must
// read the notes.
func Classify(predictions []int, data []float64) *models.ClassificationResult {
	if len(predictions) <= 3 {
		return &models.ClassificationResult{
			Classification: 0,
			Confidence:     100,
			Notes:          NotesInsufficient,
			Data:           data,
		}
	}

	var positive, negative int
	for _, p := range predictions {
		if p == 1 {
			positive++
		} else {
			negative++
		}
	}

	total := float64(len(predictions))
	switch {
	case positive == negative:
		return &models.ClassificationResult{
			Classification: 0,
			Confidence:     50,
			Notes:          NotesSplit,
			Data:           data,
		}
	case positive > negative:
		return &models.ClassificationResult{
			Classification: 1,
			Confidence:     float64(positive) / total * 100,
			Notes:          NotesPositive,
			Data:           data,
		}
	default:
		return &models.ClassificationResult{
			Classification: 1,
			Confidence:     float64(negative) / total * 100,
			Notes:          NotesNegative,
			Data:           data,
		}
	}
}
