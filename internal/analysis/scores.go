// internal/analysis/scores.go
package analysis

import (
	"student-report-worker/internal/models"
	"student-report-worker/internal/predictor"
)

// ScorePredictor produces expected-vs-actual score pairs from a fitted
// linear model. The loader is consulted on every call, so the artifact is
// re-read each time rather than cached.
type ScorePredictor struct {
	loader predictor.RegressorLoader
}

func NewScorePredictor(loader predictor.RegressorLoader) *ScorePredictor {
	return &ScorePredictor{loader: loader}
}

// Predict scores every record independently: the record's own normalized
// score is fed back as the previous-score feature, and the prediction is
// paired with that same normalized score as the actual. Returns (nil, nil)
// when either input view is empty; a load failure surfaces as an
// ErrArtifactUnavailable-wrapped error.
func (p *ScorePredictor) Predict(records []models.AssessmentRecord, attendance *models.AttendanceSummary) ([]models.ScorePrediction, error) {
	if len(records) == 0 || attendance == nil {
		return nil, nil
	}
	model, err := p.loader.Load()
	if err != nil {
		return nil, err
	}

	ratio := attendance.Ratio()
	out := make([]models.ScorePrediction, 0, len(records))
	for _, r := range records {
		norm, err := Normalize(r.Score, r.MaxScore)
		if err != nil {
			return nil, err
		}
		prediction := model.Predict(predictor.Features{
			predictor.FeatureHoursStudied:   r.StudyHours,
			predictor.FeatureAttendance:     ratio,
			predictor.FeaturePreviousScores: norm,
			predictor.FeatureTutorSessions:  r.TutorSessions,
			predictor.FeaturePhysical:       r.SportsHours,
		})
		out = append(out, models.ScorePrediction{
			Prediction: prediction,
			Actual:     norm,
			Title:      r.Title,
		})
	}
	return out, nil
}

// PredictBySubject runs the same per-record predictions but groups the raw
// predicted values under an "LR_<subject>" label per subject, in first-seen
// subject order.
func (p *ScorePredictor) PredictBySubject(records []models.AssessmentRecord, attendance *models.AttendanceSummary) ([]models.SubjectPredictions, error) {
	if len(records) == 0 || attendance == nil {
		return nil, nil
	}
	model, err := p.loader.Load()
	if err != nil {
		return nil, err
	}

	ratio := attendance.Ratio()
	order := make([]string, 0)
	grouped := make(map[string][]float64)
	for _, r := range records {
		norm, err := Normalize(r.Score, r.MaxScore)
		if err != nil {
			return nil, err
		}
		prediction := model.Predict(predictor.Features{
			predictor.FeatureHoursStudied:   r.StudyHours,
			predictor.FeatureAttendance:     ratio,
			predictor.FeaturePreviousScores: norm,
			predictor.FeatureTutorSessions:  r.TutorSessions,
			predictor.FeaturePhysical:       r.SportsHours,
		})
		label := "LR_" + r.Subject
		if _, seen := grouped[label]; !seen {
			order = append(order, label)
		}
		grouped[label] = append(grouped[label], prediction)
	}

	out := make([]models.SubjectPredictions, 0, len(order))
	for _, label := range order {
		out = append(out, models.SubjectPredictions{
			Label:       label,
			Predictions: grouped[label],
		})
	}
	return out, nil
}
