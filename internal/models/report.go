// internal/models/report.go
package models

import "encoding/json"

// TrendFrame holds three moving-average series aligned to the input record
// order. All three have the same length as the input.
type TrendFrame struct {
	SMA []float64 `json:"SMA"`
	EMA []float64 `json:"EMA"`
	CMA []float64 `json:"CMA"`
}

// SubjectBias summarizes one subject's normalized score series.
type SubjectBias struct {
	Subject       string  `json:"subject"`
	PercentChange float64 `json:"percent_change"`
	Mean          float64 `json:"mean"`
}

// LabeledValue is a single-point summary keyed by a display label.
type LabeledValue struct {
	Label string
	Value float64
}

// MarshalJSON renders the entry as a single dynamic-key object, e.g.
// {"SMA:Math": 75}. Downstream consumers key on the label.
func (v LabeledValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64{v.Label: v.Value})
}

// StageComparison holds the pre/mid/post normalized scores kept for one
// assessment identifier. Unset stages stay 0; a duplicate stage overwrites
// the prior value (last write wins).
type StageComparison struct {
	AlphaIdentifier string  `json:"alpha_identifier"`
	Pre             float64 `json:"pre"`
	Mid             float64 `json:"mid"`
	Post            float64 `json:"post"`
}

// ClassificationResult is the outcome of the risk classification: a binary
// classification with a confidence percentage, a free-text rationale, and
// the normalized score series it was derived from.
type ClassificationResult struct {
	Classification int       `json:"classification"`
	Confidence     float64   `json:"confidence"`
	Notes          string    `json:"notes"`
	Data           []float64 `json:"data"`
}

// ScorePrediction pairs a model-predicted score with the observed one.
type ScorePrediction struct {
	Prediction float64 `json:"prediction"`
	Actual     float64 `json:"actual"`
	Title      string  `json:"title"`
}

// SubjectPredictions groups raw predicted scores under a per-subject label.
type SubjectPredictions struct {
	Label       string
	Predictions []float64
}

// MarshalJSON renders the group as a single dynamic-key object, e.g.
// {"LR_Math": [58.2, 61.0]}.
func (s SubjectPredictions) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]float64{s.Label: s.Predictions})
}

// AllScores is the overall score section of the report.
type AllScores struct {
	Scores *TrendFrame `json:"scores"`
	Data   []float64   `json:"data"`
	Labels []string    `json:"labels"`
}

// LinearRegressionSection wraps the predicted-vs-actual score pairs.
type LinearRegressionSection struct {
	ScoresLinearRegression []ScorePrediction `json:"scores_linear_regression"`
}

// Report is the composite analysis object published to the blob store.
// Sections backed by empty data views marshal as null rather than being
// omitted, so consumers can tell "no data" from "field missing".
type Report struct {
	GeneratedAt          int64                   `json:"generated_at"`
	AllScores            AllScores               `json:"all_scores"`
	SubjectBias          []SubjectBias           `json:"subject_bias"`
	AssessmentComparison []StageComparison       `json:"assessment_comparison"`
	LearningDisability   *ClassificationResult   `json:"learning_disability"`
	LearningDisabilityLR LinearRegressionSection `json:"learning_disability_linear_regression"`
}
