// internal/predictor/predictor.go
package predictor

import "errors"

// Feature names match the column names the model artifacts were fitted
// against. Renaming one silently zeroes that feature's contribution.
const (
	FeatureAttendance     = "Attendance"
	FeaturePreviousScores = "Previous_Scores"
	FeatureExamScore      = "Exam_Score"
	FeatureTutorSessions  = "Tutoring_Sessions"
	FeatureHoursStudied   = "Hours_Studied"
	FeaturePhysical       = "Physical_Activity"
)

// ErrArtifactUnavailable marks a model artifact that could not be loaded.
// Callers treat it as a recoverable condition: the dependent report section
// is omitted, the rest of the report still publishes.
var ErrArtifactUnavailable = errors.New("MODEL_ARTIFACT_UNAVAILABLE")

// Features is one engineered feature vector.
type Features map[string]float64

// BinaryClassifier scores a feature vector into {0, 1}.
type BinaryClassifier interface {
	Predict(features Features) int
}

// Regressor scores a feature vector into a continuous value.
type Regressor interface {
	Predict(features Features) float64
}

// ClassifierLoader materializes a classifier from its serialized artifact.
// Implementations re-read the artifact on every call; nothing is cached.
type ClassifierLoader interface {
	Load() (BinaryClassifier, error)
}

// RegressorLoader materializes a regressor from its serialized artifact.
type RegressorLoader interface {
	Load() (Regressor, error)
}
