// internal/predictor/artifact.go
package predictor

import (
	"encoding/json"
	"fmt"
	"os"
)

// artifact is the on-disk coefficient format shared by both model kinds:
// an intercept plus a weight per feature name.
type artifact struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

func (a *artifact) score(features Features) float64 {
	sum := a.Intercept
	for name, weight := range a.Weights {
		sum += weight * features[name]
	}
	return sum
}

func readArtifact(path string) (*artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrArtifactUnavailable, path, err)
	}
	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrArtifactUnavailable, path, err)
	}
	return &a, nil
}

// LogisticModel is a binary classifier over a fitted logistic artifact.
type LogisticModel struct {
	coefficients *artifact
}

// Predict returns 1 when the sigmoid of the linear term is at least 0.5,
// which is exactly when the term itself is non-negative.
func (m *LogisticModel) Predict(features Features) int {
	if m.coefficients.score(features) >= 0 {
		return 1
	}
	return 0
}

// LinearModel is a regressor over a fitted linear artifact.
type LinearModel struct {
	coefficients *artifact
}

func (m *LinearModel) Predict(features Features) float64 {
	return m.coefficients.score(features)
}

// FileClassifierLoader loads a logistic artifact from disk. Load re-reads
// the file on every call so a retrained artifact takes effect without a
// process restart.
type FileClassifierLoader struct {
	Path string
}

func (l FileClassifierLoader) Load() (BinaryClassifier, error) {
	a, err := readArtifact(l.Path)
	if err != nil {
		return nil, err
	}
	return &LogisticModel{coefficients: a}, nil
}

// FileRegressorLoader loads a linear artifact from disk, re-reading per call.
type FileRegressorLoader struct {
	Path string
}

func (l FileRegressorLoader) Load() (Regressor, error) {
	a, err := readArtifact(l.Path)
	if err != nil {
		return nil, err
	}
	return &LinearModel{coefficients: a}, nil
}
