// internal/analysis/analysis.go

// Package analysis turns raw assessment rows into the longitudinal
// statistics carried by a student report: normalized score series,
// moving-average trends, per-subject summaries, stage comparisons, and
// predicted-vs-actual score pairs.
//
// Every entry point returns (nil, nil) on an empty data view. That is the
// contract the pipeline relies on: no data means a null report section,
// never an error.
package analysis

import "student-report-worker/internal/models"

// Analysis wraps one fetched view of assessment records. The records are
// owned by a single pipeline run and never mutated.
type Analysis struct {
	records []models.AssessmentRecord
}

func New(records []models.AssessmentRecord) *Analysis {
	return &Analysis{records: records}
}

// Empty reports whether there is anything to analyze.
func (a *Analysis) Empty() bool {
	return len(a.records) == 0
}

// Size returns the number of records in the view.
func (a *Analysis) Size() int {
	return len(a.records)
}

// Dataset returns the normalized score series in record order.
func (a *Analysis) Dataset() ([]float64, error) {
	if a.Empty() {
		return nil, nil
	}
	values := make([]float64, 0, len(a.records))
	for _, r := range a.records {
		norm, err := Normalize(r.Score, r.MaxScore)
		if err != nil {
			return nil, err
		}
		values = append(values, norm)
	}
	return values, nil
}

// Labels returns the assessment titles aligned with Dataset.
func (a *Analysis) Labels() []string {
	if a.Empty() {
		return nil
	}
	labels := make([]string, 0, len(a.records))
	for _, r := range a.records {
		labels = append(labels, r.Title)
	}
	return labels
}

// MovingAverages computes the SMA/EMA/CMA trend frame over the normalized
// score series.
func (a *Analysis) MovingAverages() (*models.TrendFrame, error) {
	if a.Empty() {
		return nil, nil
	}
	values, err := a.Dataset()
	if err != nil {
		return nil, err
	}
	frame := MovingAverages(values)
	return &frame, nil
}
