// internal/analysis/stage.go
package analysis

import "student-report-worker/internal/models"

// StageComparison buckets normalized scores by assessment identifier and
// stage. Unflagged records contribute nothing; a second record for the same
// (identifier, stage) pair overwrites the first. Identifiers keep the order
// in which a flagged record first introduced them.
func (a *Analysis) StageComparison() ([]models.StageComparison, error) {
	if a.Empty() {
		return nil, nil
	}

	order := make([]string, 0)
	buckets := make(map[string]*models.StageComparison)
	for _, r := range a.records {
		stage, ok := r.StageOf()
		if !ok {
			continue
		}
		norm, err := Normalize(r.Score, r.MaxScore)
		if err != nil {
			return nil, err
		}
		bucket, seen := buckets[r.AlphaIdentifier]
		if !seen {
			bucket = &models.StageComparison{AlphaIdentifier: r.AlphaIdentifier}
			buckets[r.AlphaIdentifier] = bucket
			order = append(order, r.AlphaIdentifier)
		}
		switch stage {
		case models.StagePre:
			bucket.Pre = norm
		case models.StageMid:
			bucket.Mid = norm
		case models.StagePost:
			bucket.Post = norm
		}
	}

	out := make([]models.StageComparison, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out, nil
}
