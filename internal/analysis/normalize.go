// internal/analysis/normalize.go
package analysis

import "errors"

// ErrZeroMaxScore is returned when a record's max score is zero.
var ErrZeroMaxScore = errors.New("max_score cannot be zero")

// Normalize converts a raw score/max pair into a percentage. Values above
// 100 are passed through unchanged: a score greater than its max is the
// caller's data problem, not ours to clamp.
func Normalize(score, maxScore float64) (float64, error) {
	if maxScore == 0 {
		return 0, ErrZeroMaxScore
	}
	return score / maxScore * 100, nil
}
