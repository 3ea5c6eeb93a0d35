// internal/analysis/trend.go
package analysis

import "student-report-worker/internal/models"

// movingWindow is the lookback for the simple moving average and the span
// for exponential smoothing.
const movingWindow = 5

// MovingAverages computes three equal-length series over the input:
//
//   - SMA[i]: mean of the trailing movingWindow values, zero until the
//     window fills (zero-pad policy, not NaN propagation)
//   - EMA[i]: recursive exponential smoothing with alpha = 2/(span+1);
//     EMA[0] equals the first input value
//   - CMA[i]: running mean of values[0..i]
//
// An empty input yields empty series, not an error.
func MovingAverages(values []float64) models.TrendFrame {
	n := len(values)
	frame := models.TrendFrame{
		SMA: make([]float64, n),
		EMA: make([]float64, n),
		CMA: make([]float64, n),
	}

	var windowSum float64
	for i, v := range values {
		windowSum += v
		if i >= movingWindow {
			windowSum -= values[i-movingWindow]
		}
		if i >= movingWindow-1 {
			frame.SMA[i] = windowSum / movingWindow
		}
	}

	alpha := 2.0 / float64(movingWindow+1)
	var ema float64
	for i, v := range values {
		if i == 0 {
			ema = v
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		frame.EMA[i] = ema
	}

	var runningSum float64
	for i, v := range values {
		runningSum += v
		frame.CMA[i] = runningSum / float64(i+1)
	}

	return frame
}

// SubjectAggregate maps a subject to its ordered sequence of normalized
// scores. Subjects keep first-seen insertion order; within a subject,
// scores keep record order.
type SubjectAggregate struct {
	subjects []string
	scores   map[string][]float64
}

func (s *SubjectAggregate) add(subject string, score float64) {
	if s.scores == nil {
		s.scores = make(map[string][]float64)
	}
	if _, seen := s.scores[subject]; !seen {
		s.subjects = append(s.subjects, subject)
	}
	s.scores[subject] = append(s.scores[subject], score)
}

// Subjects returns the subject names in first-seen order.
func (s *SubjectAggregate) Subjects() []string {
	return s.subjects
}

// Scores returns the normalized score series for one subject.
func (s *SubjectAggregate) Scores(subject string) []float64 {
	return s.scores[subject]
}

// Len returns the number of distinct subjects.
func (s *SubjectAggregate) Len() int {
	return len(s.subjects)
}

// SubjectAggregate groups the normalized scores by subject.
func (a *Analysis) SubjectAggregate() (*SubjectAggregate, error) {
	if a.Empty() {
		return nil, nil
	}
	agg := &SubjectAggregate{}
	for _, r := range a.records {
		norm, err := Normalize(r.Score, r.MaxScore)
		if err != nil {
			return nil, err
		}
		agg.add(r.Subject, norm)
	}
	return agg, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
