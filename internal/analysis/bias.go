// internal/analysis/bias.go
package analysis

import "student-report-worker/internal/models"

// SubjectBias returns one summary entry per subject: the mean of successive
// percentage deltas between consecutive scores (the first delta counts as
// zero, there being no prior value) and the arithmetic mean of the subject's
// normalized scores. Entries keep the subjects' first-seen order.
func (a *Analysis) SubjectBias() ([]models.SubjectBias, error) {
	if a.Empty() {
		return nil, nil
	}
	agg, err := a.SubjectAggregate()
	if err != nil {
		return nil, err
	}

	out := make([]models.SubjectBias, 0, agg.Len())
	for _, subject := range agg.Subjects() {
		scores := agg.Scores(subject)
		out = append(out, models.SubjectBias{
			Subject:       subject,
			PercentChange: meanPercentChange(scores),
			Mean:          mean(scores),
		})
	}
	return out, nil
}

// meanPercentChange averages the relative deltas between consecutive values.
// The leading zero delta participates in the mean, so the divisor is the
// full series length. A delta off a zero prior value contributes zero: the
// relative change is undefined there, and an Inf would make the report
// unserializable.
func meanPercentChange(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		total += (values[i] - values[i-1]) / values[i-1]
	}
	return total / float64(len(values))
}

// SubjectMovingAverage returns one "SMA:<subject>" labeled entry per
// subject, each valued at the arithmetic mean of that subject's series.
// The label says SMA but the value is a single-point summary, not a time
// series; downstream consumers key on the literal label format.
func (a *Analysis) SubjectMovingAverage() ([]models.LabeledValue, error) {
	if a.Empty() {
		return nil, nil
	}
	agg, err := a.SubjectAggregate()
	if err != nil {
		return nil, err
	}

	out := make([]models.LabeledValue, 0, agg.Len())
	for _, subject := range agg.Subjects() {
		out = append(out, models.LabeledValue{
			Label: "SMA:" + subject,
			Value: mean(agg.Scores(subject)),
		})
	}
	return out, nil
}
