package disability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-report-worker/internal/models"
	"student-report-worker/internal/predictor"
)

// scriptedClassifier replays a fixed vote sequence and records every
// feature vector it was shown.
type scriptedClassifier struct {
	votes []int
	calls int
	seen  []predictor.Features
}

func (s *scriptedClassifier) Predict(features predictor.Features) int {
	s.seen = append(s.seen, features)
	vote := s.votes[s.calls%len(s.votes)]
	s.calls++
	return vote
}

type stubClassifierLoader struct {
	model *scriptedClassifier
	err   error
	loads int
}

func (l *stubClassifierLoader) Load() (predictor.BinaryClassifier, error) {
	l.loads++
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

func scoredRecord(score, maxScore, tutorSessions float64) models.AssessmentRecord {
	return models.AssessmentRecord{
		Score:         score,
		MaxScore:      maxScore,
		TutorSessions: tutorSessions,
	}
}

// ==========================
// Vote Aggregation Tests
// ==========================

func TestClassify(t *testing.T) {
	data := []float64{50, 60, 70}

	tests := []struct {
		name           string
		predictions    []int
		classification int
		confidence     float64
		notes          string
	}{
		{
			name:           "three votes is not enough",
			predictions:    []int{1, 1, 1},
			classification: 0,
			confidence:     100,
			notes:          NotesInsufficient,
		},
		{
			name:           "no votes is not enough",
			predictions:    nil,
			classification: 0,
			confidence:     100,
			notes:          NotesInsufficient,
		},
		{
			name:           "even split",
			predictions:    []int{1, 0, 1, 0},
			classification: 0,
			confidence:     50,
			notes:          NotesSplit,
		},
		{
			name:           "positive majority",
			predictions:    []int{1, 1, 1, 0},
			classification: 1,
			confidence:     75,
			notes:          NotesPositive,
		},
		{
			name:           "negative majority",
			predictions:    []int{0, 0, 0, 1},
			classification: 1,
			confidence:     75,
			notes:          NotesNegative,
		},
		{
			name:           "unanimous negative",
			predictions:    []int{0, 0, 0, 0, 0},
			classification: 1,
			confidence:     100,
			notes:          NotesNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.predictions, data)
			require.NotNil(t, result)
			assert.Equal(t, tt.classification, result.Classification)
			assert.InDelta(t, tt.confidence, result.Confidence, 1e-9)
			assert.Equal(t, tt.notes, result.Notes)
			assert.Equal(t, data, result.Data)
		})
	}
}

// ==========================
// Analyzer Tests
// ==========================

func TestAnalyzer_Analyze_PairwiseFeatures(t *testing.T) {
	model := &scriptedClassifier{votes: []int{1}}
	analyzer := New(&stubClassifierLoader{model: model})

	records := []models.AssessmentRecord{
		scoredRecord(40, 50, 0), // 80%
		scoredRecord(45, 90, 2), // 50%
		scoredRecord(30, 60, 1), // 50%
	}
	attendance := &models.AttendanceSummary{TotalSessions: 12, Present: 9, Absent: 3}

	result, err := analyzer.Analyze(records, attendance)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Three records produce two votes, which is below the evidence floor.
	assert.Equal(t, 0, result.Classification)
	assert.Equal(t, NotesInsufficient, result.Notes)
	assert.Equal(t, []float64{80, 50, 50}, result.Data)

	require.Len(t, model.seen, 2)
	first := model.seen[0]
	assert.InDelta(t, 75, first[predictor.FeatureAttendance], 1e-9)
	assert.InDelta(t, 50, first[predictor.FeatureExamScore], 1e-9)
	// The previous score is normalized against the current record's max.
	assert.InDelta(t, 40.0/90*100, first[predictor.FeaturePreviousScores], 1e-9)
	assert.InDelta(t, 2, first[predictor.FeatureTutorSessions], 1e-9)

	second := model.seen[1]
	assert.InDelta(t, 50, second[predictor.FeatureExamScore], 1e-9)
	assert.InDelta(t, 75, second[predictor.FeaturePreviousScores], 1e-9)
	assert.InDelta(t, 1, second[predictor.FeatureTutorSessions], 1e-9)
}

func TestAnalyzer_Analyze_MajorityVerdict(t *testing.T) {
	model := &scriptedClassifier{votes: []int{0, 0, 0, 1}}
	analyzer := New(&stubClassifierLoader{model: model})

	records := make([]models.AssessmentRecord, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, scoredRecord(50, 100, 0))
	}

	result, err := analyzer.Analyze(records, &models.AttendanceSummary{TotalSessions: 10, Present: 10})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Classification)
	assert.InDelta(t, 75, result.Confidence, 1e-9)
	assert.Equal(t, NotesNegative, result.Notes)
}

func TestAnalyzer_Analyze_EmptyViews(t *testing.T) {
	loader := &stubClassifierLoader{model: &scriptedClassifier{votes: []int{1}}}
	analyzer := New(loader)

	result, err := analyzer.Analyze(nil, &models.AttendanceSummary{TotalSessions: 10, Present: 5})
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = analyzer.Analyze([]models.AssessmentRecord{scoredRecord(1, 2, 0)}, nil)
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.Equal(t, 0, loader.loads)
}

func TestAnalyzer_Analyze_LoadFailure(t *testing.T) {
	loadErr := errors.New("artifact gone")
	analyzer := New(&stubClassifierLoader{err: loadErr})

	_, err := analyzer.Analyze(
		[]models.AssessmentRecord{scoredRecord(1, 2, 0)},
		&models.AttendanceSummary{TotalSessions: 10, Present: 5},
	)
	assert.ErrorIs(t, err, loadErr)
}

func TestAnalyzer_Analyze_ZeroMaxScore(t *testing.T) {
	analyzer := New(&stubClassifierLoader{model: &scriptedClassifier{votes: []int{1}}})

	_, err := analyzer.Analyze(
		[]models.AssessmentRecord{scoredRecord(10, 0, 0)},
		&models.AttendanceSummary{TotalSessions: 10, Present: 5},
	)
	assert.Error(t, err)
}
