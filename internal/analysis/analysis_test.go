package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-report-worker/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func record(subject, title string, score, maxScore float64) models.AssessmentRecord {
	return models.AssessmentRecord{
		Subject:  subject,
		Title:    title,
		Score:    score,
		MaxScore: maxScore,
	}
}

func stagedRecord(alpha string, score, maxScore float64, pre, mid, post bool) models.AssessmentRecord {
	return models.AssessmentRecord{
		AlphaIdentifier: alpha,
		Score:           score,
		MaxScore:        maxScore,
		Pre:             pre,
		Mid:             mid,
		Post:            post,
	}
}

// ==========================
// Normalization Tests
// ==========================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		maxScore float64
		expected float64
		wantErr  bool
	}{
		{name: "half marks", score: 25, maxScore: 50, expected: 50},
		{name: "full marks", score: 80, maxScore: 80, expected: 100},
		{name: "zero score", score: 0, maxScore: 100, expected: 0},
		{name: "bonus marks exceed 100", score: 110, maxScore: 100, expected: 110},
		{name: "zero max score", score: 10, maxScore: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.score, tt.maxScore)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrZeroMaxScore)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

// ==========================
// Moving Average Tests
// ==========================

func TestMovingAverages_Series(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60}
	frame := MovingAverages(values)

	require.Len(t, frame.SMA, 6)
	require.Len(t, frame.EMA, 6)
	require.Len(t, frame.CMA, 6)

	// SMA stays zero until the five-value window fills.
	assert.Equal(t, []float64{0, 0, 0, 0}, frame.SMA[:4])
	assert.InDelta(t, 30, frame.SMA[4], 1e-9)
	assert.InDelta(t, 40, frame.SMA[5], 1e-9)

	// EMA with alpha = 2/6, seeded from the first value.
	expectedEMA := []float64{10, 40.0 / 3, 170.0 / 9, 700.0 / 27, 2750.0 / 81, 10360.0 / 243}
	for i, want := range expectedEMA {
		assert.InDelta(t, want, frame.EMA[i], 1e-9, "EMA[%d]", i)
	}

	assert.Equal(t, []float64{10, 15, 20, 25, 30, 35}, frame.CMA)
}

func TestMovingAverages_ShorterThanWindow(t *testing.T) {
	frame := MovingAverages([]float64{80, 90})

	assert.Equal(t, []float64{0, 0}, frame.SMA)
	assert.InDelta(t, 80, frame.EMA[0], 1e-9)
	assert.InDelta(t, 2.0/6*90+4.0/6*80, frame.EMA[1], 1e-9)
	assert.Equal(t, []float64{80, 85}, frame.CMA)
}

func TestMovingAverages_Empty(t *testing.T) {
	frame := MovingAverages(nil)
	assert.Empty(t, frame.SMA)
	assert.Empty(t, frame.EMA)
	assert.Empty(t, frame.CMA)
}

// ==========================
// Dataset / Labels Tests
// ==========================

func TestAnalysis_Dataset(t *testing.T) {
	an := New([]models.AssessmentRecord{
		record("Math", "Algebra quiz", 40, 50),
		record("Math", "Geometry quiz", 30, 60),
	})

	data, err := an.Dataset()
	require.NoError(t, err)
	assert.Equal(t, []float64{80, 50}, data)
	assert.Equal(t, []string{"Algebra quiz", "Geometry quiz"}, an.Labels())
}

func TestAnalysis_EmptyViewsReturnNil(t *testing.T) {
	an := New(nil)

	data, err := an.Dataset()
	require.NoError(t, err)
	assert.Nil(t, data)

	frame, err := an.MovingAverages()
	require.NoError(t, err)
	assert.Nil(t, frame)

	bias, err := an.SubjectBias()
	require.NoError(t, err)
	assert.Nil(t, bias)

	comparison, err := an.StageComparison()
	require.NoError(t, err)
	assert.Nil(t, comparison)

	assert.Nil(t, an.Labels())
	assert.True(t, an.Empty())
	assert.Equal(t, 0, an.Size())
}

func TestAnalysis_DatasetZeroMaxScore(t *testing.T) {
	an := New([]models.AssessmentRecord{record("Math", "broken row", 10, 0)})

	_, err := an.Dataset()
	assert.ErrorIs(t, err, ErrZeroMaxScore)
}

// ==========================
// Subject Aggregation Tests
// ==========================

func TestAnalysis_SubjectAggregate_KeepsInsertionOrder(t *testing.T) {
	an := New([]models.AssessmentRecord{
		record("Science", "s1", 50, 100),
		record("Math", "m1", 60, 100),
		record("Science", "s2", 70, 100),
	})

	agg, err := an.SubjectAggregate()
	require.NoError(t, err)
	require.Equal(t, 2, agg.Len())
	assert.Equal(t, []string{"Science", "Math"}, agg.Subjects())
	assert.Equal(t, []float64{50, 70}, agg.Scores("Science"))
	assert.Equal(t, []float64{60}, agg.Scores("Math"))
}

func TestAnalysis_SubjectBias(t *testing.T) {
	// Science: 50 -> 75 -> 60. Deltas: +0.5, -0.2; averaged over the full
	// series length of 3 including the leading zero delta.
	an := New([]models.AssessmentRecord{
		record("Science", "s1", 50, 100),
		record("Science", "s2", 75, 100),
		record("Science", "s3", 60, 100),
		record("Math", "m1", 80, 100),
	})

	bias, err := an.SubjectBias()
	require.NoError(t, err)
	require.Len(t, bias, 2)

	assert.Equal(t, "Science", bias[0].Subject)
	assert.InDelta(t, 0.1, bias[0].PercentChange, 1e-9)
	assert.InDelta(t, 185.0/3, bias[0].Mean, 1e-9)

	assert.Equal(t, "Math", bias[1].Subject)
	assert.InDelta(t, 0, bias[1].PercentChange, 1e-9)
	assert.InDelta(t, 80, bias[1].Mean, 1e-9)
}

func TestAnalysis_SubjectBias_ZeroScorePriorStaysFinite(t *testing.T) {
	// A zero score is valid data; the delta off it is undefined and must
	// contribute zero rather than Inf, or the report cannot serialize.
	an := New([]models.AssessmentRecord{
		record("Science", "s1", 0, 100),
		record("Science", "s2", 50, 100),
		record("Science", "s3", 75, 100),
	})

	bias, err := an.SubjectBias()
	require.NoError(t, err)
	require.Len(t, bias, 1)

	// Only the 50 -> 75 delta counts, still over the full series length.
	assert.InDelta(t, 0.5/3, bias[0].PercentChange, 1e-9)
	assert.InDelta(t, 125.0/3, bias[0].Mean, 1e-9)

	_, err = json.Marshal(bias)
	require.NoError(t, err)
}

func TestAnalysis_SubjectMovingAverage_Labels(t *testing.T) {
	an := New([]models.AssessmentRecord{
		record("Science", "s1", 40, 100),
		record("Science", "s2", 60, 100),
		record("Math", "m1", 90, 100),
	})

	entries, err := an.SubjectMovingAverage()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SMA:Science", entries[0].Label)
	assert.InDelta(t, 50, entries[0].Value, 1e-9)
	assert.Equal(t, "SMA:Math", entries[1].Label)
	assert.InDelta(t, 90, entries[1].Value, 1e-9)
}

// ==========================
// Stage Comparison Tests
// ==========================

func TestAnalysis_StageComparison(t *testing.T) {
	an := New([]models.AssessmentRecord{
		stagedRecord("ALG-1", 40, 100, true, false, false),
		stagedRecord("ALG-1", 55, 100, false, true, false),
		stagedRecord("ALG-1", 70, 100, false, false, true),
		stagedRecord("GEO-2", 30, 50, true, false, false),
	})

	comparison, err := an.StageComparison()
	require.NoError(t, err)
	require.Len(t, comparison, 2)

	assert.Equal(t, "ALG-1", comparison[0].AlphaIdentifier)
	assert.InDelta(t, 40, comparison[0].Pre, 1e-9)
	assert.InDelta(t, 55, comparison[0].Mid, 1e-9)
	assert.InDelta(t, 70, comparison[0].Post, 1e-9)

	assert.Equal(t, "GEO-2", comparison[1].AlphaIdentifier)
	assert.InDelta(t, 60, comparison[1].Pre, 1e-9)
	assert.InDelta(t, 0, comparison[1].Mid, 1e-9)
	assert.InDelta(t, 0, comparison[1].Post, 1e-9)
}

func TestAnalysis_StageComparison_LastWriteWins(t *testing.T) {
	an := New([]models.AssessmentRecord{
		stagedRecord("ALG-1", 40, 100, true, false, false),
		stagedRecord("ALG-1", 90, 100, true, false, false),
	})

	comparison, err := an.StageComparison()
	require.NoError(t, err)
	require.Len(t, comparison, 1)
	assert.InDelta(t, 90, comparison[0].Pre, 1e-9)
}

func TestAnalysis_StageComparison_SkipsUnflaggedRecords(t *testing.T) {
	an := New([]models.AssessmentRecord{
		stagedRecord("ALG-1", 40, 100, false, false, false),
		record("Math", "unflagged", 50, 100),
	})

	comparison, err := an.StageComparison()
	require.NoError(t, err)
	assert.NotNil(t, comparison)
	assert.Empty(t, comparison)
}

// ==========================
// End-to-End Fixture
// ==========================

// Two subjects with three assessments each, every record carrying a stage
// flag, processed through every Analysis operation in one pass.
func TestAnalysis_TwoSubjectSemester(t *testing.T) {
	fixture := func(subject, title, alpha string, score, maxScore float64, pre, mid, post bool) models.AssessmentRecord {
		return models.AssessmentRecord{
			Subject:         subject,
			Title:           title,
			AlphaIdentifier: alpha,
			Score:           score,
			MaxScore:        maxScore,
			Pre:             pre,
			Mid:             mid,
			Post:            post,
		}
	}

	an := New([]models.AssessmentRecord{
		fixture("Math", "algebra-pre", "ALG-1", 40, 100, true, false, false),
		fixture("Science", "biology-pre", "BIO-1", 30, 50, true, false, false),
		fixture("Math", "algebra-mid", "ALG-1", 55, 100, false, true, false),
		fixture("Science", "biology-mid", "BIO-1", 40, 50, false, true, false),
		fixture("Math", "algebra-post", "ALG-1", 70, 100, false, false, true),
		fixture("Science", "biology-post", "BIO-1", 45, 50, false, false, true),
	})

	data, err := an.Dataset()
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 60, 55, 80, 70, 90}, data)
	assert.Equal(t, []string{
		"algebra-pre", "biology-pre", "algebra-mid",
		"biology-mid", "algebra-post", "biology-post",
	}, an.Labels())

	bias, err := an.SubjectBias()
	require.NoError(t, err)
	require.Len(t, bias, 2)
	assert.Equal(t, "Math", bias[0].Subject)
	assert.InDelta(t, (15.0/40+15.0/55)/3, bias[0].PercentChange, 1e-9)
	assert.InDelta(t, 55, bias[0].Mean, 1e-9)
	assert.Equal(t, "Science", bias[1].Subject)
	assert.InDelta(t, (20.0/60+10.0/80)/3, bias[1].PercentChange, 1e-9)
	assert.InDelta(t, 230.0/3, bias[1].Mean, 1e-9)

	comparison, err := an.StageComparison()
	require.NoError(t, err)
	require.Len(t, comparison, 2)
	assert.Equal(t, models.StageComparison{AlphaIdentifier: "ALG-1", Pre: 40, Mid: 55, Post: 70}, comparison[0])
	assert.Equal(t, models.StageComparison{AlphaIdentifier: "BIO-1", Pre: 60, Mid: 80, Post: 90}, comparison[1])

	attendance := models.AttendanceSummary{TotalSessions: 12, Present: 9, Absent: 3}
	assert.InDelta(t, 75.0, attendance.Ratio(), 1e-9)
}
