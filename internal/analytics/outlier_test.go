package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesef/internal/core"
)

func categoryStats(category string, values ...float64) Stats {
	return Stats{
		ByCategory: map[string]Aggregate{category: {Values: values, Count: len(values)}},
		ByWeekday:  map[time.Weekday]Aggregate{},
	}
}

func TestDetect_NonExpense(t *testing.T) {
	v := Detect(Candidate{Amount: 100000, Category: "salary", Date: "2024-01-01", Type: core.Income}, Stats{})
	assert.False(t, v.IsOutlier)
	assert.NotNil(t, v.Reasons)
	assert.Empty(t, v.Reasons)
	assert.Zero(t, v.Confidence)
}

func TestDetect_FlatHistory(t *testing.T) {
	stats := categoryStats("food", 100, 100, 100, 100, 100)

	v := Detect(Candidate{Amount: 100, Category: "food", Date: "2024-01-01", Type: core.Expense}, stats)
	assert.False(t, v.IsOutlier)
	assert.Zero(t, v.Confidence)

	v = Detect(Candidate{Amount: 1000, Category: "food", Date: "2024-01-01", Type: core.Expense}, stats)
	assert.True(t, v.IsOutlier)
	assert.GreaterOrEqual(t, v.Confidence, 0.3)
	require.Len(t, v.Reasons, 1)
	assert.Contains(t, v.Reasons[0], "300")
}

func TestDetect_CategoryZScore(t *testing.T) {
	// mean 100, population stddev 10
	stats := categoryStats("food", 85, 115, 95, 105, 100)

	v := Detect(Candidate{Amount: 125, Category: "food", Date: "bad", Type: core.Expense}, stats)
	assert.True(t, v.IsOutlier)
	assert.InDelta(t, 0.4, v.Confidence, 1e-9)
	require.Len(t, v.Reasons, 1)
	assert.Contains(t, v.Reasons[0], "'food'")
	assert.Contains(t, v.Reasons[0], "100.00")
	assert.Contains(t, v.Reasons[0], "10.00")

	v = Detect(Candidate{Amount: 115, Category: "food", Date: "bad", Type: core.Expense}, stats)
	assert.False(t, v.IsOutlier)
}

func TestDetect_SmallBucketNeverTriggersCategory(t *testing.T) {
	stats := categoryStats("food", 1, 1, 1, 2)
	for _, amount := range []float64{50, 120, 299} {
		v := Detect(Candidate{Amount: amount, Category: "food", Date: "bad", Type: core.Expense}, stats)
		assert.False(t, v.IsOutlier, "amount %v", amount)
	}
}

func TestDetect_WeekdayAndAbsolute(t *testing.T) {
	var history []core.Transaction
	// five Mondays with spread
	for i, amount := range []float64{10, 20, 30, 20, 20} {
		history = append(history, expense(amount, "misc", time.Date(2024, 1, 1+7*i, 0, 0, 0, 0, time.UTC).Format(core.DateLayout)))
	}
	stats := Collect(history)

	v := Detect(Candidate{Amount: 400, Category: "travel", Date: "2024-02-05", Type: core.Expense}, stats)
	assert.True(t, v.IsOutlier)
	assert.InDelta(t, 0.6, v.Confidence, 1e-9)
	require.Len(t, v.Reasons, 2)
	assert.Contains(t, v.Reasons[0], "Monday")
}

func TestDetect_ConfidenceCapped(t *testing.T) {
	var history []core.Transaction
	for i := 0; i < 5; i++ {
		history = append(history, expense(float64(10+i), "food", time.Date(2024, 1, 1+7*i, 0, 0, 0, 0, time.UTC).Format(core.DateLayout)))
	}
	stats := Collect(history)

	v := Detect(Candidate{Amount: 5000, Category: "food", Date: "2024-03-04", Type: core.Expense}, stats)
	assert.True(t, v.IsOutlier)
	assert.Equal(t, 1.0, v.Confidence)
	assert.Len(t, v.Reasons, 3)
}

func TestDetect_Idempotent(t *testing.T) {
	history := []core.Transaction{
		expense(10, "food", "2024-01-01"),
		expense(12, "food", "2024-01-02"),
		expense(11, "food", "2024-01-03"),
		expense(9, "food", "2024-01-04"),
		expense(10, "food", "2024-01-05"),
	}
	c := Candidate{Amount: 50, Category: "food", Date: "2024-01-06", Type: core.Expense}

	first := Detect(c, Collect(history))
	second := Detect(c, Collect(history))
	assert.Equal(t, first, second)
	assert.Equal(t, Collect(history), Collect(history))
}
