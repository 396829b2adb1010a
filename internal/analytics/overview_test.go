package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesef/internal/core"
)

func TestSummarize_Empty(t *testing.T) {
	o := Summarize(nil)
	assert.Zero(t, o.TotalIncome)
	assert.Zero(t, o.EfficiencyScore)
	assert.Empty(t, o.Categories)
	assert.Nil(t, o.HighestExpense)
	assert.Nil(t, o.MostExpensiveDay)
	assert.Equal(t, TrendStable, o.Trend)
	assert.Equal(t, "You are doing a great job saving!", o.Predictions.Recommendation)
}

func TestSummarize_Totals(t *testing.T) {
	flagged := expense(900, "shopping", "2024-02-10")
	flagged.IsOutlier = true
	txs := []core.Transaction{
		income(10000, "2024-01-01"),
		expense(100, "food", "2024-01-07"), // Sunday
		expense(200, "food", "2024-01-08"), // Monday, same week
		expense(50, "", "2024-01-08"),
		income(10000, "2024-02-01"),
		flagged,
		expense(150, "food", "2024-03-02"),
	}

	o := Summarize(txs)

	assert.Equal(t, 20000.0, o.TotalIncome)
	assert.Equal(t, 1400.0, o.TotalExpenses)
	assert.Equal(t, 18600.0, o.Balance)
	assert.Equal(t, 93.0, o.SavingsRate)
	assert.Equal(t, 7.0, o.ExpenseRatio)
	assert.Equal(t, 100.0, o.EfficiencyScore)
	assert.Equal(t, 1, o.Outliers)

	// four distinct dates, three distinct weeks
	assert.Equal(t, 350.0, o.DailyAverage)
	assert.InDelta(t, 466.67, o.WeeklyAverage, 0.001)

	require.Len(t, o.Categories, 3)
	assert.Equal(t, CategoryStat{Category: "shopping", Count: 1, Amount: 900}, o.Categories[0])
	assert.Equal(t, CategoryStat{Category: "food", Count: 3, Amount: 450}, o.Categories[1])
	assert.Equal(t, OtherCategory, o.Categories[2].Category)
	assert.Equal(t, "food", o.MostCommonCategory)

	require.NotNil(t, o.HighestExpense)
	assert.Equal(t, "shopping", o.HighestExpense.Category)
	require.NotNil(t, o.MostExpensiveDay)
	assert.Equal(t, DayTotal{Date: "2024-02-10", Amount: 900}, *o.MostExpensiveDay)

	require.Len(t, o.Monthly, 3)
	assert.Equal(t, MonthTotals{Month: "2024-01", Income: 10000, Expenses: 350}, o.Monthly[0])
	assert.Equal(t, TrendDown, o.Trend)

	assert.Equal(t, 8400.0, o.Predictions.NextMonth)
	assert.Equal(t, 672.0, o.Predictions.YearlySavings)
}

func TestTrend(t *testing.T) {
	series := func(values ...float64) []MonthTotals {
		out := make([]MonthTotals, len(values))
		for i, v := range values {
			out[i] = MonthTotals{Expenses: v}
		}
		return out
	}
	assert.Equal(t, TrendStable, trend(series(100)))
	assert.Equal(t, TrendUp, trend(series(900, 100, 200, 300)))
	assert.Equal(t, TrendDown, trend(series(300, 200)))
	assert.Equal(t, TrendStable, trend(series(5, 100, 5)))
}

func TestPredict_Recommendations(t *testing.T) {
	assert.Equal(t, "Consider cutting non-essential expenses.", predict(6000, 1).Recommendation)
	assert.Equal(t, "Keep your current spending habits.", predict(3000, 1).Recommendation)
}
