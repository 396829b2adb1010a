package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesef/internal/core"
)

func TestSynthesize_Empty(t *testing.T) {
	s := Synthesize(nil, nil)

	assert.Zero(t, s.TotalBudget)
	assert.Empty(t, s.CategoryBudgets)
	assert.Zero(t, s.ExpectedIncome)
	assert.Zero(t, s.ExpectedSavings)
	require.Len(t, s.Notes, 1)
	assert.Contains(t, s.Notes[0], "Add expenses")
}

func TestSynthesize_MonthlyAverage(t *testing.T) {
	s := Synthesize([]core.Transaction{
		expense(100, "food", "2024-01-03"),
		expense(200, "food", "2024-01-20"),
		expense(500, "food", "2024-02-11"),
	}, nil)

	require.Len(t, s.CategoryBudgets, 1)
	b := s.CategoryBudgets[0]
	assert.Equal(t, "food", b.Category)
	assert.EqualValues(t, 400, b.AverageExpense)
	assert.EqualValues(t, 400, b.Budget)
	assert.Equal(t, 3, b.Transactions)
	assert.EqualValues(t, 400, s.TotalBudget)
	assert.Equal(t, []string{"Found 1 categories with expenses."}, s.Notes)
}

func TestSynthesize_FiltersAndFallbacks(t *testing.T) {
	s := Synthesize([]core.Transaction{
		expense(0, "free", "2024-01-01"),
		expense(30, "  ", "2024-01-01"),
		expense(50, "misc", "garbage"),
		income(1000, "2024-01-01"),
	}, nil)

	got := map[string]CategoryBudget{}
	for _, b := range s.CategoryBudgets {
		got[b.Category] = b
	}
	assert.NotContains(t, got, "free")
	assert.EqualValues(t, 30, got[OtherCategory].Budget)
	assert.EqualValues(t, 50, got["misc"].AverageExpense)
}

func TestSynthesize_LessGoal(t *testing.T) {
	prefs := &core.BudgetPreference{Goals: []core.Goal{
		{Category: " FOOD ", Goal: core.GoalLess},
		{Category: "food", Goal: core.GoalMore},
	}}
	s := Synthesize([]core.Transaction{expense(1000, "Food", "2024-03-01")}, prefs)

	require.Len(t, s.CategoryBudgets, 1)
	assert.EqualValues(t, -200, s.CategoryBudgets[0].GoalAdjustment)
	assert.EqualValues(t, 800, s.CategoryBudgets[0].Budget)
}

func TestSynthesize_MoreGoalIsExactMatch(t *testing.T) {
	prefs := &core.BudgetPreference{Goals: []core.Goal{
		{Category: "Foo", Goal: core.GoalLess},
		{Category: "food", Goal: core.GoalMore},
	}}
	s := Synthesize([]core.Transaction{expense(1000, "Food", "2024-03-01")}, prefs)

	assert.EqualValues(t, 100, s.CategoryBudgets[0].GoalAdjustment)
	assert.EqualValues(t, 1100, s.CategoryBudgets[0].Budget)
}

func TestSynthesize_HabitsAccumulate(t *testing.T) {
	prefs := &core.BudgetPreference{Habits: []core.Habit{
		{Description: "Morning Coffee", Amount: core.Money{Cents: 5000}, Frequency: core.Daily},
		{Description: "coffee beans", Amount: core.Money{Cents: 10000}, Frequency: core.Weekly},
		{Description: "gym", Amount: core.Money{Cents: 20000}, Frequency: core.Monthly},
	}}
	s := Synthesize([]core.Transaction{
		expense(100, "coffee", "2024-03-01"),
		expense(100, "food", "2024-03-01"),
	}, prefs)

	require.Len(t, s.CategoryBudgets, 2)
	coffee := s.CategoryBudgets[0]
	assert.Equal(t, "coffee", coffee.Category)
	assert.EqualValues(t, 1900, coffee.HabitCost)
	assert.EqualValues(t, 2000, coffee.Budget)

	food := s.CategoryBudgets[1]
	assert.Zero(t, food.HabitCost)
	assert.EqualValues(t, 100, food.Budget)
}

func TestSynthesize_SortedDescending(t *testing.T) {
	s := Synthesize([]core.Transaction{
		expense(10, "a", "2024-01-01"),
		expense(300, "b", "2024-01-01"),
		expense(50, "c", "2024-01-01"),
	}, nil)

	var order []string
	for _, b := range s.CategoryBudgets {
		order = append(order, b.Category)
	}
	assert.Equal(t, []string{"b", "c", "a"}, order)
}

func TestSynthesize_TotalUsesUnroundedBudgets(t *testing.T) {
	s := Synthesize([]core.Transaction{
		expense(100.4, "a", "2024-01-01"),
		expense(100.4, "b", "2024-01-01"),
	}, nil)

	assert.EqualValues(t, 100, s.CategoryBudgets[0].Budget)
	assert.EqualValues(t, 100, s.CategoryBudgets[1].Budget)
	assert.EqualValues(t, 201, s.TotalBudget)
}

func TestSynthesize_Savings(t *testing.T) {
	history := []core.Transaction{
		income(10000, "2024-01-01"),
		income(12000, "2024-02-01"),
		expense(400, "food", "2024-01-05"),
		expense(400, "food", "2024-02-05"),
	}

	s := Synthesize(history, nil)
	assert.EqualValues(t, 11000, s.ExpectedIncome)
	assert.EqualValues(t, 10600, s.ExpectedSavings)
	assert.Contains(t, s.Notes, "Expected savings of 10,600 per month.")

	s = Synthesize(append(history, expense(30000, "rent", "2024-01-01")), nil)
	assert.Negative(t, s.ExpectedSavings)
	assert.Contains(t, s.Notes, "Expected expenses exceed income. Consider cutting back.")
}

func TestSynthesize_NoIncomeNoSavingsClaim(t *testing.T) {
	s := Synthesize([]core.Transaction{expense(100, "food", "2024-01-01")}, nil)
	assert.Zero(t, s.ExpectedSavings)
	assert.Len(t, s.Notes, 1)
}
