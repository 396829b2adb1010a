package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"kesef/internal/core"
)

// OtherCategory collects expenses recorded without a category.
const OtherCategory = "Other"

const (
	lessGoalFactor = -0.2
	moreGoalFactor = 0.1
)

// CategoryBudget is the recommended monthly budget for one category.
// Amounts are rounded to whole currency units.
type CategoryBudget struct {
	Category       string `json:"category"`
	Budget         int64  `json:"budget"`
	AverageExpense int64  `json:"averageExpense"`
	GoalAdjustment int64  `json:"goalAdjustment"`
	HabitCost      int64  `json:"habitCost"`
	Transactions   int    `json:"transactions"`
}

// Summary is the budget recommendation for one user.
type Summary struct {
	TotalBudget     int64            `json:"totalBudget"`
	CategoryBudgets []CategoryBudget `json:"categoryBudgets"`
	ExpectedIncome  int64            `json:"expectedIncome"`
	ExpectedSavings int64            `json:"expectedSavings"`
	Notes           []string         `json:"notes"`
}

type categorySpend struct {
	name   string
	total  float64
	count  int
	months map[string]float64
}

// Synthesize builds a monthly budget from spending history, adjusted by the
// user's goals and recurring habits. A nil preference means no goals and no
// habits.
func Synthesize(txs []core.Transaction, prefs *core.BudgetPreference) Summary {
	var goals []core.Goal
	var habits []core.Habit
	if prefs != nil {
		goals = prefs.Goals
		habits = prefs.Habits
	}

	avgIncome := averageMonthlyIncome(txs)
	spend := groupExpenses(txs)

	budgets := make([]CategoryBudget, 0, len(spend))
	var total float64
	for _, cs := range spend {
		average := cs.total
		if len(cs.months) > 0 {
			average = monthlyMean(cs.months)
		}
		if average <= 0 {
			continue
		}

		goalAdj := goalAdjustment(cs.name, average, goals)
		habitCost := habitCost(cs.name, habits)
		budget := max(0, average+goalAdj+habitCost)
		total += budget

		budgets = append(budgets, CategoryBudget{
			Category:       cs.name,
			Budget:         round(budget),
			AverageExpense: round(average),
			GoalAdjustment: round(goalAdj),
			HabitCost:      round(habitCost),
			Transactions:   cs.count,
		})
	}

	sort.SliceStable(budgets, func(i, j int) bool {
		return budgets[i].Budget > budgets[j].Budget
	})

	var savings float64
	if avgIncome > 0 {
		savings = avgIncome - total
	}

	return Summary{
		TotalBudget:     round(total),
		CategoryBudgets: budgets,
		ExpectedIncome:  round(avgIncome),
		ExpectedSavings: round(savings),
		Notes:           budgetNotes(len(budgets), savings),
	}
}

// groupExpenses returns per-category spending in first-seen order.
// Amounts whose date does not parse count towards the raw total only.
func groupExpenses(txs []core.Transaction) []*categorySpend {
	var order []*categorySpend
	byName := make(map[string]*categorySpend)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Amount.Cents <= 0 {
			continue
		}
		name := strings.TrimSpace(tx.Category)
		if name == "" {
			name = OtherCategory
		}
		cs, ok := byName[name]
		if !ok {
			cs = &categorySpend{name: name, months: make(map[string]float64)}
			byName[name] = cs
			order = append(order, cs)
		}
		amount := tx.Amount.Units()
		cs.total += amount
		cs.count++
		if day, ok := core.ParseDate(tx.Date); ok {
			cs.months[core.MonthKey(day)] += amount
		}
	}
	return order
}

func averageMonthlyIncome(txs []core.Transaction) float64 {
	months := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != core.Income || tx.Amount.Cents <= 0 {
			continue
		}
		day, ok := core.ParseDate(tx.Date)
		if !ok {
			continue
		}
		months[core.MonthKey(day)] += tx.Amount.Units()
	}
	return monthlyMean(months)
}

// monthlyMean averages month totals in calendar order so the float sum does
// not depend on map iteration.
func monthlyMean(months map[string]float64) float64 {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	totals := make([]float64, 0, len(keys))
	for _, k := range keys {
		totals = append(totals, months[k])
	}
	return mean(totals)
}

// goalAdjustment applies the first goal whose category equals name,
// ignoring case and surrounding space.
func goalAdjustment(name string, average float64, goals []core.Goal) float64 {
	for _, g := range goals {
		if !strings.EqualFold(strings.TrimSpace(g.Category), name) {
			continue
		}
		switch g.Goal {
		case core.GoalLess:
			return average * lessGoalFactor
		case core.GoalMore:
			return average * moreGoalFactor
		}
		return 0
	}
	return 0
}

// habitCost sums the monthly cost of every habit whose description
// mentions the category name.
func habitCost(name string, habits []core.Habit) float64 {
	needle := strings.ToLower(name)
	var cost float64
	for _, h := range habits {
		if h.Description == "" {
			continue
		}
		if strings.Contains(strings.ToLower(h.Description), needle) {
			cost += h.MonthlyCost()
		}
	}
	return cost
}

func budgetNotes(categories int, savings float64) []string {
	notes := make([]string, 0, 2)
	if categories == 0 {
		notes = append(notes, "Add expenses to get a recommended budget per category.")
	} else {
		notes = append(notes, fmt.Sprintf("Found %d categories with expenses.", categories))
	}
	switch {
	case savings < 0:
		notes = append(notes, "Expected expenses exceed income. Consider cutting back.")
	case savings > 0:
		notes = append(notes, fmt.Sprintf("Expected savings of %s per month.", humanize.Comma(round(savings))))
	}
	return notes
}
