package analytics

import (
	"sort"
	"strings"
	"time"

	"kesef/internal/core"
)

// Trend directions over the last three months of spending.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

const (
	highSpendThreshold = 5000.0
	lowSpendThreshold  = 2000.0
	assumedSavingShare = 0.2
)

type CategoryStat struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Amount   float64 `json:"amount"`
}

type DayTotal struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type MonthTotals struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type Predictions struct {
	NextMonth      float64 `json:"nextMonth"`
	YearlySavings  float64 `json:"yearlySavings"`
	Recommendation string  `json:"recommendation"`
}

// Overview is the dashboard view of a user's history.
type Overview struct {
	TotalIncome        float64           `json:"totalIncome"`
	TotalExpenses      float64           `json:"totalExpenses"`
	Balance            float64           `json:"balance"`
	SavingsRate        float64           `json:"savingsRate"`
	ExpenseRatio       float64           `json:"expenseRatio"`
	EfficiencyScore    float64           `json:"efficiencyScore"`
	DailyAverage       float64           `json:"dailyAverage"`
	WeeklyAverage      float64           `json:"weeklyAverage"`
	Categories         []CategoryStat    `json:"categories"`
	MostCommonCategory string            `json:"mostCommonCategory"`
	HighestExpense     *core.Transaction `json:"highestExpense,omitempty"`
	MostExpensiveDay   *DayTotal         `json:"mostExpensiveDay,omitempty"`
	Monthly            []MonthTotals     `json:"monthly"`
	Trend              string            `json:"trend"`
	Outliers           int               `json:"outliers"`
	Predictions        Predictions       `json:"predictions"`
}

// Summarize computes dashboard figures from the same snapshot the budget
// and outlier paths use.
func Summarize(txs []core.Transaction) Overview {
	var (
		income, expenses float64
		expenseCount     int
		highest          *core.Transaction
		outliers         int
	)
	var catOrder []*CategoryStat
	cats := make(map[string]*CategoryStat)
	days := make(map[string]float64)
	var dayOrder []string
	weeks := make(map[time.Time]struct{})
	var weeklyTotal float64
	months := make(map[string]*MonthTotals)

	for _, tx := range txs {
		amount := tx.Amount.Units()
		day, dated := core.ParseDate(tx.Date)
		if dated {
			key := core.MonthKey(day)
			mt, ok := months[key]
			if !ok {
				mt = &MonthTotals{Month: key}
				months[key] = mt
			}
			if tx.Type == core.Income {
				mt.Income += amount
			} else if tx.Type == core.Expense {
				mt.Expenses += amount
			}
		}

		switch tx.Type {
		case core.Income:
			income += amount
			continue
		case core.Expense:
		default:
			continue
		}

		expenses += amount
		expenseCount++
		if tx.IsOutlier {
			outliers++
		}
		if amount > 0 && (highest == nil || amount > highest.Amount.Units()) {
			h := tx
			highest = &h
		}

		name := strings.TrimSpace(tx.Category)
		if name == "" {
			name = OtherCategory
		}
		cs, ok := cats[name]
		if !ok {
			cs = &CategoryStat{Category: name}
			cats[name] = cs
			catOrder = append(catOrder, cs)
		}
		cs.Count++
		cs.Amount += amount

		if _, ok := days[tx.Date]; !ok {
			dayOrder = append(dayOrder, tx.Date)
		}
		days[tx.Date] += amount

		if dated {
			weeks[day.AddDate(0, 0, -int(day.Weekday()))] = struct{}{}
			weeklyTotal += amount
		}
	}

	o := Overview{
		TotalIncome:   round2(income),
		TotalExpenses: round2(expenses),
		Balance:       round2(income - expenses),
		Categories:    make([]CategoryStat, 0, len(catOrder)),
		Trend:         TrendStable,
		Outliers:      outliers,
	}

	if income > 0 {
		o.SavingsRate = round2((income - expenses) / income * 100)
		o.ExpenseRatio = round2(expenses / income * 100)
		o.EfficiencyScore = round2(clamp(100-o.ExpenseRatio+o.SavingsRate, 0, 100))
	}
	if len(days) > 0 {
		o.DailyAverage = round2(expenses / float64(len(days)))
	}
	if len(weeks) > 0 {
		o.WeeklyAverage = round2(weeklyTotal / float64(len(weeks)))
	}

	var common *CategoryStat
	for _, cs := range catOrder {
		if common == nil || cs.Count > common.Count {
			common = cs
		}
		o.Categories = append(o.Categories, CategoryStat{Category: cs.Category, Count: cs.Count, Amount: round2(cs.Amount)})
	}
	sort.SliceStable(o.Categories, func(i, j int) bool {
		return o.Categories[i].Amount > o.Categories[j].Amount
	})
	if common != nil {
		o.MostCommonCategory = common.Category
	}

	o.HighestExpense = highest

	var busiest *DayTotal
	for _, d := range dayOrder {
		if days[d] > 0 && (busiest == nil || days[d] > busiest.Amount) {
			busiest = &DayTotal{Date: d, Amount: days[d]}
		}
	}
	if busiest != nil {
		busiest.Amount = round2(busiest.Amount)
		o.MostExpensiveDay = busiest
	}

	o.Monthly = monthlySeries(months)
	o.Trend = trend(o.Monthly)
	o.Predictions = predict(expenses, expenseCount)
	return o
}

func monthlySeries(months map[string]*MonthTotals) []MonthTotals {
	out := make([]MonthTotals, 0, len(months))
	for _, mt := range months {
		out = append(out, MonthTotals{Month: mt.Month, Income: round2(mt.Income), Expenses: round2(mt.Expenses)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// trend compares expenses of the first and last of the most recent three
// months.
func trend(series []MonthTotals) string {
	if len(series) < 2 {
		return TrendStable
	}
	recent := series[max(0, len(series)-3):]
	first, last := recent[0].Expenses, recent[len(recent)-1].Expenses
	switch {
	case last > first:
		return TrendUp
	case last < first:
		return TrendDown
	}
	return TrendStable
}

func predict(expenses float64, count int) Predictions {
	avg := expenses / float64(max(1, count))
	p := Predictions{
		NextMonth:      round2(avg * 30),
		YearlySavings:  round2(avg * 12 * assumedSavingShare),
		Recommendation: "Keep your current spending habits.",
	}
	switch {
	case avg > highSpendThreshold:
		p.Recommendation = "Consider cutting non-essential expenses."
	case avg < lowSpendThreshold:
		p.Recommendation = "You are doing a great job saving!"
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
