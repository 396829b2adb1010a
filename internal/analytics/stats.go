// Package analytics holds the spending statistics shared by the insert path
// (outlier detection) and the summary paths (budget and dashboard).
//
// Every function here is pure: it takes a snapshot of transactions and
// returns fresh values. Nothing is cached between calls.
package analytics

import (
	"math"
	"time"

	"kesef/internal/core"
)

// Aggregate is the running total, count and raw values of one bucket.
type Aggregate struct {
	Total  float64   `json:"total"`
	Count  int       `json:"count"`
	Values []float64 `json:"values"`
}

func (a *Aggregate) add(v float64) {
	a.Total += v
	a.Count++
	a.Values = append(a.Values, v)
}

// Mean returns the arithmetic mean of the values, or 0 for an empty bucket.
func (a Aggregate) Mean() float64 {
	return mean(a.Values)
}

// StdDev returns the population standard deviation of the values.
func (a Aggregate) StdDev() float64 {
	return stddev(a.Values)
}

// Stats groups expense amounts by category and by weekday.
type Stats struct {
	ByCategory map[string]Aggregate
	ByWeekday  map[time.Weekday]Aggregate
}

// Collect aggregates the expense transactions of one user. Income is ignored.
// A transaction whose date does not parse still counts towards its category
// but is left out of the weekday buckets.
func Collect(txs []core.Transaction) Stats {
	categories := make(map[string]*Aggregate)
	weekdays := make(map[time.Weekday]*Aggregate)

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		amount := tx.Amount.Units()

		c, ok := categories[tx.Category]
		if !ok {
			c = &Aggregate{}
			categories[tx.Category] = c
		}
		c.add(amount)

		day, ok := core.ParseDate(tx.Date)
		if !ok {
			continue
		}
		w, ok := weekdays[day.Weekday()]
		if !ok {
			w = &Aggregate{}
			weekdays[day.Weekday()] = w
		}
		w.add(amount)
	}

	stats := Stats{
		ByCategory: make(map[string]Aggregate, len(categories)),
		ByWeekday:  make(map[time.Weekday]Aggregate, len(weekdays)),
	}
	for k, v := range categories {
		stats.ByCategory[k] = *v
	}
	for k, v := range weekdays {
		stats.ByWeekday[k] = *v
	}
	return stats
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

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(values)))
}

// round rounds half up to whole units.
func round(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
