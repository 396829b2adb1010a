package analytics

import (
	"fmt"

	"kesef/internal/core"
)

const (
	// MinSamples is the bucket size below which a z-score is not trusted.
	MinSamples = 5
	// ZThreshold is the z-score above which an amount is unusual.
	ZThreshold = 2.0
	// AbsoluteThreshold flags any single expense above this amount.
	AbsoluteThreshold = 300.0
)

// Criterion weights in tenths, so sums stay exact.
const (
	categoryWeight = 4
	weekdayWeight  = 3
	absoluteWeight = 3
	maxWeight      = 10
)

// Candidate is a transaction that has not been stored yet.
type Candidate struct {
	Amount   float64
	Category string
	Date     string
	Type     core.TransactionType
}

// CandidateFrom builds a Candidate from a transaction.
func CandidateFrom(tx core.Transaction) Candidate {
	return Candidate{
		Amount:   tx.Amount.Units(),
		Category: tx.Category,
		Date:     tx.Date,
		Type:     tx.Type,
	}
}

// Verdict is the result of outlier detection.
type Verdict struct {
	IsOutlier  bool     `json:"isOutlier"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// Detect judges a candidate against the user's history. Any one of the
// category, weekday or absolute criteria is enough to flag it; confidence
// is the capped sum of the triggered weights. Only expenses are judged.
func Detect(c Candidate, stats Stats) Verdict {
	v := Verdict{Reasons: []string{}}
	if c.Type != core.Expense {
		return v
	}

	weight := 0
	if agg, ok := stats.ByCategory[c.Category]; ok {
		if m, sd, hit := zScoreExceeds(c.Amount, agg); hit {
			weight += categoryWeight
			v.Reasons = append(v.Reasons, fmt.Sprintf(
				"Unusual for category '%s': average %.2f, standard deviation %.2f", c.Category, m, sd))
		}
	}

	if day, ok := core.ParseDate(c.Date); ok {
		if agg, ok := stats.ByWeekday[day.Weekday()]; ok {
			if m, sd, hit := zScoreExceeds(c.Amount, agg); hit {
				weight += weekdayWeight
				v.Reasons = append(v.Reasons, fmt.Sprintf(
					"Unusual for %s: average %.2f, standard deviation %.2f", day.Weekday(), m, sd))
			}
		}
	}

	if c.Amount > AbsoluteThreshold {
		weight += absoluteWeight
		v.Reasons = append(v.Reasons, fmt.Sprintf("Amount exceeds the fixed threshold of %.0f", AbsoluteThreshold))
	}

	v.IsOutlier = weight > 0
	v.Confidence = float64(min(weight, maxWeight)) / 10
	return v
}

// zScoreExceeds reports whether amount lies more than ZThreshold standard
// deviations above the bucket mean. Small buckets and buckets with no
// spread never trigger.
func zScoreExceeds(amount float64, agg Aggregate) (m, sd float64, hit bool) {
	if len(agg.Values) < MinSamples {
		return 0, 0, false
	}
	m = agg.Mean()
	sd = agg.StdDev()
	if sd == 0 {
		return m, sd, false
	}
	return m, sd, (amount-m)/sd > ZThreshold
}
