package core

// monthlyMultipliers converts a recurring amount into its monthly cost.
// A month is approximated as 30 days or 4 weeks.
var monthlyMultipliers = map[Frequency]float64{
	Daily:   30,
	Weekly:  4,
	Monthly: 1,
}

// MonthlyMultiplier returns how many times a habit of this frequency occurs
// in a month. Unknown frequencies count once, like a monthly habit.
func (f Frequency) MonthlyMultiplier() float64 {
	if m, ok := monthlyMultipliers[f]; ok {
		return m
	}
	return 1
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	_, ok := monthlyMultipliers[f]
	return ok
}

// MonthlyCost is the habit amount normalized to one month, in currency units.
func (h Habit) MonthlyCost() float64 {
	return h.Amount.Units() * h.Frequency.MonthlyMultiplier()
}
