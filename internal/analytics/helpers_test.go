package analytics

import "kesef/internal/core"

func expense(amount float64, category, date string) core.Transaction {
	m, err := core.FromUnits(amount)
	if err != nil {
		panic(err)
	}
	return core.Transaction{UserID: "u1", Type: core.Expense, Amount: m, Category: category, Date: date}
}

func income(amount float64, date string) core.Transaction {
	tx := expense(amount, "salary", date)
	tx.Type = core.Income
	return tx
}
