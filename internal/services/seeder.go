package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"kesef/internal/core"
	"kesef/internal/log"
	"kesef/internal/ports"
)

type seedItem struct {
	description string
	min, max    int
}

type seedCategory struct {
	name  string
	items []seedItem
}

var seedCatalog = []seedCategory{
	{"Food", []seedItem{
		{"Groceries", 150, 300},
		{"Restaurant", 80, 200},
		{"Coffee", 15, 35},
		{"Takeaway", 50, 120},
	}},
	{"Transport", []seedItem{
		{"Fuel", 200, 400},
		{"Parking", 20, 50},
		{"Public transport", 30, 90},
		{"Car repair", 300, 800},
	}},
	{"Entertainment", []seedItem{
		{"Cinema", 50, 120},
		{"Restaurant", 150, 350},
		{"Event", 100, 300},
		{"Night out", 80, 200},
	}},
	{"Bills", []seedItem{
		{"Electricity", 200, 500},
		{"Water", 80, 200},
		{"Internet", 80, 150},
		{"Phone", 50, 150},
	}},
	{"Shopping", []seedItem{
		{"Clothes", 100, 500},
		{"Household goods", 50, 300},
		{"Electronics", 200, 2000},
	}},
	{"Health", []seedItem{
		{"Doctor", 200, 500},
		{"Medicine", 50, 200},
		{"Pharmacy", 30, 150},
	}},
}

const (
	salaryCategory    = "Salary"
	salaryDescription = "Monthly salary"
)

// SeedReport totals what a seeding run inserted.
type SeedReport struct {
	Transactions  int        `json:"transactions"`
	TotalIncome   core.Money `json:"totalIncome"`
	TotalExpenses core.Money `json:"totalExpenses"`
}

// Seeder fills a user's history with demo data: one salary and 15 to 25
// expenses for each of the last N months, the current one included.
type Seeder struct {
	store ports.TransactionStore
	rng   *rand.Rand
	now   func() time.Time
}

// NewSeeder returns a seeder whose output depends only on seed and the
// current month.
func NewSeeder(store ports.TransactionStore, seed uint64) *Seeder {
	return &Seeder{
		store: store,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:   time.Now,
	}
}

func (s *Seeder) Seed(ctx context.Context, userID string, months int) (SeedReport, error) {
	if userID == "" {
		return SeedReport{}, core.ErrMissingUser
	}
	if months < 1 {
		return SeedReport{}, errors.New("months must be at least 1")
	}

	now := s.now().UTC()
	var txs []core.Transaction
	for offset := months - 1; offset >= 0; offset-- {
		first := time.Date(now.Year(), now.Month()-time.Month(offset), 1, 0, 0, 0, 0, time.UTC)

		txs = append(txs, core.Transaction{
			UserID:      userID,
			Type:        core.Income,
			Description: salaryDescription,
			Amount:      core.Money{Cents: int64(s.between(10000, 15000)) * 100},
			Category:    salaryCategory,
			Date:        s.dayIn(first),
		})

		n := s.between(15, 25)
		for range n {
			cat := seedCatalog[s.rng.IntN(len(seedCatalog))]
			item := cat.items[s.rng.IntN(len(cat.items))]
			txs = append(txs, core.Transaction{
				UserID:      userID,
				Type:        core.Expense,
				Description: item.description,
				Amount:      core.Money{Cents: int64(s.between(item.min, item.max)) * 100},
				Category:    cat.name,
				Date:        s.dayIn(first),
			})
		}
	}

	var report SeedReport
	for i, tx := range txs {
		tx.ID = core.NewTransactionID()
		tx.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := s.store.InsertTransaction(ctx, tx); err != nil {
			return report, fmt.Errorf("insert seed transaction %d: %w", i, err)
		}
		report.Transactions++
		if tx.Type == core.Income {
			report.TotalIncome.Cents += tx.Amount.Cents
		} else {
			report.TotalExpenses.Cents += tx.Amount.Cents
		}
	}

	log.FromContext(ctx).InfoContext(ctx, "Seeded demo data",
		log.FieldUserID, userID,
		"months", months,
		"transactions", report.Transactions)
	return report, nil
}

// between returns a uniform integer in [lo, hi].
func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Seeder) dayIn(first time.Time) string {
	days := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, s.between(1, days)-1).Format(core.DateLayout)
}
