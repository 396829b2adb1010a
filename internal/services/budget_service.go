package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"kesef/internal/analytics"
	"kesef/internal/core"
	"kesef/internal/ports"
)

type budgetStore interface {
	ports.TransactionStore
	ports.PreferenceStore
}

// BudgetService keeps budget preferences and derives summaries from them.
type BudgetService struct {
	store budgetStore
	now   func() time.Time
}

func NewBudgetService(store budgetStore) *BudgetService {
	return &BudgetService{store: store, now: time.Now}
}

// SavePreferences replaces the user's goals and habits wholesale.
func (s *BudgetService) SavePreferences(ctx context.Context, userID string, goals []core.Goal, habits []core.Habit) (core.BudgetPreference, error) {
	if goals == nil {
		goals = []core.Goal{}
	}
	if habits == nil {
		habits = []core.Habit{}
	}
	p := core.BudgetPreference{
		UserID:    strings.TrimSpace(userID),
		Goals:     goals,
		Habits:    habits,
		UpdatedAt: s.now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return core.BudgetPreference{}, err
	}
	if err := s.store.SavePreferences(ctx, p); err != nil {
		return core.BudgetPreference{}, fmt.Errorf("save preferences: %w", err)
	}
	return p, nil
}

// Preferences returns the stored record, or an empty one.
func (s *BudgetService) Preferences(ctx context.Context, userID string) (core.BudgetPreference, error) {
	p, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return core.BudgetPreference{}, fmt.Errorf("load preferences: %w", err)
	}
	if p == nil {
		return core.BudgetPreference{UserID: userID, Goals: []core.Goal{}, Habits: []core.Habit{}}, nil
	}
	return *p, nil
}

// Summary synthesizes a budget from the user's full history and preferences.
func (s *BudgetService) Summary(ctx context.Context, userID string) (analytics.Summary, error) {
	var (
		txs   []core.Transaction
		prefs *core.BudgetPreference
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, 0)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prefs, err = s.store.GetPreferences(gctx, userID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.Summary{}, err
	}

	return analytics.Synthesize(txs, prefs), nil
}

// Overview computes dashboard aggregates over the user's full history.
func (s *BudgetService) Overview(ctx context.Context, userID string) (analytics.Overview, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return analytics.Overview{}, fmt.Errorf("load history: %w", err)
	}
	return analytics.Summarize(txs), nil
}
