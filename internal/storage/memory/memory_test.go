package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"kesef/internal/core"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := core.User{ID: "u1", Name: "Dana", Email: "Dana@Example.com", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateUser(ctx, core.User{ID: "u2", Email: "dana@example.com"}); !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, " DANA@example.com")
	if err != nil || got.ID != "u1" || got.Email != "dana@example.com" {
		t.Fatalf("lookup by email: %+v %v", got, err)
	}

	promoted, err := s.SetAdmin(ctx, "dana@example.com", true)
	if err != nil || !promoted.IsAdmin {
		t.Fatalf("set admin: %+v %v", promoted, err)
	}
	if _, err := s.SetAdmin(ctx, "nobody@example.com", true); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, tx := range []core.Transaction{
		{ID: "a", UserID: "u1", Date: "2024-05-01", CreatedAt: base},
		{ID: "b", UserID: "u1", Date: "2024-05-03", CreatedAt: base},
		{ID: "c", UserID: "u1", Date: "2024-05-01", CreatedAt: base.Add(time.Minute)},
		{ID: "d", UserID: "u2", Date: "2024-05-09", CreatedAt: base},
	} {
		if err := s.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	list, err := s.ListTransactions(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	var ids string
	for _, tx := range list {
		ids += tx.ID
	}
	if ids != "bca" {
		t.Fatalf("order = %q, want bca", ids)
	}

	limited, _ := s.ListTransactions(ctx, "u1", 2)
	if len(limited) != 2 {
		t.Fatalf("limit ignored: %d", len(limited))
	}

	if err := s.DeleteTransaction(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTransaction(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPreferencesOverwrite(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.GetPreferences(ctx, "u1")
	if err != nil || p != nil {
		t.Fatalf("expected none, got %+v %v", p, err)
	}

	_ = s.SavePreferences(ctx, core.BudgetPreference{UserID: "u1", Goals: []core.Goal{{Category: "food", Goal: core.GoalLess}}})
	_ = s.SavePreferences(ctx, core.BudgetPreference{UserID: "u1", Habits: []core.Habit{{Description: "coffee", Frequency: core.Daily}}})

	p, _ = s.GetPreferences(ctx, "u1")
	if len(p.Goals) != 0 || len(p.Habits) != 1 {
		t.Fatalf("expected wholesale overwrite, got %+v", p)
	}
}
