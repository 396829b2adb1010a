package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{" 2024-03-02 ", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-02T22:10:00Z", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"2024-13-01", time.Time{}, false},
		{"15/01/2024", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q: ok=%v, want %v", tc.in, ok, tc.ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:      "u1",
		Type:        Expense,
		Description: "groceries",
		Amount:      Money{Cents: 4200},
		Category:    "food",
		Date:        "2024-05-01",
		Location:    &Location{Latitude: 32.08, Longitude: 34.78},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"missing user", func(tx *Transaction) { tx.UserID = "" }, ErrMissingUser},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 101) }, ErrDescriptionTooLong},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"bad date", func(tx *Transaction) { tx.Date = "yesterday" }, ErrInvalidDate},
		{"latitude", func(tx *Transaction) { tx.Location = &Location{Latitude: 91} }, ErrInvalidLocation},
		{"longitude", func(tx *Transaction) { tx.Location = &Location{Longitude: -181} }, ErrInvalidLocation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration("Dana", "dana@example.com", "secret1"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateRegistration("D", "dana@example.com", "secret1"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("got %v", err)
	}
	if err := ValidateRegistration("Dana", "not-an-email", "secret1"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("got %v", err)
	}
	if err := ValidateRegistration("Dana", "dana@example.com", "12345"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("got %v", err)
	}
}

func TestBudgetPreferenceValidate(t *testing.T) {
	p := BudgetPreference{
		UserID: "u1",
		Goals:  []Goal{{Category: "Food", Goal: GoalLess}},
		Habits: []Habit{{Description: "coffee", Amount: Money{Cents: 500}, Frequency: Daily}},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	p.Goals = []Goal{{Category: "Food", Goal: "maybe"}}
	if err := p.Validate(); !errors.Is(err, ErrInvalidGoal) {
		t.Fatalf("got %v", err)
	}

	p.Goals = nil
	p.Habits = []Habit{{Description: "gym", Amount: Money{Cents: 100}, Frequency: "yearly"}}
	if err := p.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("got %v", err)
	}
}

func TestHabitMonthlyCost(t *testing.T) {
	cases := []struct {
		f    Frequency
		want float64
	}{
		{Daily, 1500},
		{Weekly, 200},
		{Monthly, 50},
		{"unknown", 50},
	}
	for _, tc := range cases {
		h := Habit{Amount: Money{Cents: 5000}, Frequency: tc.f}
		if got := h.MonthlyCost(); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.f, got, tc.want)
		}
	}
}
