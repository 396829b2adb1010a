package core

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

const (
	GoalLess GoalDirection = "less"
	GoalMore GoalDirection = "more"
)

// DateLayout is the canonical calendar date format for transactions.
const DateLayout = "2006-01-02"

// MaxDescriptionLength bounds transaction descriptions.
const MaxDescriptionLength = 100

type (
	TransactionType string
	Frequency       string
	GoalDirection   string

	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Address   string  `json:"address,omitempty"`
		PlaceName string  `json:"placeName,omitempty"`
	}

	// Transaction is a single income or expense record owned by a user.
	// Date is kept as the raw string the client sent; history may contain
	// values that do not parse.
	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Date        string          `json:"date"`
		IsOutlier   bool            `json:"isOutlier"`
		Location    *Location       `json:"location,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		IsAdmin      bool      `json:"isAdmin"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Goal struct {
		Category string        `json:"category"`
		Goal     GoalDirection `json:"goal"`
	}

	Habit struct {
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Frequency   Frequency `json:"frequency"`
	}

	// BudgetPreference holds one user's goals and recurring habits.
	// Saving replaces the whole record.
	BudgetPreference struct {
		UserID    string    `json:"userId"`
		Goals     []Goal    `json:"goals"`
		Habits    []Habit   `json:"habits"`
		UpdatedAt time.Time `json:"updatedAt,omitempty"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidLocation    = errors.New("invalid location")
	ErrMissingUser        = errors.New("missing user id")
	ErrInvalidName        = errors.New("name must be at least 2 characters")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidGoal        = errors.New("invalid goal")
	ErrInvalidFrequency   = errors.New("invalid frequency")

	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ParseDate parses a transaction date. Full timestamps are accepted too and
// reduced to their calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// MonthKey formats the calendar month of t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// Validate checks a transaction about to be stored. Stored history is never
// re-validated.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUser
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if len([]rune(t.Description)) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("%w: %q must be YYYY-MM-DD", ErrInvalidDate, t.Date)
	}
	if t.Location != nil {
		if err := t.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateRegistration(name, email, password string) error {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return ErrInvalidName
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	if len(password) < 6 {
		return ErrWeakPassword
	}
	return nil
}

func (g Goal) Validate() error {
	if g.Goal != GoalLess && g.Goal != GoalMore {
		return fmt.Errorf("%w: %q", ErrInvalidGoal, g.Goal)
	}
	return nil
}

func (h Habit) Validate() error {
	if _, ok := monthlyMultipliers[h.Frequency]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, h.Frequency)
	}
	return h.Amount.Validate()
}

func (p BudgetPreference) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingUser
	}
	for i, g := range p.Goals {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
	}
	for i, h := range p.Habits {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("habit %d: %w", i, err)
		}
	}
	return nil
}

// SortNewestFirst orders transactions by date, then creation time, then ID,
// all descending.
func SortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
