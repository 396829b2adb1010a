package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kesef/internal/core"
)

// GetPreferences loads goals and habits in their saved order.
func (r *SQLiteRepository) GetPreferences(ctx context.Context, userID string) (*core.BudgetPreference, error) {
	var updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM budget_preferences WHERE user_id = ?`, userID).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	p := &core.BudgetPreference{UserID: userID, UpdatedAt: parseTime(updatedAt)}

	if p.Goals, err = r.loadGoals(ctx, userID); err != nil {
		return nil, err
	}
	if p.Habits, err = r.loadHabits(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// loadGoals and loadHabits each release their rows before returning; the
// pool holds a single connection.
func (r *SQLiteRepository) loadGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, goal FROM budget_goals WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []core.Goal{}
	for rows.Next() {
		var g core.Goal
		var dir string
		if err := rows.Scan(&g.Category, &dir); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Goal = core.GoalDirection(dir)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) loadHabits(ctx context.Context, userID string) ([]core.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT description, amount_cents, frequency FROM budget_habits WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	habits := []core.Habit{}
	for rows.Next() {
		var h core.Habit
		var freq string
		if err := rows.Scan(&h.Description, &h.Amount.Cents, &freq); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		h.Frequency = core.Frequency(freq)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// SavePreferences replaces the user's goals and habits in one transaction.
func (r *SQLiteRepository) SavePreferences(ctx context.Context, p core.BudgetPreference) (err error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = dbtx.Rollback()
		}
	}()

	if _, err = dbtx.ExecContext(ctx,
		`INSERT INTO budget_preferences (user_id, updated_at) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET updated_at = excluded.updated_at`,
		p.UserID, formatTime(p.UpdatedAt)); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	if _, err = dbtx.ExecContext(ctx, `DELETE FROM budget_goals WHERE user_id = ?`, p.UserID); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}
	if _, err = dbtx.ExecContext(ctx, `DELETE FROM budget_habits WHERE user_id = ?`, p.UserID); err != nil {
		return fmt.Errorf("clear habits: %w", err)
	}

	for i, g := range p.Goals {
		if _, err = dbtx.ExecContext(ctx,
			`INSERT INTO budget_goals (user_id, position, category, goal) VALUES (?, ?, ?, ?)`,
			p.UserID, i, g.Category, string(g.Goal)); err != nil {
			return fmt.Errorf("insert goal %d: %w", i, err)
		}
	}
	for i, h := range p.Habits {
		if _, err = dbtx.ExecContext(ctx,
			`INSERT INTO budget_habits (user_id, position, description, amount_cents, frequency) VALUES (?, ?, ?, ?, ?)`,
			p.UserID, i, h.Description, h.Amount.Cents, string(h.Frequency)); err != nil {
			return fmt.Errorf("insert habit %d: %w", i, err)
		}
	}

	if err = dbtx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Budget preferences saved",
		"user_id", p.UserID,
		"goals", len(p.Goals),
		"habits", len(p.Habits))
	return nil
}
