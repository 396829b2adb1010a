package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesef/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kesef.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kesef.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(context.Background()))
	repo.Close()
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := core.User{ID: "u1", Name: "Noa", Email: "Noa@Example.com", PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, repo.CreateUser(ctx, u))
	assert.ErrorIs(t, repo.CreateUser(ctx, core.User{ID: "u2", Name: "x", Email: "noa@example.com", PasswordHash: "h", CreatedAt: time.Now()}), core.ErrEmailTaken)

	got, err := repo.GetUserByEmail(ctx, "NOA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "noa@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.IsAdmin)

	_, err = repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	promoted, err := repo.SetAdmin(ctx, "noa@example.com", true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	_, err = repo.SetAdmin(ctx, "ghost@example.com", true)
	assert.ErrorIs(t, err, core.ErrNotFound)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		{ID: "01A", UserID: "u1", Type: core.Expense, Description: "bread", Amount: core.Money{Cents: 1250}, Category: "food", Date: "2024-06-01", CreatedAt: base},
		{ID: "01B", UserID: "u1", Type: core.Income, Description: "salary", Amount: core.Money{Cents: 1200000}, Category: "salary", Date: "2024-06-01", CreatedAt: base.Add(time.Hour)},
		{ID: "01C", UserID: "u1", Type: core.Expense, Description: "tv", Amount: core.Money{Cents: 350000}, Category: "shopping", Date: "2024-06-03", IsOutlier: true, CreatedAt: base,
			Location: &core.Location{Latitude: 31.77, Longitude: 35.21, Address: "Jaffa St", PlaceName: "Store"}},
		{ID: "01D", UserID: "u2", Type: core.Expense, Amount: core.Money{Cents: 100}, Category: "food", Date: "2024-06-09", CreatedAt: base},
	}
	for _, tx := range txs {
		require.NoError(t, repo.InsertTransaction(ctx, tx))
	}

	list, err := repo.ListTransactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"01C", "01B", "01A"}, []string{list[0].ID, list[1].ID, list[2].ID})

	assert.True(t, list[0].IsOutlier)
	require.NotNil(t, list[0].Location)
	assert.Equal(t, "Store", list[0].Location.PlaceName)
	assert.Equal(t, int64(350000), list[0].Amount.Cents)
	assert.Nil(t, list[2].Location)
	assert.True(t, list[2].CreatedAt.Equal(base))

	limited, err := repo.ListTransactions(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := repo.ListTransactions(ctx, "nobody", 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, repo.DeleteTransaction(ctx, "01A"))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "01A"), core.ErrNotFound)
	_, err = repo.GetTransaction(ctx, "01A")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)

	first := core.BudgetPreference{
		UserID: "u1",
		Goals:  []core.Goal{{Category: "food", Goal: core.GoalLess}, {Category: "fun", Goal: core.GoalMore}},
		Habits: []core.Habit{{Description: "coffee", Amount: core.Money{Cents: 1500}, Frequency: core.Daily}},
	}
	require.NoError(t, repo.SavePreferences(ctx, first))

	p, err = repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, first.Goals, p.Goals)
	assert.Equal(t, first.Habits, p.Habits)
	assert.False(t, p.UpdatedAt.IsZero())

	second := core.BudgetPreference{UserID: "u1", Goals: []core.Goal{{Category: "rent", Goal: core.GoalLess}}}
	require.NoError(t, repo.SavePreferences(ctx, second))

	p, err = repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.Goals, p.Goals)
	assert.Empty(t, p.Habits)
}
