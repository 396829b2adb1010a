// Package ports declares the storage and outbound interfaces the services
// depend on. Implementations live in storage, storage/memory and
// sheets/google.
package ports

import (
	"context"

	"kesef/internal/core"
)

type (
	UserStore interface {
		// CreateUser fails with core.ErrEmailTaken on a duplicate email.
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
		SetAdmin(ctx context.Context, email string, admin bool) (core.User, error)
	}

	TransactionStore interface {
		InsertTransaction(ctx context.Context, tx core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns a user's full history, newest first.
		// A limit <= 0 means no limit.
		ListTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	PreferenceStore interface {
		// GetPreferences returns nil and no error when the user has none.
		GetPreferences(ctx context.Context, userID string) (*core.BudgetPreference, error)
		SavePreferences(ctx context.Context, p core.BudgetPreference) error
	}

	// Store is everything a backend provides.
	Store interface {
		UserStore
		TransactionStore
		PreferenceStore
		Ping(ctx context.Context) error
		Close() error
	}

	// LedgerWriter mirrors transactions to an external ledger.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (ref string, err error)
		RemoveTransaction(ctx context.Context, id string) error
	}
)
