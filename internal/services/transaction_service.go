package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kesef/internal/analytics"
	"kesef/internal/core"
	"kesef/internal/log"
	"kesef/internal/ports"
)

// EventPublisher announces stored and removed transactions.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, tx core.Transaction, confidence float64) error
	PublishTransactionDeleted(ctx context.Context, tx core.Transaction) error
}

// TransactionInput is what a caller submits for a new transaction.
type TransactionInput struct {
	Type        core.TransactionType
	Description string
	Amount      core.Money
	Category    string
	Date        string
	Location    *core.Location
}

// AddResult is a stored transaction with the verdict that flagged it.
type AddResult struct {
	Transaction core.Transaction
	Verdict     analytics.Verdict
}

// TransactionService stores transactions, flagging outliers against the
// user's own history on the way in.
type TransactionService struct {
	store     ports.TransactionStore
	publisher EventPublisher
	listLimit int
	now       func() time.Time
}

// NewTransactionService wires a store and an optional publisher. A nil
// publisher disables events.
func NewTransactionService(store ports.TransactionStore, publisher EventPublisher, listLimit int) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		listLimit: listLimit,
		now:       time.Now,
	}
}

// Add validates, judges and stores a transaction. A failed event publish is
// logged and does not fail the call.
func (s *TransactionService) Add(ctx context.Context, userID string, in TransactionInput) (AddResult, error) {
	tx := core.Transaction{
		UserID:      strings.TrimSpace(userID),
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		Date:        strings.TrimSpace(in.Date),
		Location:    in.Location,
	}
	if err := tx.Validate(); err != nil {
		return AddResult{}, err
	}

	history, err := s.store.ListTransactions(ctx, tx.UserID, 0)
	if err != nil {
		return AddResult{}, fmt.Errorf("load history: %w", err)
	}

	verdict := analytics.Detect(analytics.CandidateFrom(tx), analytics.Collect(history))

	tx.ID = core.NewTransactionID()
	tx.IsOutlier = verdict.IsOutlier
	tx.CreatedAt = s.now().UTC()

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return AddResult{}, fmt.Errorf("save transaction: %w", err)
	}

	logger := log.FromContext(ctx)
	log.NewStructuredLogger(logger).LogTransactionCreated(ctx,
		tx.ID, tx.UserID, string(tx.Type), tx.Category, tx.Amount.Cents,
		verdict.IsOutlier, verdict.Confidence)
	if verdict.IsOutlier {
		logger.DebugContext(ctx, "Outlier reasons", "reasons", verdict.Reasons)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, tx, verdict.Confidence); err != nil {
			logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldTransactionID, tx.ID,
				log.FieldError, err.Error())
		}
	}

	return AddResult{Transaction: tx, Verdict: verdict}, nil
}

// List returns the user's most recent transactions.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrMissingUser
	}
	txs, err := s.store.ListTransactions(ctx, userID, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Get returns one transaction by ID.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.store.GetTransaction(ctx, id)
}

// Delete removes a transaction owned by userID.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if tx.UserID != userID {
		return core.ErrForbidden
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	logger := log.FromContext(ctx)
	logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldUserID, userID)

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDeleted(ctx, tx); err != nil {
			logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldTransactionID, id,
				log.FieldError, err.Error())
		}
	}
	return nil
}
