// Package worker applies transaction events to the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"

	"kesef/internal/amqp"
	"kesef/internal/core"
	"kesef/internal/log"
	"kesef/internal/ports"
)

// LedgerWorker mirrors stored transactions into a LedgerWriter.
type LedgerWorker struct {
	store  ports.TransactionStore
	ledger ports.LedgerWriter
	logger *log.Logger
}

func NewLedgerWorker(store ports.TransactionStore, ledger ports.LedgerWriter, logger *log.Logger) *LedgerWorker {
	return &LedgerWorker{
		store:  store,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the consumer callback. A returned error requeues the event.
func (w *LedgerWorker) HandleEvent(ctx context.Context, e *amqp.TransactionEvent) error {
	switch e.Kind {
	case amqp.EventTransactionCreated:
		return w.handleCreated(ctx, e)
	case amqp.EventTransactionDeleted:
		return w.handleDeleted(ctx, e)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event", "kind", e.Kind)
		return nil
	}
}

func (w *LedgerWorker) handleCreated(ctx context.Context, e *amqp.TransactionEvent) error {
	tx, err := w.store.GetTransaction(ctx, e.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before we got to it
		w.logger.InfoContext(ctx, "Transaction gone, skipping ledger append",
			log.FieldTransactionID, e.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	ref, err := w.ledger.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	fields := log.NewFields().
		WithTransaction(tx.ID, tx.UserID, string(tx.Type), tx.Category, tx.Amount.Cents).
		WithVerdict(e.IsOutlier, e.Confidence).
		WithOperation(log.OpAppend)
	fields[log.FieldLedgerRef] = ref

	if e.IsOutlier {
		w.logger.WarnContext(ctx, "Outlier transaction recorded in ledger", fields.ToSlice()...)
		return nil
	}
	w.logger.InfoContext(ctx, "Transaction recorded in ledger", fields.ToSlice()...)
	return nil
}

func (w *LedgerWorker) handleDeleted(ctx context.Context, e *amqp.TransactionEvent) error {
	if err := w.ledger.RemoveTransaction(ctx, e.TransactionID); err != nil {
		return fmt.Errorf("remove from ledger: %w", err)
	}
	w.logger.InfoContext(ctx, "Transaction removed from ledger",
		log.FieldTransactionID, e.TransactionID,
		log.FieldOperation, log.OpDelete)
	return nil
}
