package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/sheets"
)

// ExpenseReader loads an expense by id.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
}

// MirrorWorker copies recorded expenses to an external mirror.
type MirrorWorker struct {
	storage ExpenseReader
	mirror  sheets.ExpenseMirror

	mirrored atomic.Int64
	failed   atomic.Int64
}

func NewMirrorWorker(storage ExpenseReader, mirror sheets.ExpenseMirror) *MirrorWorker {
	return &MirrorWorker{
		storage: storage,
		mirror:  mirror,
	}
}

// HandleExpenseRecorded mirrors the expense named by msg. The row is re-read
// from storage so the mirror always receives what the ledger holds.
// Failures that a retry cannot fix are marked with amqp.ErrDiscard.
func (w *MirrorWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if err := w.mirrorExpense(ctx, msg); err != nil {
		w.failed.Add(1)
		if permanent(err) {
			return fmt.Errorf("%w: %w", amqp.ErrDiscard, err)
		}
		return err
	}
	w.mirrored.Add(1)
	return nil
}

// Counts returns how many messages were mirrored and how many failed since start.
func (w *MirrorWorker) Counts() (mirrored, failed int64) {
	return w.mirrored.Load(), w.failed.Load()
}

// permanent reports whether err will recur on every redelivery.
func permanent(err error) bool {
	return errors.Is(err, core.ErrExpenseNotFound) || core.IsValidationError(err)
}

func (w *MirrorWorker) mirrorExpense(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	slog.InfoContext(ctx, "Processing expense recorded message",
		log.FieldOperation, log.OpMirror,
		log.FieldExpenseID, msg.ID,
		log.FieldUserID, msg.UserID)

	expense, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.mirror.Append(ctx, expense)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		log.FieldExpenseID, expense.ID,
		"row_ref", ref,
		log.FieldCategory, expense.Category,
		log.FieldAmount, expense.Amount.String())

	return nil
}
