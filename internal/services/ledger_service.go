package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"

	"github.com/shopspring/decimal"
)

// LedgerStore is the durable side of the write path.
type LedgerStore interface {
	RegisterUser(ctx context.Context, userID int64, username string) error
	AddExpense(ctx context.Context, userID int64, amount core.Money, category string) (core.Expense, error)
	Close() error
}

// ExpensePublisher announces stored expenses to downstream consumers.
type ExpensePublisher interface {
	PublishExpenseRecorded(ctx context.Context, e core.Expense) error
	Close() error
}

// LedgerService orchestrates writes across the store and the publisher.
type LedgerService struct {
	store     LedgerStore
	publisher ExpensePublisher
}

// NewLedgerService wires the write path. publisher may be nil.
func NewLedgerService(store LedgerStore, publisher ExpensePublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// RegisterUser records the user on first contact; later calls are no-ops.
func (s *LedgerService) RegisterUser(ctx context.Context, userID int64, username string) error {
	if err := s.store.RegisterUser(ctx, userID, username); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

// AddExpense stores the expense and then announces it. The store write is
// the outcome: a publish failure is logged and does not fail the call.
func (s *LedgerService) AddExpense(ctx context.Context, userID int64, amount decimal.Decimal, category string) (core.Expense, error) {
	money, err := core.MoneyFromDecimal(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount %s: %w", amount, err)
	}

	expense, err := s.store.AddExpense(ctx, userID, money, category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publish(ctx, expense); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense recorded message",
			"id", expense.ID, "error", err)
	}

	return expense, nil
}

func (s *LedgerService) publish(ctx context.Context, e core.Expense) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping expense recorded message", "id", e.ID)
		return nil
	}
	return s.publisher.PublishExpenseRecorded(ctx, e)
}

// Close closes both storage and publisher connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
