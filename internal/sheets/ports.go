package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror keeps an append-only copy of recorded expenses outside the ledger.
	ExpenseMirror interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}
)
