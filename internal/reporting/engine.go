// Package reporting answers period-bounded questions about a user's expenses.
//
// Every read is one call to the store's aggregation primitive; the engine
// only decides the filter and, for the top category, which group to keep.
package reporting

import (
	"context"
	"fmt"
	"time"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// Aggregator is the store's grouped-sum primitive.
type Aggregator interface {
	Aggregate(ctx context.Context, f storage.AggregateFilter) ([]core.Aggregate, error)
}

type Engine struct {
	store Aggregator
	now   func() time.Time
}

func NewEngine(store Aggregator) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock returns a copy of e that evaluates period windows against now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{store: e.store, now: now}
}

// Report returns per-category totals for the user's expenses in the period.
// Order is by category but callers should not depend on it.
func (e *Engine) Report(ctx context.Context, userID int64, period string) ([]core.Aggregate, error) {
	return e.Stats(ctx, userID, period, "")
}

// Stats is Report restricted to one category. An empty category means no
// filter; a category made only of whitespace is rejected with
// core.ErrEmptyCategory rather than widened to every category.
func (e *Engine) Stats(ctx context.Context, userID int64, period string, category string) ([]core.Aggregate, error) {
	p, err := core.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("period %q: %w", period, err)
	}
	filter := core.NormalizeCategory(category)
	if category != "" && filter == "" {
		return nil, fmt.Errorf("category filter %q: %w", category, core.ErrEmptyCategory)
	}
	w, err := p.Window(e.now())
	if err != nil {
		return nil, err
	}

	aggs, err := e.store.Aggregate(ctx, storage.AggregateFilter{
		UserID:   userID,
		Window:   &w,
		Category: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s expenses: %w", p, err)
	}
	return aggs, nil
}

// TopCategory returns the all-time category with the largest total. Equal
// totals go to the alphabetically first category. ok is false when the user
// has no expenses.
func (e *Engine) TopCategory(ctx context.Context, userID int64) (top core.Aggregate, ok bool, err error) {
	aggs, err := e.store.Aggregate(ctx, storage.AggregateFilter{UserID: userID})
	if err != nil {
		return core.Aggregate{}, false, fmt.Errorf("aggregate all expenses: %w", err)
	}

	for _, a := range aggs {
		if !ok || a.Total.Cents > top.Total.Cents ||
			(a.Total.Cents == top.Total.Cents && a.Category < top.Category) {
			top, ok = a, true
		}
	}
	return top, ok, nil
}
