package storage

import (
	"strings"

	"ledger/internal/core"
)

// AggregateFilter selects which of a user's expenses are summed per category.
// A nil Window means all time; an empty Category means every category.
type AggregateFilter struct {
	UserID   int64
	Window   *core.Window
	Category string
}

// predicate composes user, window and category conditions, always in that
// order. Only fixed SQL fragments are joined; every value is a bound argument.
func (f AggregateFilter) predicate() (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.Window != nil {
		conds = append(conds, "created_at >= ?", "created_at < ?")
		args = append(args, f.Window.Since.UnixMilli(), f.Window.Until.UnixMilli())
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}

	return strings.Join(conds, " AND "), args
}

func (f AggregateFilter) query() (string, []any) {
	where, args := f.predicate()
	q := "SELECT category, SUM(amount_cents) AS total FROM expenses WHERE " + where +
		" GROUP BY category ORDER BY category"
	return q, args
}
