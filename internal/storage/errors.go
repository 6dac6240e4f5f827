package storage

import (
	"errors"
	"fmt"
	"strings"

	"ledger/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// unavailable marks err as a storage failure while keeping the driver error
// in the chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, err)
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	// Without extended result codes only the primary code is reported.
	return code&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
}

// isIntegerOverflow reports whether SQLite aborted an integer SUM that no
// longer fits in 64 bits.
func isIntegerOverflow(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "integer overflow")
}

// aggregateFailure classifies an error raised while computing totals. An
// overflowing sum is a property of the stored amounts, not an outage.
func aggregateFailure(op string, err error) error {
	if isIntegerOverflow(err) {
		return fmt.Errorf("%s: %w: total out of range: %w", op, core.ErrInvalidAmount, err)
	}
	return unavailable(op, err)
}
