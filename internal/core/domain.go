package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCategoryLength is the longest category label, in characters, the ledger stores.
const MaxCategoryLength = 50

type (
	User struct {
		ID        int64
		Username  string // empty when the platform reported none
		CreatedAt time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID        int64
		UserID    int64
		Amount    Money
		Category  string // always upper case
		CreatedAt time.Time
	}
)

var (
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrUnknownUser        = errors.New("unknown user")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidExpense     = errors.New("invalid expense")
)

// NormalizeCategory trims and upper-cases a category label.
func NormalizeCategory(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateCategory checks an already normalized category.
func ValidateCategory(category string) error {
	if category == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	return nil
}

// Validate checks that e is fit to leave the ledger. Any user id is valid,
// zero included.
func (e Expense) Validate() error {
	if e.Category != NormalizeCategory(e.Category) {
		return fmt.Errorf("%w: category %q is not normalized", ErrInvalidExpense, e.Category)
	}
	return ValidateCategory(e.Category)
}

// IsValidationError reports whether err comes from validating a category or
// an expense, which no retry can fix.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidExpense) ||
		errors.Is(err, ErrEmptyCategory) ||
		errors.Is(err, ErrCategoryTooLong)
}
