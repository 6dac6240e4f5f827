package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultMaxOpenConns is the pool size used when no option overrides it.
const DefaultMaxOpenConns = 4

// SQLiteRepository is the durable ledger of users and expenses.
//
// Every method acquires a pooled connection for a single statement and
// releases it before returning; statements autocommit, so a nil error means
// the write is durable.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

type repoOptions struct {
	now          func() time.Time
	maxOpenConns int
}

// Option configures a SQLiteRepository.
type Option func(*repoOptions)

// WithClock sets the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) { o.now = now }
}

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) Option {
	return func(o *repoOptions) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// DSN returns the driver data source name for dbPath, with foreign keys
// enforced on every connection of the pool.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	o := repoOptions{now: time.Now, maxOpenConns: DefaultMaxOpenConns}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open sqlite database", err)
	}
	db.SetMaxOpenConns(o.maxOpenConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("ping database", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, unavailable("run migrations", err)
	}

	slog.Info("Ledger database ready", "path", dbPath, "max_open_conns", o.maxOpenConns)

	return &SQLiteRepository{db: db, now: o.now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RegisterUser inserts the user unless one with the same id exists, in which
// case the stored row, including its username, is left untouched.
func (r *SQLiteRepository) RegisterUser(ctx context.Context, userID int64, username string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, nullString(username), r.now().UnixMilli())
	if err != nil {
		return unavailable("insert user", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.DebugContext(ctx, "User already registered", "user_id", userID)
		return nil
	}

	slog.InfoContext(ctx, "User registered", "user_id", userID, "username", username)
	return nil
}

// AddExpense records an expense for an existing user. The category is stored
// upper case. It fails with core.ErrUnknownUser when the user was never
// registered, in which case no row is written.
func (r *SQLiteRepository) AddExpense(ctx context.Context, userID int64, amount core.Money, category string) (core.Expense, error) {
	category = core.NormalizeCategory(category)
	if err := core.ValidateCategory(category); err != nil {
		return core.Expense{}, err
	}

	createdAt := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, category, created_at) VALUES (?, ?, ?, ?)`,
		userID, amount.Cents, category, createdAt.UnixMilli())
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Expense{}, fmt.Errorf("insert expense for user %d: %w", userID, core.ErrUnknownUser)
		}
		return core.Expense{}, unavailable("insert expense", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, unavailable("read expense id", err)
	}

	expense := core.Expense{
		ID:        id,
		UserID:    userID,
		Amount:    amount,
		Category:  category,
		CreatedAt: createdAt,
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", expense.ID,
		"user_id", userID,
		"amount", amount.String(),
		"category", category)

	return expense, nil
}

// Aggregate sums amounts per category over the expenses selected by f.
// It returns an empty, non-nil slice when nothing matches.
func (r *SQLiteRepository) Aggregate(ctx context.Context, f AggregateFilter) ([]core.Aggregate, error) {
	q, args := f.query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, aggregateFailure("query category totals", err)
	}
	defer rows.Close()

	out := []core.Aggregate{}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, aggregateFailure("scan category total", err)
		}
		out = append(out, core.Aggregate{Category: category, Total: core.Money{Cents: cents}})
	}
	if err := rows.Err(); err != nil {
		return nil, aggregateFailure("iterate category totals", err)
	}

	return out, nil
}

// GetExpense retrieves a single expense by ID
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var (
		e         core.Expense
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, category, created_at FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrExpenseNotFound)
	}
	if err != nil {
		return core.Expense{}, unavailable("get expense by id", err)
	}
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	return e, nil
}

// GetUser retrieves a registered user.
func (r *SQLiteRepository) GetUser(ctx context.Context, userID int64) (core.User, error) {
	var (
		u         core.User
		username  sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, created_at FROM users WHERE user_id = ?`, userID).
		Scan(&u.ID, &username, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("get user %d: %w", userID, core.ErrUserNotFound)
	}
	if err != nil {
		return core.User{}, unavailable("get user by id", err)
	}
	u.Username = username.String
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}

// CountExpenses returns how many expenses the user has recorded.
func (r *SQLiteRepository) CountExpenses(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, unavailable("count expenses", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
