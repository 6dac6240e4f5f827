package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/sheets/memory"
	"ledger/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMirror struct{}

func (failingMirror) Append(context.Context, core.Expense) (string, error) {
	return "", errors.New("quota exceeded")
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleExpenseRecordedMirrorsStoredRow(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	mirror := memory.New()
	w := NewMirrorWorker(repo, mirror)

	require.NoError(t, repo.RegisterUser(ctx, 1, "alice"))
	e, err := repo.AddExpense(ctx, 1, core.Money{Cents: 2000}, "travel")
	require.NoError(t, err)

	// The message body is informational; the stored row is what gets mirrored.
	msg := amqp.NewExpenseRecordedMessage(e)
	msg.Amount = "0.01"
	msg.Category = "TAMPERED"
	require.NoError(t, w.HandleExpenseRecorded(ctx, msg))

	got := mirror.Expenses()
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, "TRAVEL", got[0].Category)
	assert.Equal(t, core.Money{Cents: 2000}, got[0].Amount)

	mirrored, failed := w.Counts()
	assert.Equal(t, int64(1), mirrored)
	assert.Zero(t, failed)
}

func TestHandleExpenseRecordedMissingExpense(t *testing.T) {
	repo := newRepo(t)
	mirror := memory.New()
	w := NewMirrorWorker(repo, mirror)

	err := w.HandleExpenseRecorded(context.Background(), &amqp.ExpenseRecordedMessage{ID: 77})
	assert.ErrorIs(t, err, core.ErrExpenseNotFound)
	assert.ErrorIs(t, err, amqp.ErrDiscard)
	assert.Empty(t, mirror.Expenses())
}

func TestHandleExpenseRecordedUserZero(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	mirror := memory.New()
	w := NewMirrorWorker(repo, mirror)

	require.NoError(t, repo.RegisterUser(ctx, 0, "root"))
	e, err := repo.AddExpense(ctx, 0, core.Money{Cents: 500}, "food")
	require.NoError(t, err)

	require.NoError(t, w.HandleExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e)))

	got := mirror.Expenses()
	require.Len(t, got, 1)
	assert.Equal(t, int64(0), got[0].UserID)
}

type rejectingMirror struct{}

func (rejectingMirror) Append(context.Context, core.Expense) (string, error) {
	return "", core.ErrCategoryTooLong
}

func TestHandleExpenseRecordedValidationFailureIsDiscarded(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	w := NewMirrorWorker(repo, rejectingMirror{})

	require.NoError(t, repo.RegisterUser(ctx, 1, "alice"))
	e, err := repo.AddExpense(ctx, 1, core.Money{Cents: 100}, "food")
	require.NoError(t, err)

	err = w.HandleExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e))
	assert.ErrorIs(t, err, amqp.ErrDiscard)
}

func TestHandleExpenseRecordedMirrorFailure(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	w := NewMirrorWorker(repo, failingMirror{})

	require.NoError(t, repo.RegisterUser(ctx, 1, "alice"))
	e, err := repo.AddExpense(ctx, 1, core.Money{Cents: 100}, "food")
	require.NoError(t, err)

	err = w.HandleExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e))
	assert.ErrorContains(t, err, "quota exceeded")
	assert.NotErrorIs(t, err, amqp.ErrDiscard)

	mirrored, failed := w.Counts()
	assert.Zero(t, mirrored)
	assert.Equal(t, int64(1), failed)
}
