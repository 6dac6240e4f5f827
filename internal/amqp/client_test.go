package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (r *recordingAck) Ack(bool) error { r.acked = true; return nil }

func (r *recordingAck) Nack(_ bool, requeue bool) error {
	r.nacked, r.requeue = true, requeue
	return nil
}

func validBody(t *testing.T) []byte {
	t.Helper()
	body, err := NewExpenseRecordedMessage(core.Expense{
		ID:        3,
		UserID:    1,
		Amount:    core.Money{Cents: 1550},
		Category:  "FOOD",
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}).ToJSON()
	require.NoError(t, err)
	return body
}

func TestMessageCarriesExactAmount(t *testing.T) {
	msg, err := ExpenseRecordedMessageFromJSON(validBody(t))
	require.NoError(t, err)
	assert.Equal(t, "15.50", msg.Amount)
	assert.Equal(t, int64(3), msg.ID)
	assert.Equal(t, "FOOD", msg.Category)
}

func TestMessageWithoutIDIsRejected(t *testing.T) {
	_, err := ExpenseRecordedMessageFromJSON([]byte(`{"user_id": 1}`))
	assert.Error(t, err)
}

func TestSettle(t *testing.T) {
	ok := func(context.Context, *ExpenseRecordedMessage) error { return nil }
	fail := func(context.Context, *ExpenseRecordedMessage) error { return errors.New("mirror down") }

	t.Run("success acks", func(t *testing.T) {
		ack := &recordingAck{}
		settle(context.Background(), validBody(t), ack, ok)
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		ack := &recordingAck{}
		called := false
		settle(context.Background(), []byte("not json"), ack, func(context.Context, *ExpenseRecordedMessage) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("handler failure requeues", func(t *testing.T) {
		ack := &recordingAck{}
		settle(context.Background(), validBody(t), ack, fail)
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
		assert.False(t, ack.acked)
	})

	t.Run("discarded failure is not requeued", func(t *testing.T) {
		ack := &recordingAck{}
		settle(context.Background(), validBody(t), ack, func(context.Context, *ExpenseRecordedMessage) error {
			return fmt.Errorf("%w: %w", ErrDiscard, core.ErrExpenseNotFound)
		})
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
		assert.False(t, ack.acked)
	})
}
