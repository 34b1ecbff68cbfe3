package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drively/internal/app/commands"
)

type advanceCommand struct {
	Key_   string
	IDKey  string
	Amount int64
}

func (c advanceCommand) Key() string            { return c.Key_ }
func (c advanceCommand) IdempotencyKey() string { return c.IDKey }
func (c advanceCommand) ResultPrototype() any   { return &advanceResult{} }

type advanceResult struct {
	PaymentSessionID string `json:"payment_session_id"`
}

type plainCommand struct{}

func (plainCommand) Key() string { return "plain" }

type memoryStore struct {
	mu      sync.Mutex
	records map[string]IdempotencyRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]IdempotencyRecord{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *memoryStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls  int
	result any
	err    error
}

func (b *countingBus) Dispatch(context.Context, commands.Command) (any, error) {
	b.calls++
	return b.result, b.err
}

func TestIdempotency_ReplaysStoredResult(t *testing.T) {
	inner := &countingBus{result: &advanceResult{PaymentSessionID: "ps-1"}}
	bus := Idempotency(newMemoryStore(), nil)(inner)
	cmd := advanceCommand{Key_: "checkout.continue_to_payment", IDKey: "idem-1"}

	first, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	second, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "repeated key must not re-issue the side effect")
	assert.Equal(t, first.(*advanceResult).PaymentSessionID, second.(*advanceResult).PaymentSessionID)
}

func TestIdempotency_ReplaysStoredError(t *testing.T) {
	inner := &countingBus{err: errors.New("provider rejected the session")}
	bus := Idempotency(newMemoryStore(), nil)(inner)
	cmd := advanceCommand{Key_: "checkout.continue_to_payment", IDKey: "idem-2"}

	_, err := bus.Dispatch(context.Background(), cmd)
	require.Error(t, err)
	_, err = bus.Dispatch(context.Background(), cmd)
	require.Error(t, err)
	assert.Equal(t, "provider rejected the session", err.Error())
	assert.Equal(t, 1, inner.calls)
}

func TestIdempotency_EmptyKeyPassesThrough(t *testing.T) {
	inner := &countingBus{result: &advanceResult{}}
	bus := Idempotency(newMemoryStore(), nil)(inner)
	cmd := advanceCommand{Key_: "checkout.continue_to_payment"}

	_, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	_, err = bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestIdempotency_NonIdempotentCommandPassesThrough(t *testing.T) {
	inner := &countingBus{}
	bus := Idempotency(newMemoryStore(), nil)(inner)

	_, err := bus.Dispatch(context.Background(), plainCommand{})
	require.NoError(t, err)
	_, err = bus.Dispatch(context.Background(), plainCommand{})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestIdempotency_DistinctKeysDispatchSeparately(t *testing.T) {
	inner := &countingBus{result: &advanceResult{}}
	bus := Idempotency(newMemoryStore(), nil)(inner)

	_, err := bus.Dispatch(context.Background(), advanceCommand{Key_: "k", IDKey: "a"})
	require.NoError(t, err)
	_, err = bus.Dispatch(context.Background(), advanceCommand{Key_: "k", IDKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestChainCommands_OrderOutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	inner := &countingBus{}
	bus := ChainCommands(inner, tag("outer"), tag("inner"))

	_, err := bus.Dispatch(context.Background(), plainCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, inner.calls)
}

func TestIdempotency_RecordCarriesTimestamp(t *testing.T) {
	store := newMemoryStore()
	inner := &countingBus{result: &advanceResult{PaymentSessionID: "ps-9"}}
	bus := Idempotency(store, nil)(inner)

	before := time.Now().UTC()
	_, err := bus.Dispatch(context.Background(), advanceCommand{Key_: "k", IDKey: "stamped"})
	require.NoError(t, err)

	rec, ok, err := store.Get(context.Background(), "stamped")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, rec.OccurredAt.Before(before))
	assert.NotEmpty(t, rec.Payload)
}
