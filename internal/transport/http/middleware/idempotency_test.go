package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	hash     string
	response string
	err      error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.hash
	*dest[1].(*json.RawMessage) = json.RawMessage(r.response)
	return nil
}

type idemQuerier struct {
	row      stubRow
	affected string
	args     []any
	execs    []string
}

func (q *idemQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.args = args
	q.execs = append(q.execs, sql)
	return pgconn.NewCommandTag(q.affected), nil
}

func (q *idemQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unused")
}

func (q *idemQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestIdempotencyCheck(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	hash := RequestHash([]byte(`{"name":"a"}`))

	q := &idemQuerier{row: stubRow{hash: hash, response: `{"id":"e1"}`}}
	store := NewIdempotencyStore(q, time.Hour)
	store.now = func() time.Time { return now }

	stored, found, err := store.Check(context.Background(), "u1", "employees.create", "k1", hash)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"e1"}`, string(stored))
	assert.Equal(t, now.Add(-time.Hour), q.args[3])

	_, _, err = store.Check(context.Background(), "u1", "employees.create", "k1", RequestHash([]byte(`{"name":"b"}`)))
	assert.ErrorIs(t, err, ErrIdempotencyConflict)

	q.row = stubRow{err: pgx.ErrNoRows}
	_, found, err = store.Check(context.Background(), "u1", "employees.create", "k1", hash)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencySaveConflict(t *testing.T) {
	q := &idemQuerier{affected: "INSERT 0 0"}
	store := NewIdempotencyStore(q, 0)

	err := store.Save(context.Background(), "u1", "employees.create", "k1", "h", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrIdempotencyConflict)
	assert.Equal(t, time.Time{}, q.args[5])

	q.affected = "INSERT 0 1"
	assert.NoError(t, store.Save(context.Background(), "u1", "employees.create", "k1", "h", json.RawMessage(`{}`)))
}

func TestIdempotencyReserve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	hash := RequestHash([]byte(`{"name":"a"}`))

	q := &idemQuerier{affected: "INSERT 0 1"}
	store := NewIdempotencyStore(q, time.Hour)
	store.now = func() time.Time { return now }

	_, found, err := store.Reserve(ctx, "u1", "employees.create", "k1", hash)
	require.NoError(t, err)
	assert.False(t, found, "a fresh key is reserved for the caller")
	assert.Equal(t, now.Add(-time.Hour), q.args[4])

	// The key is taken: a second caller sees the reservation until it is filled.
	q.affected = "INSERT 0 0"
	q.row = stubRow{hash: hash, response: "null"}
	_, found, err = store.Reserve(ctx, "u1", "employees.create", "k1", hash)
	assert.ErrorIs(t, err, ErrIdempotencyInFlight)
	assert.False(t, found)

	q.row = stubRow{hash: hash, response: `{"id":"e1"}`}
	stored, found, err := store.Reserve(ctx, "u1", "employees.create", "k1", hash)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"e1"}`, string(stored))

	_, _, err = store.Reserve(ctx, "u1", "employees.create", "k1", RequestHash([]byte(`{"name":"b"}`)))
	assert.ErrorIs(t, err, ErrIdempotencyConflict)
}

func TestIdempotencyReleaseOnlyDropsPendingReservation(t *testing.T) {
	q := &idemQuerier{affected: "DELETE 1"}
	store := NewIdempotencyStore(q, time.Hour)

	require.NoError(t, store.Release(context.Background(), "u1", "employees.create", "k1", "h"))
	require.Len(t, q.execs, 1)
	assert.Contains(t, q.execs[0], "response_json = 'null'::jsonb")
	assert.Equal(t, []any{"u1", "k1", "employees.create", "h"}, q.args)
}

func TestNilIdempotencyStoreIsNoop(t *testing.T) {
	var store *IdempotencyStore
	_, found, err := store.Check(context.Background(), "u1", "e", "k", "h")
	assert.NoError(t, err)
	assert.False(t, found)
	_, found, err = store.Reserve(context.Background(), "u1", "e", "k", "h")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.Save(context.Background(), "u1", "e", "k", "h", nil))
	assert.NoError(t, store.Release(context.Background(), "u1", "e", "k", "h"))
}

func TestRequestHashIgnoresJSONWhitespace(t *testing.T) {
	assert.Equal(t, RequestHash([]byte(`{"name":"a"}`)), RequestHash([]byte("{ \"name\" : \"a\" }\n")))
	assert.NotEqual(t, RequestHash([]byte(`{"name":"a"}`)), RequestHash([]byte(`{"name":"b"}`)))
}
