package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hrrecords/internal/platform/querier"
)

const maxIdempotencyKeyLen = 200

var (
	ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")
	ErrIdempotencyInFlight = errors.New("idempotency key is held by a request still in progress")
)

// pendingResponse marks a reserved key whose request has not finished.
const pendingResponse = "null"

// IdempotencyStore remembers the response to a keyed create so a retried
// POST /employees returns the first employee instead of inserting twice.
// A key is reserved before the create runs, so two concurrent requests with
// the same key cannot both insert. Entries older than TTL are treated as
// absent; housekeeping deletes them.
type IdempotencyStore struct {
	db  querier.Querier
	TTL time.Duration
	now func() time.Time
}

func NewIdempotencyStore(db querier.Querier, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{db: db, TTL: ttl, now: time.Now}
}

// RequestHash fingerprints a request body. JSON bodies are compacted first
// so a retry that only differs in whitespace is still a replay.
func RequestHash(payload []byte) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err == nil {
		payload = compact.Bytes()
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// IdempotencyKey reads the Idempotency-Key header; overly long keys are ignored.
func IdempotencyKey(header string) string {
	key := strings.TrimSpace(header)
	if len(key) > maxIdempotencyKeyLen {
		return ""
	}
	return key
}

func (s *IdempotencyStore) cutoff() time.Time {
	if s.TTL <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.TTL)
}

// Reserve claims key for a new request. It returns found=true with the
// stored response when the same request already completed,
// ErrIdempotencyInFlight while it is still running, and
// ErrIdempotencyConflict when the key was used for a different body. An
// expired entry is taken over.
func (s *IdempotencyStore) Reserve(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, 'null'::jsonb)
    ON CONFLICT (user_id, key, endpoint)
    DO UPDATE SET request_hash = EXCLUDED.request_hash,
                  response_json = EXCLUDED.response_json,
                  created_at = now()
    WHERE idempotency_keys.created_at <= $5
  `, userID, key, endpoint, requestHash, s.cutoff())
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return nil, false, nil
	}
	return s.Check(ctx, userID, endpoint, key, requestHash)
}

// Check returns the stored response for a replay of the same request, or
// ErrIdempotencyConflict when the key was used for a different body.
func (s *IdempotencyStore) Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3 AND created_at > $4
  `, userID, key, endpoint, s.cutoff()).Scan(&storedHash, &stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case storedHash != requestHash:
		return nil, false, ErrIdempotencyConflict
	case len(stored) == 0 || string(stored) == pendingResponse:
		return nil, false, ErrIdempotencyInFlight
	}
	return stored, true, nil
}

// Save records the response, filling a reservation. An expired entry under
// the same key is overwritten; a live one with a different body is a
// conflict.
func (s *IdempotencyStore) Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || s.db == nil {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (user_id, key, endpoint)
    DO UPDATE SET request_hash = EXCLUDED.request_hash,
                  response_json = EXCLUDED.response_json,
                  created_at = now()
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
       OR idempotency_keys.created_at <= $6
  `, userID, key, endpoint, requestHash, response, s.cutoff())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

// Release drops an unfilled reservation so the client can retry after a
// failed create.
func (s *IdempotencyStore) Release(ctx context.Context, userID, endpoint, key, requestHash string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
      AND request_hash = $4 AND response_json = 'null'::jsonb
  `, userID, key, endpoint, requestHash)
	return err
}
