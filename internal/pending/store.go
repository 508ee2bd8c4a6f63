// Package pending stages not-yet-committed account mutations behind a
// confirmation code in the keyed-expiry store.
package pending

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/nameless/internal/cache"
)

// Action names the workflow a record belongs to. Records of different
// actions never share a key.
type Action string

const (
	ActionRegistration   Action = "registration"
	ActionDeleteAccount  Action = "delete-account"
	ActionChangeEmail    Action = "change-email"
	ActionChangePassword Action = "change-password"
)

const codeField = "email_code"

// Record is a staged payload plus its confirmation code.
type Record struct {
	Code    int
	Payload map[string]string
}

// Store is the staging area the verification workflow writes to.
type Store interface {
	// Put replaces whatever is staged under (action, subject).
	Put(ctx context.Context, action Action, subject string, rec Record, ttl time.Duration) error
	// Get reports false when nothing is staged or the record expired.
	Get(ctx context.Context, action Action, subject string) (Record, bool, error)
	Delete(ctx context.Context, action Action, subject string) error
}

// Key is the storage key for (action, subject).
func Key(action Action, subject string) string {
	return "pending:" + string(action) + ":" + subject
}

// RedisStore keeps each record as one Redis hash with a TTL.
type RedisStore struct {
	cache *cache.RedisCache
}

func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Put(ctx context.Context, action Action, subject string, rec Record, ttl time.Duration) error {
	fields := make(map[string]string, len(rec.Payload)+1)
	for k, v := range rec.Payload {
		fields[k] = v
	}
	fields[codeField] = strconv.Itoa(rec.Code)

	if err := s.cache.HSetEx(ctx, Key(action, subject), fields, ttl); err != nil {
		return fmt.Errorf("stage %s: %w", action, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, action Action, subject string) (Record, bool, error) {
	fields, err := s.cache.HGetAll(ctx, Key(action, subject))
	if err != nil {
		return Record{}, false, fmt.Errorf("load %s: %w", action, err)
	}
	if len(fields) == 0 {
		return Record{}, false, nil
	}

	code, err := strconv.Atoi(fields[codeField])
	if err != nil {
		return Record{}, false, fmt.Errorf("load %s: malformed code: %w", action, err)
	}
	delete(fields, codeField)

	return Record{Code: code, Payload: fields}, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, action Action, subject string) error {
	return s.cache.Del(ctx, Key(action, subject))
}
