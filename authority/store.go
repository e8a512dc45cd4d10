package authority

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// setStampScript stores the password-changed-at stamp monotonically: a write
// never moves the stamp backwards, and the confirmed (stored) value is
// returned so the caller learns which stamp actually took effect.
const setStampScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local proposed = tonumber(ARGV[1])
if proposed > current then
  if tonumber(ARGV[2]) > 0 then
    redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2])
  else
    redis.call("SET", KEYS[1], ARGV[1])
  end
  return proposed
end
return current
`

var setStampLua = redis.NewScript(setStampScript)

// StampStore persists one password-changed-at stamp per user in Redis.
//
// StampStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StampStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStampStore creates a store using the given key prefix. ttl bounds how
// long a stamp is retained; zero keeps stamps indefinitely. A retained window
// only needs to cover the maximum token lifetime: tokens older than that are
// already rejected by expiry.
func NewStampStore(client *redis.Client, prefix string, ttl time.Duration) *StampStore {
	if prefix == "" {
		prefix = "tg"
	}
	return &StampStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *StampStore) key(userID string) string {
	return fmt.Sprintf("%s:pwc:%s", s.prefix, userID)
}

// Set records a password-changed-at stamp (whole Unix seconds) and returns the
// confirmed stored value. Stale writes lose: when a newer stamp is already
// stored, that newer stamp is returned unchanged.
func (s *StampStore) Set(ctx context.Context, userID string, changedAt int64) (int64, error) {
	if userID == "" {
		return 0, errors.New("empty user id")
	}
	if changedAt <= 0 {
		return 0, errors.New("invalid stamp")
	}

	ttlSeconds := int64(s.ttl / time.Second)
	confirmed, err := setStampLua.Run(ctx, s.client,
		[]string{s.key(userID)},
		strconv.FormatInt(changedAt, 10),
		strconv.FormatInt(ttlSeconds, 10),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return confirmed, nil
}

// Get returns the stored stamp for the user, or zero when none is recorded.
func (s *StampStore) Get(ctx context.Context, userID string) (int64, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	stamp, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt stamp for user %s: %v", userID, err)
	}
	return stamp, nil
}

// Validate reports whether a token with the given effective timestamp is still
// acceptable: true iff no stamp is stored or the timestamp is not older than
// the stored stamp.
func (s *StampStore) Validate(ctx context.Context, userID string, effective int64) (bool, error) {
	stamp, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return stamp == 0 || effective >= stamp, nil
}
