package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "editsession:"

	// sessionTTL bounds how long abandoned edit-session state lingers in
	// Redis. The access code itself expires much sooner.
	sessionTTL = 12 * time.Hour
)

// redeemScript performs the compare-and-consume in a single Redis call.
// KEYS[1] session key; ARGV[1] submitted code; ARGV[2] now (unix nanos);
// ARGV[3] ttl (nanos). Returns 1 on successful consumption, 0 otherwise.
var redeemScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code or code == '' or code ~= ARGV[1] then
	return 0
end
if redis.call('HGET', KEYS[1], 'consumed') == '1' then
	return 0
end
local issued = tonumber(redis.call('HGET', KEYS[1], 'issued_at') or '0')
if tonumber(ARGV[2]) - issued > tonumber(ARGV[3]) then
	return 0
end
redis.call('HSET', KEYS[1], 'consumed', '1')
return 1
`)

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store for multi-node
// deployments.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (State, error) {
	vals, err := s.client.HGetAll(ctx, key(sessionID)).Result()
	if err != nil {
		return State{}, fmt.Errorf("failed to load session state: %w", err)
	}

	var st State
	st.Code = vals["code"]
	st.CodeConsumed = vals["consumed"] == "1"
	st.DiagnosisUnlocked = vals["unlocked"] == "1"
	if raw := vals["issued_at"]; raw != "" {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return State{}, fmt.Errorf("corrupt issued_at for session: %w", err)
		}
		st.CodeIssuedAt = time.Unix(0, nanos)
	}
	return st, nil
}

func (s *redisStore) ReplaceCode(ctx context.Context, sessionID, code string, issuedAt time.Time) error {
	k := key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k,
		"code", code,
		"issued_at", strconv.FormatInt(issuedAt.UnixNano(), 10),
		"consumed", "0",
	)
	pipe.Expire(ctx, k, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store access code: %w", err)
	}
	return nil
}

func (s *redisStore) Redeem(ctx context.Context, sessionID, submitted string, now time.Time, ttl time.Duration) (bool, error) {
	if submitted == "" {
		return false, nil
	}

	res, err := redeemScript.Run(ctx, s.client, []string{key(sessionID)},
		submitted,
		strconv.FormatInt(now.UnixNano(), 10),
		strconv.FormatInt(ttl.Nanoseconds(), 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to redeem access code: %w", err)
	}
	return res == 1, nil
}

func (s *redisStore) SetUnlocked(ctx context.Context, sessionID string, unlocked bool) error {
	k := key(sessionID)
	val := "0"
	if unlocked {
		val = "1"
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, "unlocked", val)
	pipe.Expire(ctx, k, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update lock state: %w", err)
	}
	return nil
}

func (s *redisStore) End(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}
