package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// allowScript performs the evict-check-append sequence server-side so the
// admission check stays atomic per client key even across service instances.
// Timestamps are ZSET scores in microseconds; members are unique per request.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, math.ceil(window / 1000))
  return {1, limit - count - 1}
end
return {0, 0}
`)

// Redis is a sliding-window limiter backed by a Redis sorted set per client,
// for deployments that run more than one service instance.
type Redis struct {
	client *redis.Client
	limit  int
	period time.Duration
	now    func() time.Time
}

func NewRedis(url string, limit int, period time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Redis{
		client: redis.NewClient(opt),
		limit:  limit,
		period: period,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Allow(ctx context.Context, clientID string) (Decision, error) {
	res, err := allowScript.Run(ctx, r.client, []string{r.key(clientID)},
		r.now().UnixMicro(), r.period.Microseconds(), r.limit, uuid.NewString()).Result()
	if err != nil {
		return Decision{}, err
	}
	values, ok := res.([]any)
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}
	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)

	decision := Decision{
		Allowed:   allowed == 1,
		Limit:     r.limit,
		Period:    r.period,
		Remaining: int(remaining),
	}
	if !decision.Allowed {
		decision.RetryAfter = r.period
	}
	return decision, nil
}

func (r *Redis) Remaining(ctx context.Context, clientID string) (int, error) {
	key := r.key(clientID)
	cutoff := r.now().Add(-r.period).UnixMicro()
	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%d", cutoff)).Err(); err != nil {
		return 0, err
	}
	count, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (r *Redis) ResetTime(ctx context.Context, clientID string) (time.Time, error) {
	oldest, err := r.client.ZRangeWithScores(ctx, r.key(clientID), 0, 0).Result()
	if err != nil {
		return time.Time{}, err
	}
	if len(oldest) == 0 {
		return r.now(), nil
	}
	return time.UnixMicro(int64(oldest[0].Score)).Add(r.period), nil
}

func (r *Redis) key(clientID string) string {
	return "ratelimit:" + clientID
}
