package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrChannelClaimed is returned when another bridge already holds the channel lease.
var ErrChannelClaimed = errors.New("channel is claimed by another bridge")

const (
	releaseScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
	refreshScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`
)

// lease marks a channel as owned by one bridge so responses are never
// correlated by two processes at once.
type lease struct {
	client *backend.Client
	key    string
	token  string
	ttl    time.Duration
}

func acquireLease(ctx context.Context, client *backend.Client, key string, ttl time.Duration) (*lease, error) {
	token := uuid.NewString()
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lease: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelClaimed, key)
	}
	return &lease{client: client, key: key, token: token, ttl: ttl}, nil
}

// refresh extends the lease. It reports false once the lease was lost.
func (l *lease) refresh(ctx context.Context) (bool, error) {
	n, err := l.client.Eval(ctx, refreshScript, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// keep refreshes the lease until ctx ends.
func (l *lease) keep(ctx context.Context, onLost func(error)) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			held, err := l.refresh(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil || !held {
				onLost(err)
				return
			}
		}
	}
}

func (l *lease) release(ctx context.Context) error {
	return l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
}
