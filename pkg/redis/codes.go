package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound is returned when a one-time code is missing or expired.
var ErrCodeNotFound = errors.New("code not found")

// CodeStore keeps short-lived one-time codes with TTL eviction. It backs
// handshakes where a secret must be presented exactly once, such as email
// verification or password reset flows that sit in front of this API.
type CodeStore interface {
	Put(ctx context.Context, scope, id, code string, ttl time.Duration) error
	Consume(ctx context.Context, scope, id string) (string, error)
}

// Put stores a one-time code under scope/id with the supplied TTL.
func (c *Client) Put(ctx context.Context, scope, id, code string, ttl time.Duration) error {
	return c.Set(ctx, c.CodeKey(scope, id), code, ttl)
}

// Consume returns the stored code and removes it so it cannot be reused.
func (c *Client) Consume(ctx context.Context, scope, id string) (string, error) {
	key := c.CodeKey(scope, id)
	value, err := c.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", err
	}
	if err := c.Del(ctx, key); err != nil {
		return "", err
	}
	return value, nil
}
