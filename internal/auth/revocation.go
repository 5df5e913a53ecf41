package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "auth:pwchange:"

// Revoker tracks password-change stamps so tokens issued before a
// password change stop validating.
type Revoker interface {
	MarkPasswordChanged(ctx context.Context, employeeID string, at time.Time) error
	PasswordChangedAt(ctx context.Context, employeeID string) (*time.Time, error)
}

// RedisRevoker stores stamps in Redis keyed by employee id.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker constructs a revoker over a Redis client.
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// MarkPasswordChanged records the change time for the employee.
func (r *RedisRevoker) MarkPasswordChanged(ctx context.Context, employeeID string, at time.Time) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	key := revocationKeyPrefix + employeeID
	return r.client.Set(ctx, key, at.UTC().Format(time.RFC3339), 0).Err()
}

// PasswordChangedAt returns the stamp for the employee, or nil when none exists.
func (r *RedisRevoker) PasswordChangedAt(ctx context.Context, employeeID string) (*time.Time, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("redis client not configured")
	}
	key := revocationKeyPrefix + employeeID
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stamp, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, fmt.Errorf("parse revocation stamp: %w", err)
	}
	return &stamp, nil
}
