package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/contexthelper"
)

// RedisStorage backs the recovery-attempt throttle and the worker's
// duplicate-email guard. Nothing secret lives here.
type RedisStorage struct {
	cfg    config.Config
	client *redis.Client
}

func NewRedisStorage(cfg config.Config) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	status := client.Ping(context.Background())
	if status.Err() != nil {
		return nil, status.Err()
	}
	return &RedisStorage{
		cfg:    cfg,
		client: client,
	}, nil
}

// CountRecoveryAttempt increments the per-subject recovery attempt counter
// and returns the new count. The counter expires after the window.
func (r *RedisStorage) CountRecoveryAttempt(ctx context.Context, sub string, window time.Duration) (int64, error) {
	if contexthelper.CheckCancellation(ctx) != nil {
		return 0, ctx.Err()
	}
	key := "recovery:attempts:" + sub
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("fail to count recovery attempt, err: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("fail to expire attempt counter, err: %w", err)
		}
	}
	return count, nil
}

// MarkEmailSent records that the email task with the given id went out, so a
// retried task does not double-send. Returns false when already marked.
func (r *RedisStorage) MarkEmailSent(ctx context.Context, taskID string, ttl time.Duration) (bool, error) {
	if contexthelper.CheckCancellation(ctx) != nil {
		return false, ctx.Err()
	}
	ok, err := r.client.SetNX(ctx, "email:sent:"+taskID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("fail to mark email sent, err: %w", err)
	}
	return ok, nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
