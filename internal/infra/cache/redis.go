package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"creatora-api/internal/domain"
)

const (
	revokedPrefix  = "auth:revoked:"
	cooldownPrefix = "cooldown:"
	attemptsPrefix = "attempts:"
)

// RedisCache реализует domain.TokenStore через Redis.
type RedisCache struct {
	client *redis.Client
}

var _ domain.TokenStore = (*RedisCache)(nil)

// NewRedis создаёт кэш.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Connect открывает клиент Redis и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Revoke помечает токен отозванным до истечения его срока.
func (c *RedisCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked сообщает, отозван ли токен.
func (c *RedisCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	err := c.client.Get(ctx, revokedPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Cooldown возвращает true, если ключ только что занят (действие разрешено),
// и false, если кулдаун ещё активен.
func (c *RedisCache) Cooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, cooldownPrefix+key, "1", ttl).Result()
}

// CountAttempt атомарно увеличивает счётчик; срок жизни ставится на первой попытке.
func (c *RedisCache) CountAttempt(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, attemptsPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, attemptsPrefix+key, ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ClearAttempts сбрасывает счётчик попыток.
func (c *RedisCache) ClearAttempts(ctx context.Context, key string) error {
	return c.client.Del(ctx, attemptsPrefix+key).Err()
}
