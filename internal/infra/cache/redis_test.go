package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), mr
}

func TestRevokeAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	revoked, err := c.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("новый токен не должен быть отозван: %v %v", revoked, err)
	}
	if err := c.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	revoked, err = c.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("ожидали отозванный токен: %v %v", revoked, err)
	}
	mr.FastForward(2 * time.Minute)
	revoked, _ = c.IsRevoked(ctx, "jti-1")
	if revoked {
		t.Fatalf("отзыв должен истечь вместе с токеном")
	}
}

func TestCooldown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Cooldown(ctx, "otp:a@b.c", time.Minute)
	if err != nil || !ok {
		t.Fatalf("первый запрос должен пройти: %v %v", ok, err)
	}
	ok, _ = c.Cooldown(ctx, "otp:a@b.c", time.Minute)
	if ok {
		t.Fatalf("повторный запрос в кулдауне должен быть отклонён")
	}
	mr.FastForward(61 * time.Second)
	ok, _ = c.Cooldown(ctx, "otp:a@b.c", time.Minute)
	if !ok {
		t.Fatalf("после кулдауна запрос должен пройти")
	}
}

func TestCountAttempt(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := c.CountAttempt(ctx, "otp-reset:a@b.c", time.Minute)
		if err != nil || n != want {
			t.Fatalf("ожидали %d попыток, получили %d (%v)", want, n, err)
		}
	}
	if ttl := mr.TTL("attempts:otp-reset:a@b.c"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("счётчик должен жить не дольше минуты: %v", ttl)
	}
	if err := c.ClearAttempts(ctx, "otp-reset:a@b.c"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if n, _ := c.CountAttempt(ctx, "otp-reset:a@b.c", time.Minute); n != 1 {
		t.Fatalf("после сброса счёт начинается заново: %d", n)
	}
	mr.FastForward(2 * time.Minute)
	if n, _ := c.CountAttempt(ctx, "otp-reset:a@b.c", time.Minute); n != 1 {
		t.Fatalf("счётчик должен истечь: %d", n)
	}
}
