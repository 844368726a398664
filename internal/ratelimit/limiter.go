package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter implements fixed-window per-IP limits and per-email cooldowns on
// top of Redis. Keys expire with their window, so the limiter carries no
// state of its own.
type Limiter struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	cooldown time.Duration
}

func NewLimiter(client *redis.Client, limit int, window, cooldown time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		limit:    limit,
		window:   window,
		cooldown: cooldown,
	}
}

// CheckIPRateLimit reports whether the IP has exhausted the default window.
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip string) (bool, error) {
	return l.exceeded(ctx, ipKey(ip, ""))
}

// CheckIPRateLimitWithPurpose keeps separate counters per endpoint purpose
// (login, register, ...), so hammering one endpoint does not lock the others.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	return l.exceeded(ctx, ipKey(ip, purpose))
}

// RecordIPRequest counts a request against the default window.
func (l *Limiter) RecordIPRequest(ctx context.Context, ip string) error {
	return l.record(ctx, ipKey(ip, ""))
}

// RecordIPRequestWithPurpose counts a request against a purpose window.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	return l.record(ctx, ipKey(ip, purpose))
}

// CheckEmailCooldown reports whether the email is still cooling down from a
// previous request.
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	exists, err := l.client.Exists(ctx, emailKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}
	return exists > 0, nil
}

// SetEmailCooldown starts the cooldown window for an email.
func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	if err := l.client.Set(ctx, emailKey(email), 1, l.cooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return nil
}

func (l *Limiter) exceeded(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return count >= l.limit, nil
}

func (l *Limiter) record(ctx context.Context, key string) error {
	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

func ipKey(ip, purpose string) string {
	if purpose == "" {
		return fmt.Sprintf("ratelimit:ip:%s", ip)
	}
	return fmt.Sprintf("ratelimit:ip:%s:%s", ip, purpose)
}

// Emails are hashed into the key so addresses do not end up in Redis.
func emailKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return fmt.Sprintf("ratelimit:email:%s", hex.EncodeToString(sum[:]))
}
