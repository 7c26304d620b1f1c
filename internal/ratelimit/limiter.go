package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const (
	ReasonCooldown    = "cooldown"
	ReasonDailyCap    = "daily_cap"
	ReasonLifetimeCap = "lifetime_cap"

	dailyWindow = 24 * time.Hour
)

type Limits struct {
	Cooldown    time.Duration
	DailyCap    int64
	LifetimeCap int64
}

// Decision is the outcome of Allow. RetryAfter is zero when retrying will not help.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Duration
}

// Limiter applies a cooldown, a daily cap and a lifetime cap per (client ip, phone) pair.
type Limiter struct {
	store  Store
	limits Limits
	now    func() time.Time
}

func NewLimiter(store Store, limits Limits) *Limiter {
	return &Limiter{store: store, limits: limits, now: time.Now}
}

func cooldownKey(ip, phone string) string {
	return fmt.Sprintf("contact:cooldown:%s:%s", ip, phone)
}

func dailyKey(ip, phone string, day time.Time) string {
	return fmt.Sprintf("contact:daily:%s:%s:%s", ip, phone, day.Format("20060102"))
}

func totalKey(ip, phone string) string {
	return fmt.Sprintf("contact:total:%s:%s", ip, phone)
}

// Allow checks the caps and starts the cooldown window when the submission may proceed.
func (l *Limiter) Allow(ctx context.Context, ip, phone string) (Decision, error) {
	total, err := l.store.Get(ctx, totalKey(ip, phone))
	if err != nil {
		return Decision{}, fmt.Errorf("read lifetime counter: %w", err)
	}
	if total >= l.limits.LifetimeCap {
		return Decision{Reason: ReasonLifetimeCap}, nil
	}

	daily := dailyKey(ip, phone, l.now())
	count, err := l.store.Get(ctx, daily)
	if err != nil {
		return Decision{}, fmt.Errorf("read daily counter: %w", err)
	}
	if count >= l.limits.DailyCap {
		retry, err := l.store.TTL(ctx, daily)
		if err != nil || retry == 0 {
			retry = dailyWindow
		}
		return Decision{Reason: ReasonDailyCap, RetryAfter: retry}, nil
	}

	cooldown := cooldownKey(ip, phone)
	ok, err := l.store.SetNX(ctx, cooldown, l.limits.Cooldown)
	if err != nil {
		return Decision{}, fmt.Errorf("set cooldown: %w", err)
	}
	if !ok {
		retry, err := l.store.TTL(ctx, cooldown)
		if err != nil || retry == 0 {
			retry = l.limits.Cooldown
		}
		return Decision{Reason: ReasonCooldown, RetryAfter: retry}, nil
	}

	return Decision{Allowed: true}, nil
}

// Record counts an accepted submission against the daily and lifetime caps.
func (l *Limiter) Record(ctx context.Context, ip, phone string) error {
	daily := dailyKey(ip, phone, l.now())
	n, err := l.store.Incr(ctx, daily)
	if err != nil {
		return fmt.Errorf("incr daily counter: %w", err)
	}
	if n == 1 {
		if err := l.store.Expire(ctx, daily, dailyWindow); err != nil {
			return fmt.Errorf("expire daily counter: %w", err)
		}
	}
	if _, err := l.store.Incr(ctx, totalKey(ip, phone)); err != nil {
		return fmt.Errorf("incr lifetime counter: %w", err)
	}
	return nil
}
