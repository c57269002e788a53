package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ai-act-chat/internal/db"
)

// DefaultDailyLimit is the number of chat requests admitted per calendar
// day
const DefaultDailyLimit = 100

// DailyLimiter gates request admission against a per-day budget. Admit is
// checked before any paid upstream call; Record is called once a request is
// actually admitted.
type DailyLimiter interface {
	// Admit reports whether another request fits in today's budget
	Admit(ctx context.Context) (bool, error)

	// Record counts one admitted request and returns the new total for
	// today
	Record(ctx context.Context) (int, error)
}

// MemoryDailyLimiter is the in-process limiter. The stored day is compared
// against the clock before every read or increment, so a process that runs
// across midnight starts the new day at zero.
type MemoryDailyLimiter struct {
	mu    sync.Mutex
	count int
	day   string
	limit int
	now   func() time.Time
}

// NewMemoryDailyLimiter creates an in-process daily limiter
func NewMemoryDailyLimiter(limit int) *MemoryDailyLimiter {
	if limit < 1 {
		limit = DefaultDailyLimit
	}
	return &MemoryDailyLimiter{
		limit: limit,
		now:   time.Now,
	}
}

// Admit reports whether the daily budget still has room
func (l *MemoryDailyLimiter) Admit(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	return l.count < l.limit, nil
}

// Record increments today's count and returns it
func (l *MemoryDailyLimiter) Record(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	l.count++
	return l.count, nil
}

// rolloverLocked resets the counter when the calendar day has changed.
// Must hold l.mu.
func (l *MemoryDailyLimiter) rolloverLocked() {
	today := l.now().Format("2006-01-02")
	if l.day != today {
		l.day = today
		l.count = 0
	}
}

// CounterStore is the slice of the redis client the daily limiter needs
type CounterStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

var _ CounterStore = (*db.RedisClient)(nil)

// RedisDailyLimiter shares the daily budget across replicas. Rollover is
// implicit in the dated key; the expiry just keeps old keys from piling up.
type RedisDailyLimiter struct {
	client CounterStore
	limit  int
	prefix string
	logger *log.Logger
	now    func() time.Time
}

// NewRedisDailyLimiter creates a redis-backed daily limiter
func NewRedisDailyLimiter(client CounterStore, limit int, logger *log.Logger) *RedisDailyLimiter {
	if limit < 1 {
		limit = DefaultDailyLimit
	}
	return &RedisDailyLimiter{
		client: client,
		limit:  limit,
		prefix: "chat:daily:",
		logger: logger,
		now:    time.Now,
	}
}

func (l *RedisDailyLimiter) key() string {
	return l.prefix + l.now().Format("2006-01-02")
}

// Admit reports whether the shared daily budget still has room. A redis
// failure surfaces as an error rather than an open gate: the caller decides,
// before any paid upstream call is made.
func (l *RedisDailyLimiter) Admit(ctx context.Context) (bool, error) {
	val, found, err := l.client.Get(ctx, l.key())
	if err != nil {
		return false, fmt.Errorf("reading daily counter: %w", err)
	}
	if !found {
		// Nothing recorded today
		return true, nil
	}

	var count int
	if _, err := fmt.Sscanf(val, "%d", &count); err != nil {
		return false, fmt.Errorf("parsing daily counter: %w", err)
	}
	return count < l.limit, nil
}

// Record increments the shared counter and returns today's total
func (l *RedisDailyLimiter) Record(ctx context.Context) (int, error) {
	key := l.key()
	count, err := l.client.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("incrementing daily counter: %w", err)
	}

	// First increment of the day sets the expiry
	if count == 1 {
		if err := l.client.Expire(ctx, key, 48*time.Hour); err != nil {
			l.logger.Printf("Failed to set expiry on %s: %v", key, err)
		}
	}

	return int(count), nil
}
