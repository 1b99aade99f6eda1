package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

// Event names published on the bus.
const (
	EventJobCreated       = "job_created"
	EventJobProgress      = "job_progress"
	EventJobFailed        = "job_failed"
	EventJobDone          = "job_done"
	EventEstimatesUpdated = "estimates_updated"
)

// Event is one message on the bus; Channel is the user id.
type Event struct {
	Channel string         `json:"channel"`
	Event   string         `json:"event"`
	Data    map[string]any `json:"data,omitempty"`
}

type EventBus interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type RedisBusConfig struct {
	Addr    string
	Channel string
}

type redisEventBus struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

// NewRedisEventBus connects and pings before returning.
func NewRedisEventBus(log *logger.Logger, cfg RedisBusConfig) (EventBus, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "cqox-events"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisEventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *redisEventBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisEventBus) Close() error { return b.rdb.Close() }

// logEventBus stands in when Redis is not configured.
type logEventBus struct {
	log *logger.Logger
}

func NewLogEventBus(log *logger.Logger) EventBus {
	return &logEventBus{log: log.With("service", "LogEventBus")}
}

func (b *logEventBus) Publish(_ context.Context, ev Event) error {
	b.log.Debug("event", "event", ev.Event, "user_id", ev.Channel)
	return nil
}

func (b *logEventBus) Close() error { return nil }
