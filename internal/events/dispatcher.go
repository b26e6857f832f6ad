package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"catalog-service/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Envelope is the wire form of a published catalog event
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps event in an Envelope and marshals it
func Encode(event model.Event, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}
	return json.Marshal(Envelope{Type: event.Type(), OccurredAt: at.UTC(), Payload: payload})
}

// RedisDispatcher publishes events on a redis pub/sub channel
type RedisDispatcher struct {
	client  *redis.Client
	channel string
}

// NewRedisDispatcher connects to redis and checks the connection
func NewRedisDispatcher(ctx context.Context, opts *redis.Options, channel string) (*RedisDispatcher, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisDispatcher{client: client, channel: channel}, nil
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, event model.Event) error {
	msg, err := Encode(event, time.Now())
	if err != nil {
		return err
	}
	if err := d.client.Publish(ctx, d.channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type(), err)
	}
	return nil
}

// Close releases the redis connection pool
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}

// LogDispatcher writes events to the log; used when redis is not configured
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event model.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}
	d.log.Info("Catalog event",
		zap.String("event", event.Type()),
		zap.ByteString("payload", payload))
	return nil
}

// Recorder keeps dispatched events in memory
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Dispatch(ctx context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything dispatched so far
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}
