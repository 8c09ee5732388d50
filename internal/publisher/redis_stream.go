package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultPropsStream receives one entry per exported prop.
const DefaultPropsStream = "props.daily." + store.Sport

// RedisStreamPublisher publishes exported props to a Redis stream
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	now    func() time.Time
	log    *logger.Logger
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client, stream string, log *logger.Logger) *RedisStreamPublisher {
	if stream == "" {
		stream = DefaultPropsStream
	}
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		now:    time.Now,
		log:    log.Named("redis"),
	}
}

// Connect parses redisURL, pings the server and returns a publisher for stream.
func Connect(ctx context.Context, redisURL, stream string, log *logger.Logger) (*RedisStreamPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisStreamPublisher(client, stream, log), nil
}

// Close closes the Redis connection
func (p *RedisStreamPublisher) Close() error {
	return p.client.Close()
}

// Stream returns the stream name entries are added to.
func (p *RedisStreamPublisher) Stream() string {
	return p.stream
}

// Name identifies the publisher when used as a props sink.
func (p *RedisStreamPublisher) Name() string { return "redis" }

// PublishProps adds one stream entry per record in a single pipeline.
func (p *RedisStreamPublisher) PublishProps(ctx context.Context, day store.Date, records []store.PropRecord) error {
	if len(records) == 0 {
		return nil
	}

	ts := p.now().Unix()
	pipe := p.client.Pipeline()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{
				"date":      day.String(),
				"data":      string(data),
				"timestamp": ts,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing props to %s: %w", p.stream, err)
	}
	p.log.Debug("published props", zap.String("stream", p.stream), zap.Int("count", len(records)))
	return nil
}

// HealthCheck pings Redis to verify connection
func (p *RedisStreamPublisher) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
