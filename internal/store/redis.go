package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Carlavier/ai-chat-hub/internal/metrics"
	"github.com/Carlavier/ai-chat-hub/internal/models"
)

const presencePrefix = "user:"

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithRetention overrides the retention limit of a surface.
func WithRetention(surface Surface, limit int) Option {
	return func(s *RedisStore) {
		if limit > 0 {
			s.retention[surface] = limit
		}
	}
}

// RedisStore keeps conversation logs in Redis lists and presence in TTL keys.
type RedisStore struct {
	client    *redis.Client
	retention map[Surface]int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, opts ...Option) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(redisOpts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, unavailable("ping", err)
	}

	return NewRedisStoreFromClient(client, opts...), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, opts ...Option) *RedisStore {
	s := &RedisStore{client: client, retention: make(map[Surface]int)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying client for rate limiting.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Retention reports the limit enforced for the surface.
func (s *RedisStore) Retention(surface Surface) int {
	if n, ok := s.retention[surface]; ok {
		return n
	}
	return surface.Retention()
}

// presenceKey returns the key marking a user as active.
func presenceKey(name string) string {
	return presencePrefix + name
}

// Append pushes a message and trims the list in a single transaction.
func (s *RedisStore) Append(ctx context.Context, surface Surface, msg models.Message) (models.Message, error) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := encodeRecord(surface, msg)
	if err != nil {
		return msg, fmt.Errorf("encode message: %w", err)
	}

	key := surface.Key()
	limit := int64(s.Retention(surface))

	start := time.Now()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -limit, -1)
		return nil
	})
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return msg, unavailable("append", err)
	}

	metrics.MessagesAppended.WithLabelValues(string(surface)).Inc()
	return msg, nil
}

// ReadWindow returns a slice of the log using LRANGE index semantics.
func (s *RedisStore) ReadWindow(ctx context.Context, surface Surface, from, to int64) ([]models.Message, error) {
	start := time.Now()
	results, err := s.client.LRange(ctx, surface.Key(), from, to).Result()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, unavailable("read", err)
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		if data == "" {
			continue
		}
		msg, err := decodeRecord(surface, []byte(data))
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Recent returns the last n messages of the log.
func (s *RedisStore) Recent(ctx context.Context, surface Surface, n int) ([]models.Message, error) {
	if n <= 0 {
		return s.ReadWindow(ctx, surface, 0, -1)
	}
	return s.ReadWindow(ctx, surface, int64(-n), -1)
}

// Clear deletes the surface's log.
func (s *RedisStore) Clear(ctx context.Context, surface Surface) error {
	if err := s.client.Del(ctx, surface.Key()).Err(); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

// SetPresence marks name as active for ttl. A non-positive ttl removes the marker.
func (s *RedisStore) SetPresence(ctx context.Context, name string, ttl time.Duration) error {
	key := presenceKey(name)

	var err error
	if ttl <= 0 {
		err = s.client.Del(ctx, key).Err()
	} else {
		err = s.client.SetEx(ctx, key, "active", ttl).Err()
	}
	if err != nil {
		return unavailable("set presence", err)
	}
	return nil
}

// ListPresence returns the names with a live presence marker.
func (s *RedisStore) ListPresence(ctx context.Context) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	// SCAN may return a key more than once
	iter := s.client.Scan(ctx, 0, presencePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		name := strings.TrimPrefix(iter.Val(), presencePrefix)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := iter.Err(); err != nil {
		return nil, unavailable("list presence", err)
	}

	return names, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

var (
	_ HistoryStore  = (*RedisStore)(nil)
	_ PresenceStore = (*RedisStore)(nil)
)
