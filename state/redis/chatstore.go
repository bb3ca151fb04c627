// Package redis provides a Redis-backed per-chat store. Values are JSON
// serialized into one hash per store, field-keyed by chat id, so the store
// survives restarts and can be shared by multiple bot processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/botcore/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound is returned when no value is stored for the chat.
	ErrNotFound = errors.New("chatstore: not found")

	// ErrConnection is returned when the Redis connection fails.
	ErrConnection = errors.New("chatstore: connection failed")

	// ErrSerialization is returned when a value cannot be (de)serialized.
	ErrSerialization = errors.New("chatstore: serialization failed")
)

// codecJSON matches the wire layer's JSON configuration.
var codecJSON = telegram.Codec()

// ══════════════════════════════════════════════════════════════════════════════
// CHAT STORE
// ══════════════════════════════════════════════════════════════════════════════

// ChatStore persists per-chat values in a Redis hash. Unlike the in-memory
// store it is safe for concurrent use; Redis serializes the hash operations.
type ChatStore[T any] struct {
	client *redis.Client
	key    string
}

// NewChatStore connects to Redis and binds the store to one hash key,
// typically "botcore:chats:<botname>".
func NewChatStore[T any](ctx context.Context, cfg Config, key string) (*ChatStore[T], error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return &ChatStore[T]{client: client, key: key}, nil
}

// NewChatStoreWithClient binds the store to an existing client.
func NewChatStoreWithClient[T any](client *redis.Client, key string) *ChatStore[T] {
	return &ChatStore[T]{client: client, key: key}
}

// Close closes the underlying connection.
func (s *ChatStore[T]) Close() error {
	return s.client.Close()
}

func chatField(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Get returns the value stored for chatID. Returns ErrNotFound when absent.
func (s *ChatStore[T]) Get(ctx context.Context, chatID int64) (T, error) {
	var value T
	data, err := s.client.HGet(ctx, s.key, chatField(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return value, ErrNotFound
		}
		return value, err
	}
	if err := codecJSON.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return value, nil
}

// Set stores value under chatID, replacing any previous value.
func (s *ChatStore[T]) Set(ctx context.Context, chatID int64, value T) error {
	data, err := codecJSON.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return s.client.HSet(ctx, s.key, chatField(chatID), data).Err()
}

// Delete removes the value stored for chatID.
func (s *ChatStore[T]) Delete(ctx context.Context, chatID int64) error {
	return s.client.HDel(ctx, s.key, chatField(chatID)).Err()
}

// Len returns the number of chats with a stored value.
func (s *ChatStore[T]) Len(ctx context.Context) (int64, error) {
	return s.client.HLen(ctx, s.key).Result()
}

// ForEach calls fn for every stored entry in unspecified order. Returning
// false stops the iteration.
func (s *ChatStore[T]) ForEach(ctx context.Context, fn func(chatID int64, value T) bool) error {
	entries, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return err
	}
	for field, raw := range entries {
		chatID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad field %q", ErrSerialization, field)
		}
		var value T
		if err := codecJSON.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("%w: chat %d: %v", ErrSerialization, chatID, err)
		}
		if !fn(chatID, value) {
			return nil
		}
	}
	return nil
}

// Clear removes every entry of the store.
func (s *ChatStore[T]) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
