// Package postgres provides a PostgreSQL-backed per-message store. Values
// are stored as jsonb keyed by (chat_id, message_id), giving durable message
// state with efficient per-chat bulk operations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alem-hub/botcore/state"
	"github.com/alem-hub/botcore/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds PostgreSQL connection configuration.
type Config struct {
	// Host is the database host.
	Host string

	// Port is the database port.
	Port int

	// Database is the database name.
	Database string

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// SSLMode is the SSL mode (disable, require, verify-ca, verify-full).
	SSLMode string

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32

	// MinConns is the minimum number of connections in the pool.
	MinConns int32

	// ConnectTimeout is the timeout for establishing a connection.
	ConnectTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Port:           5432,
		Database:       "postgres",
		User:           "postgres",
		SSLMode:        "disable",
		MaxConns:       10,
		MinConns:       2,
		ConnectTimeout: 10 * time.Second,
	}
}

// DSN returns the connection string for PostgreSQL.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s connect_timeout=%d",
		c.Host,
		c.Port,
		c.Database,
		c.User,
		c.Password,
		c.SSLMode,
		int(c.ConnectTimeout.Seconds()),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound is returned when no value is stored for the key.
	ErrNotFound = errors.New("messagestore: not found")

	// ErrSerialization is returned when a value cannot be (de)serialized.
	ErrSerialization = errors.New("messagestore: serialization failed")
)

var codecJSON = telegram.Codec()

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE STORE
// ══════════════════════════════════════════════════════════════════════════════

// MessageStore persists per-message values in one table. Unlike the
// in-memory store it is safe for concurrent use; the database serializes
// writes.
type MessageStore[T any] struct {
	pool  *pgxpool.Pool
	table string
}

// NewMessageStore connects to PostgreSQL, ensures the backing table exists,
// and binds the store to it. The table name must be a plain identifier.
func NewMessageStore[T any](ctx context.Context, cfg Config, table string) (*MessageStore[T], error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("messagestore: parse config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("messagestore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("messagestore: ping: %w", err)
	}

	s := &MessageStore[T]{pool: pool, table: table}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewMessageStoreWithPool binds the store to an existing pool. The backing
// table is created when missing.
func NewMessageStoreWithPool[T any](ctx context.Context, pool *pgxpool.Pool, table string) (*MessageStore[T], error) {
	s := &MessageStore[T]{pool: pool, table: table}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MessageStore[T]) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			chat_id    BIGINT NOT NULL,
			message_id BIGINT NOT NULL,
			value      JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (chat_id, message_id)
		)
	`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("messagestore: create table: %w", err)
	}
	return nil
}

// Pool returns the underlying connection pool.
func (s *MessageStore[T]) Pool() *pgxpool.Pool { return s.pool }

// Close closes the connection pool.
func (s *MessageStore[T]) Close() { s.pool.Close() }

// Get returns the value stored for key. Returns ErrNotFound when absent.
func (s *MessageStore[T]) Get(ctx context.Context, key state.MessageKey) (T, error) {
	var value T
	query := fmt.Sprintf("SELECT value FROM %s WHERE chat_id = $1 AND message_id = $2", s.table)

	var raw []byte
	err := s.pool.QueryRow(ctx, query, key.ChatID, key.MessageID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return value, ErrNotFound
		}
		return value, err
	}
	if err := codecJSON.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *MessageStore[T]) Set(ctx context.Context, key state.MessageKey, value T) error {
	data, err := codecJSON.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (chat_id, message_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, message_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, s.table)
	_, err = s.pool.Exec(ctx, query, key.ChatID, key.MessageID, data)
	return err
}

// Delete removes the value stored for key.
func (s *MessageStore[T]) Delete(ctx context.Context, key state.MessageKey) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE chat_id = $1 AND message_id = $2", s.table)
	_, err := s.pool.Exec(ctx, query, key.ChatID, key.MessageID)
	return err
}

// LenInChat returns the number of entries stored for one chat.
func (s *MessageStore[T]) LenInChat(ctx context.Context, chatID int64) (int, error) {
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE chat_id = $1", s.table)
	var n int
	if err := s.pool.QueryRow(ctx, query, chatID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ClearInChat removes every entry stored for one chat and returns how many
// were removed.
func (s *MessageStore[T]) ClearInChat(ctx context.Context, chatID int64) (int, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE chat_id = $1", s.table)
	tag, err := s.pool.Exec(ctx, query, chatID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ForEachInChat calls fn for every entry of one chat. Returning false stops
// the iteration.
func (s *MessageStore[T]) ForEachInChat(ctx context.Context, chatID int64, fn func(messageID int64, value T) bool) error {
	query := fmt.Sprintf("SELECT message_id, value FROM %s WHERE chat_id = $1 ORDER BY message_id", s.table)
	rows, err := s.pool.Query(ctx, query, chatID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var messageID int64
		var raw []byte
		if err := rows.Scan(&messageID, &raw); err != nil {
			return err
		}
		var value T
		if err := codecJSON.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("%w: message %d: %v", ErrSerialization, messageID, err)
		}
		if !fn(messageID, value) {
			return nil
		}
	}
	return rows.Err()
}
