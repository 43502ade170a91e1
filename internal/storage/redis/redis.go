// Package redis stores snapshots in Redis hashes keyed <prefix>:save:<name>.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/config"
	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/storage"
)

// ErrSnapshotNotFound is returned when no hash exists for a save name.
var ErrSnapshotNotFound = storage.ErrSnapshotNotFound

const (
	fieldBody    = "body"
	fieldDay     = "day"
	fieldSavedAt = "saved_at"
)

// Store is a redis-backed snapshot store.
type Store struct {
	client  goredis.UniversalClient
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// Dial connects to the server named in cfg and pings it.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a connected Store or a non-nil error.
func Dial(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	s := New(client, cfg.KeyPrefix, cfg.Timeout, logger)
	if err := s.Health(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", cfg.Addr, err)
	}
	return s, nil
}

// New wraps an existing client.
//
// Precondition: client must be non-nil.
func New(client goredis.UniversalClient, prefix string, timeout time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "cloudranger"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{client: client, prefix: prefix, timeout: timeout, logger: logger}
}

func (s *Store) key(name string) string {
	return s.prefix + ":save:" + name
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Health pings the server.
func (s *Store) Health(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Save replaces the hash for name.
func (s *Store) Save(ctx context.Context, name string, snap engine.Snapshot) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := s.key(name)
	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldBody, data,
			fieldDay, snap.Day,
			fieldSavedAt, time.Now().UTC().Format(time.RFC3339Nano),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", name, err)
	}
	s.logger.Info("snapshot saved", zap.String("name", name), zap.Int("day", snap.Day), zap.String("key", key))
	return nil
}

// Load reads the body field of the hash for name.
//
// Postcondition: Returns ErrSnapshotNotFound when the key does not exist.
func (s *Store) Load(ctx context.Context, name string) (engine.Snapshot, error) {
	if err := storage.ValidateName(name); err != nil {
		return engine.Snapshot{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.client.HGet(ctx, s.key(name), fieldBody).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return engine.Snapshot{}, fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
		}
		return engine.Snapshot{}, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	snap, err := engine.UnmarshalSnapshot(data)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return snap, nil
}

// List scans the prefix for saves, most recent first.
func (s *Store) List(ctx context.Context) ([]storage.Summary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	head := s.prefix + ":save:"
	var out []storage.Summary
	iter := s.client.Scan(ctx, 0, head+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		vals, err := s.client.HMGet(ctx, key, fieldDay, fieldSavedAt).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		sum := storage.Summary{Name: strings.TrimPrefix(key, head)}
		if v, ok := vals[0].(string); ok {
			sum.Day, _ = strconv.Atoi(v)
		}
		if v, ok := vals[1].(string); ok {
			sum.SavedAt, _ = time.Parse(time.RFC3339Nano, v)
		}
		out = append(out, sum)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning saves: %w", err)
	}
	slices.SortStableFunc(out, func(a, b storage.Summary) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}
