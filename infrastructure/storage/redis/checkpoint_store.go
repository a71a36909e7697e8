// Package redis provides a Redis-backed checkpoint store for deployments
// where workflow threads are shared across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ssumakant/abp-agent/domain/checkpoint"
)

// keyPrefix namespaces checkpoint keys in the keyspace.
const keyPrefix = "abp:checkpoint:"

// maxCASRetries bounds optimistic transaction retries under contention.
const maxCASRetries = 3

// CheckpointStore is a Redis-backed implementation of checkpoint.Store.
// Compare-and-swap uses WATCH/MULTI transactions, so two concurrent
// resumes of the same thread cannot both claim the pending action.
type CheckpointStore struct {
	client *redis.Client
}

// Config configures the Redis checkpoint store.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the optional server password.
	Password string

	// DB is the database number.
	DB int

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		DialTimeout: 5 * time.Second,
	}
}

// NewCheckpointStore creates a new Redis checkpoint store.
func NewCheckpointStore(cfg Config) *CheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	return &CheckpointStore{client: client}
}

// NewCheckpointStoreFromClient creates a store from an existing client.
func NewCheckpointStoreFromClient(client *redis.Client) *CheckpointStore {
	return &CheckpointStore{client: client}
}

// Put writes a checkpoint, enforcing compare-and-swap on Version.
func (s *CheckpointStore) Put(ctx context.Context, cp checkpoint.Checkpoint) (checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint{}, err
	}
	if cp.ThreadID == "" {
		return checkpoint.Checkpoint{}, checkpoint.ErrInvalidThreadID
	}

	key := keyPrefix + cp.ThreadID
	var stored checkpoint.Checkpoint

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if cp.Version != 0 {
				return checkpoint.ErrVersionConflict
			}
		case err != nil:
			return errors.Join(checkpoint.ErrStoreUnavailable, err)
		default:
			var current checkpoint.Checkpoint
			if err := json.Unmarshal(data, &current); err != nil {
				return err
			}
			if current.Version != cp.Version {
				return checkpoint.ErrVersionConflict
			}
		}

		stored = checkpoint.Checkpoint{
			ThreadID:  cp.ThreadID,
			Version:   cp.Version + 1,
			State:     cp.State,
			UpdatedAt: time.Now(),
		}
		encoded, err := json.Marshal(stored)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Key changed between WATCH and EXEC. Re-run the transaction:
			// the fresh read decides whether our version is actually stale.
			continue
		}
		return checkpoint.Checkpoint{}, err
	}

	return checkpoint.Checkpoint{}, checkpoint.ErrVersionConflict
}

// Get retrieves the latest checkpoint for a thread.
func (s *CheckpointStore) Get(ctx context.Context, threadID string) (checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint{}, err
	}
	if threadID == "" {
		return checkpoint.Checkpoint{}, checkpoint.ErrInvalidThreadID
	}

	data, err := s.client.Get(ctx, keyPrefix+threadID).Bytes()
	if errors.Is(err, redis.Nil) {
		return checkpoint.Checkpoint{}, checkpoint.ErrNotFound
	}
	if err != nil {
		return checkpoint.Checkpoint{}, errors.Join(checkpoint.ErrStoreUnavailable, err)
	}

	var cp checkpoint.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return checkpoint.Checkpoint{}, err
	}

	return cp, nil
}

// Delete removes a thread's checkpoint.
func (s *CheckpointStore) Delete(ctx context.Context, threadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if threadID == "" {
		return checkpoint.ErrInvalidThreadID
	}

	removed, err := s.client.Del(ctx, keyPrefix+threadID).Result()
	if err != nil {
		return errors.Join(checkpoint.ErrStoreUnavailable, err)
	}
	if removed == 0 {
		return checkpoint.ErrNotFound
	}

	return nil
}

// List returns all thread IDs with a stored checkpoint.
func (s *CheckpointStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(checkpoint.ErrStoreUnavailable, err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *CheckpointStore) Close() error {
	return s.client.Close()
}

var _ checkpoint.Store = (*CheckpointStore)(nil)
