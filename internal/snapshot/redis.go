package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	// Prefix namespaces every key. Empty means milcalc:snapshot.
	Prefix string `yaml:"prefix,omitempty"`
}

// RedisStore keeps snapshots in Redis: one JSON value per snapshot plus a
// sorted set per calculator, scored by timestamp, used as the index.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, logger *zap.Logger, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Address, err)
	}
	return NewRedisStoreWithClient(logger, client, opts.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(logger *zap.Logger, client *redis.Client, prefix string) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = constants.SnapshotKeyPrefix
	}
	return &RedisStore{client: client, logger: logger, prefix: prefix, now: time.Now}
}

// Close releases the connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(calculatorKey, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, calculatorKey, id)
}

func (r *RedisStore) indexKey(calculatorKey string) string {
	return fmt.Sprintf("%s:%s:index", r.prefix, calculatorKey)
}

// Save writes the snapshot and its index entry in one transaction.
func (r *RedisStore) Save(ctx context.Context, snapshot Snapshot) (Snapshot, error) {
	snapshot, err := prepare(snapshot, r.now())
	if err != nil {
		return Snapshot{}, err
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(snapshot.Calculator, snapshot.ID), payload, 0)
		pipe.ZAdd(ctx, r.indexKey(snapshot.Calculator), redis.Z{
			Score:  float64(snapshot.Timestamp.UnixNano()),
			Member: snapshot.ID,
		})
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Debug("saved snapshot",
		zap.String("op", "snapshot.RedisStore.Save"),
		zap.String("calculator", snapshot.Calculator),
		zap.String("id", snapshot.ID),
	)
	return snapshot, nil
}

// Get reads one snapshot.
func (r *RedisStore) Get(ctx context.Context, calculatorKey, id string) (Snapshot, error) {
	payload, err := r.client.Get(ctx, r.key(calculatorKey, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return snapshot, nil
}

// List reads the calculator's snapshots, newest first. Index entries whose
// value has disappeared are skipped.
func (r *RedisStore) List(ctx context.Context, calculatorKey string) ([]Snapshot, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(calculatorKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot index: %w", err)
	}
	if len(ids) == 0 {
		return []Snapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(calculatorKey, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(values))
	for i, value := range values {
		payload, ok := value.(string)
		if !ok {
			r.logger.Warn("snapshot index references a missing value",
				zap.String("op", "snapshot.RedisStore.List"),
				zap.String("id", ids[i]),
			)
			continue
		}
		var snapshot Snapshot
		if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", ids[i], err)
		}
		snapshots = append(snapshots, snapshot)
	}
	sortNewestFirst(snapshots)
	return snapshots, nil
}

// Delete removes the snapshot and its index entry.
func (r *RedisStore) Delete(ctx context.Context, calculatorKey, id string) error {
	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.key(calculatorKey, id))
		pipe.ZRem(ctx, r.indexKey(calculatorKey), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
