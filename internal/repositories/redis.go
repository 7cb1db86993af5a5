package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// RedisStore keeps each snapshot in a hash and indexes names in a sorted set scored by update time.
//
//	<prefix>:playlist:<name>  hash {data, usage, updated_at}
//	<prefix>:playlists        zset name -> updated_at (unix ms)
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix defaults to "setlist".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "setlist"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// OpenRedis parses the configured URL, connects and pings.
func OpenRedis(ctx context.Context, cfg shared.RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: redis url", shared.ErrMissingConfig)
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisStore(rdb, cfg.Prefix), nil
}

func (s *RedisStore) key(name string) string { return s.prefix + ":playlist:" + name }
func (s *RedisStore) index() string          { return s.prefix + ":playlists" }

func (s *RedisStore) Upsert(ctx context.Context, name string, payload []byte, usage int64) error {
	if name == "" {
		return fmt.Errorf("%w: empty playlist name", shared.ErrInvalidInput)
	}

	now := time.Now().UTC()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(name),
			"data", payload,
			"usage", usage,
			"updated_at", now.Format(time.RFC3339Nano),
		)
		pipe.ZAdd(ctx, s.index(), redis.Z{Score: float64(now.UnixMilli()), Member: name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := s.rdb.HGet(ctx, s.key(name), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return data, nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	names, err := s.rdb.ZRevRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot index: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	fields := make([]*redis.SliceCmd, len(names))
	sizes := make([]*redis.IntCmd, len(names))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			fields[i] = pipe.HMGet(ctx, s.key(name), "usage", "updated_at")
			sizes[i] = pipe.HStrLen(ctx, s.key(name), "data")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	infos := make([]models.SnapshotInfo, 0, len(names))
	for i, name := range names {
		vals := fields[i].Val()
		if len(vals) != 2 || vals[0] == nil {
			continue
		}

		info := models.SnapshotInfo{Name: name, Size: int(sizes[i].Val())}
		if v, ok := vals[0].(string); ok {
			info.Usage, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := vals[1].(string); ok {
			info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, v)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Delete removes the hash and its index entry in one transaction.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	var removed *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, s.key(name))
		pipe.ZRem(ctx, s.index(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, name)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	names, err := s.rdb.ZRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read snapshot index: %w", err)
	}

	keys := make([]string, 0, len(names)+1)
	for _, name := range names {
		keys = append(keys, s.key(name))
	}
	keys = append(keys, s.index())

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
