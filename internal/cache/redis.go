// Package cache holds Redis read-through decorators for the catalog
// projections that the booking engine consults on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"go.uber.org/zap"
)

// Config configures the Redis client.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// NewRedisClient creates a Redis client from cfg.
func NewRedisClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func userKey(id int64) string { return fmt.Sprintf("shareit:user:%d", id) }
func itemKey(id int64) string { return fmt.Sprintf("shareit:item:%d", id) }

// store is the JSON plumbing shared by both decorators. Redis failures are
// logged and treated as a miss so the backing store stays authoritative.
//
// Every key has a companion generation counter that writers bump. A reader
// records the generation before consulting the backing store and fills the
// cache only if it is unchanged, so a value read before a concurrent write
// is never cached after that write's invalidation.
type store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var errStaleFill = errors.New("generation moved during read")

func generationKey(key string) string { return key + ":gen" }

func (s store) get(ctx context.Context, key string, dst any) bool {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		s.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// generation returns key's write generation, or false when Redis cannot
// answer, in which case the caller must not fill.
func (s store) generation(ctx context.Context, key string) (int64, bool) {
	gen, err := s.client.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("cache generation read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// fill caches v under key unless a write moved the generation past seen.
func (s store) fill(ctx context.Context, key string, seen int64, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	genKey := generationKey(key)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != seen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		s.logger.Debug("cache fill skipped after concurrent write", zap.String("key", key))
	default:
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate bumps key's generation and drops the cached value in one
// transaction.
func (s store) invalidate(ctx context.Context, key string) {
	genKey := generationKey(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		if s.ttl > 0 {
			pipe.Expire(ctx, genKey, max(2*s.ttl, time.Hour))
		}
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// readThrough serves key from the cache or loads it, filling the cache when
// no write raced the load.
func readThrough[T any](ctx context.Context, s store, key string, load func() (*T, error)) (*T, error) {
	var cached T
	if s.get(ctx, key, &cached) {
		return &cached, nil
	}
	seen, ok := s.generation(ctx, key)
	found, err := load()
	if err != nil {
		return nil, err
	}
	if ok {
		s.fill(ctx, key, seen, found)
	}
	return found, nil
}

// ItemRepository caches catalog.Item lookups in front of another repository.
type ItemRepository struct {
	next  catalog.ItemRepository
	cache store
}

// NewItemRepository wraps next with a Redis read-through cache.
func NewItemRepository(next catalog.ItemRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{next: next, cache: store{client: client, ttl: ttl, logger: logger}}
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*catalog.Item, error) {
	return readThrough(ctx, r.cache, itemKey(id), func() (*catalog.Item, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *ItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	if err := r.next.Save(ctx, item); err != nil {
		return err
	}
	r.cache.invalidate(ctx, itemKey(item.ID))
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.invalidate(ctx, itemKey(id))
	return nil
}

// UserRepository caches catalog.User lookups in front of another repository.
type UserRepository struct {
	next  catalog.UserRepository
	cache store
}

// NewUserRepository wraps next with a Redis read-through cache.
func NewUserRepository(next catalog.UserRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *UserRepository {
	return &UserRepository{next: next, cache: store{client: client, ttl: ttl, logger: logger}}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*catalog.User, error) {
	return readThrough(ctx, r.cache, userKey(id), func() (*catalog.User, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *UserRepository) Save(ctx context.Context, user *catalog.User) error {
	if err := r.next.Save(ctx, user); err != nil {
		return err
	}
	r.cache.invalidate(ctx, userKey(user.ID))
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.invalidate(ctx, userKey(id))
	return nil
}
