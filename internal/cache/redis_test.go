package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"github.com/shareit/service-booking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingItems struct {
	catalog.ItemRepository
	finds int
}

func (c *countingItems) FindByID(ctx context.Context, id int64) (*catalog.Item, error) {
	c.finds++
	return c.ItemRepository.FindByID(ctx, id)
}

// racingItems runs onRead once, after the backing read and before the result
// reaches the cache, to interleave a write with a read-through.
type racingItems struct {
	catalog.ItemRepository
	onRead func()
}

func (r *racingItems) FindByID(ctx context.Context, id int64) (*catalog.Item, error) {
	item, err := r.ItemRepository.FindByID(ctx, id)
	if hook := r.onRead; hook != nil {
		r.onRead = nil
		hook()
	}
	return item, err
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestItemRepository_ReadThrough(t *testing.T) {
	s, client := setupRedis(t)
	ctx := context.Background()

	backing := &countingItems{ItemRepository: memory.NewItemRepository()}
	drill := catalog.Item{ID: 10, Name: "Drill", Available: true, OwnerID: 1}
	require.NoError(t, backing.Save(ctx, &drill))

	repo := NewItemRepository(backing, client, time.Minute, zap.NewNop())

	t.Run("MissThenHit", func(t *testing.T) {
		got, err := repo.FindByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, drill, *got)
		assert.True(t, s.Exists("shareit:item:10"))

		got, err = repo.FindByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, drill, *got)
		assert.Equal(t, 1, backing.finds)
	})

	t.Run("TTLApplied", func(t *testing.T) {
		assert.Equal(t, time.Minute, s.TTL("shareit:item:10"))
	})

	t.Run("SaveInvalidates", func(t *testing.T) {
		changed := drill
		changed.Available = false
		require.NoError(t, repo.Save(ctx, &changed))
		assert.False(t, s.Exists("shareit:item:10"))

		got, err := repo.FindByID(ctx, 10)
		require.NoError(t, err)
		assert.False(t, got.Available)
	})

	t.Run("DeleteInvalidates", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, 10))
		assert.False(t, s.Exists("shareit:item:10"))

		_, err := repo.FindByID(ctx, 10)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}

func TestItemRepository_MissingIsNotCached(t *testing.T) {
	s, client := setupRedis(t)
	repo := NewItemRepository(memory.NewItemRepository(), client, time.Minute, zap.NewNop())

	_, err := repo.FindByID(context.Background(), 42)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.False(t, s.Exists("shareit:item:42"))
}

func TestUserRepository_FallsThroughWhenRedisDown(t *testing.T) {
	s, client := setupRedis(t)
	ctx := context.Background()

	backing := memory.NewUserRepository()
	alice := catalog.User{ID: 7, Name: "alice", Email: "alice@example.com"}
	require.NoError(t, backing.Save(ctx, &alice))

	repo := NewUserRepository(backing, client, time.Minute, zap.NewNop())
	s.Close()

	got, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, alice, *got)
}

func TestUserRepository_CorruptEntryIgnored(t *testing.T) {
	s, client := setupRedis(t)
	ctx := context.Background()

	backing := memory.NewUserRepository()
	alice := catalog.User{ID: 7, Name: "alice"}
	require.NoError(t, backing.Save(ctx, &alice))
	require.NoError(t, s.Set("shareit:user:7", "{not json"))

	repo := NewUserRepository(backing, client, time.Minute, zap.NewNop())
	got, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
}

func TestItemRepository_WriteDuringReadIsNotOverwritten(t *testing.T) {
	s, client := setupRedis(t)
	ctx := context.Background()

	backing := &racingItems{ItemRepository: memory.NewItemRepository()}
	drill := catalog.Item{ID: 10, Name: "Drill", Available: true, OwnerID: 1}
	require.NoError(t, backing.Save(ctx, &drill))

	repo := NewItemRepository(backing, client, time.Minute, zap.NewNop())

	withdrawn := drill
	withdrawn.Available = false
	backing.onRead = func() {
		require.NoError(t, repo.Save(ctx, &withdrawn))
	}

	stale, err := repo.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.True(t, stale.Available)
	assert.False(t, s.Exists("shareit:item:10"))

	got, err := repo.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.True(t, s.Exists("shareit:item:10"))
}

func TestItemRepository_InvalidationBumpsGeneration(t *testing.T) {
	s, client := setupRedis(t)
	ctx := context.Background()
	repo := NewItemRepository(memory.NewItemRepository(), client, time.Minute, zap.NewNop())

	drill := catalog.Item{ID: 10, Name: "Drill", OwnerID: 1}
	require.NoError(t, repo.Save(ctx, &drill))
	require.NoError(t, repo.Delete(ctx, 10))

	gen, err := s.Get("shareit:item:10:gen")
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
	assert.Equal(t, time.Hour, s.TTL("shareit:item:10:gen"))
}
