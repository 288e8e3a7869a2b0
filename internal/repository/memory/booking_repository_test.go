package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"github.com/shareit/service-booking/internal/platform/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner  = catalog.User{ID: 1, Name: "owner"}
	booker = catalog.User{ID: 2, Name: "booker"}
	drill  = catalog.Item{ID: 10, Name: "Drill", Available: true, OwnerID: owner.ID}
	saw    = catalog.Item{ID: 11, Name: "Saw", Available: true, OwnerID: owner.ID}
)

func seed(t *testing.T, repo *BookingRepository, item catalog.Item, start, end time.Time) *bookingDomain.Booking {
	t.Helper()
	now := start.Add(-time.Hour)
	b, err := bookingDomain.NewBooking(item, booker, start, end, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), b))
	return b
}

func bookingIDs(bookings []*bookingDomain.Booking) []int64 {
	out := make([]int64, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID()
	}
	return out
}

func TestBookingRepository_SaveAssignsSequentialIDs(t *testing.T) {
	repo := NewBookingRepository(NewUserRepository(), NewItemRepository())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	b1 := seed(t, repo, drill, base, base.Add(time.Hour))
	b2 := seed(t, repo, drill, base.Add(2*time.Hour), base.Add(3*time.Hour))

	assert.Equal(t, int64(1), b1.ID())
	assert.Equal(t, int64(2), b2.ID())

	got, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, b2.Start(), got.Start())

	_, err = repo.FindByID(context.Background(), 99)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestBookingRepository_Ordering(t *testing.T) {
	repo := NewBookingRepository(NewUserRepository(), NewItemRepository())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	seed(t, repo, drill, base.Add(24*time.Hour), base.Add(25*time.Hour)) // 1
	seed(t, repo, saw, base.Add(72*time.Hour), base.Add(73*time.Hour))   // 2
	seed(t, repo, drill, base.Add(48*time.Hour), base.Add(49*time.Hour)) // 3

	ctx := context.Background()

	byBooker, err := repo.FindByBooker(ctx, booker.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, bookingIDs(byBooker))

	byOwner, err := repo.FindByItemOwner(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, bookingIDs(byOwner))

	none, err := repo.FindByItemOwner(ctx, booker.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingRepository_Pagination(t *testing.T) {
	repo := NewBookingRepository(NewUserRepository(), NewItemRepository())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		seed(t, repo, drill, start, start.Add(time.Hour))
	}

	ctx := context.Background()
	tests := []struct {
		name string
		page *pagination.Page
		want []int64
	}{
		{"unpaged", nil, []int64{5, 4, 3, 2, 1}},
		{"first page", &pagination.Page{Offset: 0, Limit: 2}, []int64{5, 4}},
		{"last partial page", &pagination.Page{Offset: 4, Limit: 2}, []int64{1}},
		{"beyond range", &pagination.Page{Offset: 10, Limit: 2}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByItemOwner(ctx, owner.ID, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bookingIDs(got))
		})
	}
}

func TestBookingRepository_FirstByItem(t *testing.T) {
	repo := NewBookingRepository(NewUserRepository(), NewItemRepository())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	first, err := repo.FirstByItemOrderByStartAsc(ctx, drill.ID)
	require.NoError(t, err)
	assert.Nil(t, first)

	seed(t, repo, drill, base.Add(48*time.Hour), base.Add(50*time.Hour)) // 1
	seed(t, repo, drill, base.Add(24*time.Hour), base.Add(26*time.Hour)) // 2
	seed(t, repo, drill, base.Add(72*time.Hour), base.Add(80*time.Hour)) // 3
	seed(t, repo, saw, base.Add(1*time.Hour), base.Add(200*time.Hour))   // 4

	first, err = repo.FirstByItemOrderByStartAsc(ctx, drill.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(2), first.ID())

	last, err := repo.FirstByItemOrderByEndDesc(ctx, drill.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, int64(3), last.ID())
}

func TestBookingRepository_UpdateVersionCheck(t *testing.T) {
	repo := NewBookingRepository(NewUserRepository(), NewItemRepository())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	b := seed(t, repo, drill, base, base.Add(time.Hour))
	ctx := context.Background()

	first, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)

	require.NoError(t, first.Approve(owner.ID, true))
	first.IncrementVersion()
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.Approve(owner.ID, false))
	second.IncrementVersion()
	err = repo.Update(ctx, second)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	stored, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusApproved, stored.Status())
	assert.Equal(t, int64(2), stored.Version())
}

func TestBookingRepository_ConcurrentSaves(t *testing.T) {
	repo := NewBookingRepository(NewUserRepository(), NewItemRepository())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := bookingDomain.NewBooking(drill, booker, base, base.Add(time.Hour), base)
			_ = repo.Save(context.Background(), b)
		}()
	}
	wg.Wait()

	all, err := repo.FindByBooker(context.Background(), booker.ID, nil)
	require.NoError(t, err)
	seen := make(map[int64]bool)
	for _, b := range all {
		assert.False(t, seen[b.ID()], "duplicate id %d", b.ID())
		seen[b.ID()] = true
	}
	assert.Len(t, seen, 20)
}

func TestCatalogRepositories(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()
	items := NewItemRepository()

	_, err := users.FindByID(ctx, owner.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, users.Save(ctx, &owner))
	got, err := users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, *got)

	require.NoError(t, items.Save(ctx, &drill))
	updated := drill
	updated.Available = false
	require.NoError(t, items.Save(ctx, &updated))
	item, err := items.FindByID(ctx, drill.ID)
	require.NoError(t, err)
	assert.False(t, item.Available)

	require.NoError(t, items.Delete(ctx, drill.ID))
	_, err = items.FindByID(ctx, drill.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestBookingRepository_FollowsCatalogChanges(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()
	items := NewItemRepository()
	require.NoError(t, users.Save(ctx, &booker))
	require.NoError(t, items.Save(ctx, &drill))
	repo := NewBookingRepository(users, items)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	b := seed(t, repo, drill, base, base.Add(time.Hour))

	transferred := drill
	transferred.OwnerID = 3
	require.NoError(t, items.Save(ctx, &transferred))

	byNewOwner, err := repo.FindByItemOwner(ctx, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID()}, bookingIDs(byNewOwner))
	byOldOwner, err := repo.FindByItemOwner(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, byOldOwner)

	require.NoError(t, items.Delete(ctx, drill.ID))
	_, err = items.FindByID(ctx, drill.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	got, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Item().OwnerID)
	assert.True(t, got.IsVisibleTo(3))

	renamed := booker
	renamed.Name = "renamed"
	require.NoError(t, users.Save(ctx, &renamed))
	require.NoError(t, users.Delete(ctx, booker.ID))
	first, err := repo.FirstByItemOrderByStartAsc(ctx, drill.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", first.Booker().Name)
}
