package memory

import (
	"context"
	"sync"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/platform/apperror"
)

// UserRepository is an in-memory catalog.UserRepository. Deleted users stay
// resolvable for bookings that already reference them.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[int64]catalog.User
	deleted map[int64]bool
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]catalog.User), deleted: make(map[int64]bool)}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*catalog.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || r.deleted[id] {
		return nil, apperror.NewNotFoundError("User", id)
	}
	return &u, nil
}

func (r *UserRepository) Save(_ context.Context, user *catalog.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	delete(r.deleted, user.ID)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; ok {
		r.deleted[id] = true
	}
	return nil
}

// record returns the last known state of a user, deleted or not.
func (r *UserRepository) record(id int64) (catalog.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

// ItemRepository is an in-memory catalog.ItemRepository. Deleted items stay
// resolvable for bookings that already reference them.
type ItemRepository struct {
	mu      sync.RWMutex
	items   map[int64]catalog.Item
	deleted map[int64]bool
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[int64]catalog.Item), deleted: make(map[int64]bool)}
}

func (r *ItemRepository) FindByID(_ context.Context, id int64) (*catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || r.deleted[id] {
		return nil, apperror.NewNotFoundError("Item", id)
	}
	return &it, nil
}

func (r *ItemRepository) Save(_ context.Context, item *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	delete(r.deleted, item.ID)
	return nil
}

func (r *ItemRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; ok {
		r.deleted[id] = true
	}
	return nil
}

// record returns the last known state of an item, deleted or not.
func (r *ItemRepository) record(id int64) (catalog.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	return it, ok
}
