package catalog

import "context"

// UserRepository resolves and maintains the user projection.
type UserRepository interface {
	// FindByID returns a not-found error when the user is unknown.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Save inserts or replaces the user.
	Save(ctx context.Context, user *User) error

	// Delete removes the user; deleting an unknown user is not an error.
	Delete(ctx context.Context, id int64) error
}

// ItemRepository resolves and maintains the item projection.
type ItemRepository interface {
	// FindByID returns a not-found error when the item is unknown.
	FindByID(ctx context.Context, id int64) (*Item, error)

	// Save inserts or replaces the item.
	Save(ctx context.Context, item *Item) error

	// Delete removes the item; deleting an unknown item is not an error.
	Delete(ctx context.Context, id int64) error
}
