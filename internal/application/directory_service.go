package application

import (
	"context"
	"fmt"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"go.uber.org/zap"
)

// DirectoryService maintains the local user and item projections from
// catalog events.
type DirectoryService struct {
	users  catalog.UserRepository
	items  catalog.ItemRepository
	logger *zap.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(users catalog.UserRepository, items catalog.ItemRepository, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{users: users, items: items, logger: logger}
}

// ApplyUser stores the latest version of a user.
func (s *DirectoryService) ApplyUser(ctx context.Context, evt catalog.UserUpsertedEvent) error {
	if evt.UserID <= 0 {
		return fmt.Errorf("user event has invalid id %d", evt.UserID)
	}
	user := catalog.User{ID: evt.UserID, Name: evt.Name, Email: evt.Email}
	if err := s.users.Save(ctx, &user); err != nil {
		return err
	}
	s.logger.Debug("user projected", zap.Int64("user_id", user.ID))
	return nil
}

// DeleteUser removes a user from the projection.
func (s *DirectoryService) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// ApplyItem stores the latest version of an item. The owner need not be
// known locally yet.
func (s *DirectoryService) ApplyItem(ctx context.Context, evt catalog.ItemUpsertedEvent) error {
	if evt.ItemID <= 0 {
		return fmt.Errorf("item event has invalid id %d", evt.ItemID)
	}
	item := catalog.Item{
		ID:          evt.ItemID,
		Name:        evt.Name,
		Description: evt.Description,
		Available:   evt.Available,
		OwnerID:     evt.OwnerID,
		RequestID:   evt.RequestID,
	}
	if err := s.items.Save(ctx, &item); err != nil {
		return err
	}
	s.logger.Debug("item projected", zap.Int64("item_id", item.ID), zap.Bool("available", item.Available))
	return nil
}

// DeleteItem removes an item from the projection.
func (s *DirectoryService) DeleteItem(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}
