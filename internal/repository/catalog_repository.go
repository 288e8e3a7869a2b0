package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserModel is the GORM model for the users projection table.
type UserModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:512"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string { return "users" }

// ItemModel is the GORM model for the items projection table.
type ItemModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:1000"`
	Available   bool   `gorm:"not null"`
	OwnerID     int64  `gorm:"index;not null"`
	RequestID   *int64
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string { return "items" }

// Upserts also clear deleted_at so a re-published projection comes back.
var (
	userUpsert = clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at", "deleted_at"}),
	}
	itemUpsert = clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "available", "owner_id", "request_id", "updated_at", "deleted_at"}),
	}
)

// GormUserRepository implements catalog.UserRepository using GORM. Deletes
// are soft so existing bookings keep resolving their booker.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*catalog.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return toDomainUser(&model), nil
}

func (r *GormUserRepository) Save(ctx context.Context, user *catalog.User) error {
	model := UserModel{ID: user.ID, Name: user.Name, Email: user.Email}
	if err := r.db.WithContext(ctx).Clauses(userUpsert).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&UserModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// GormItemRepository implements catalog.ItemRepository using GORM. Deletes
// are soft so existing bookings keep resolving the item owner.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*catalog.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Item", id)
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return toDomainItem(&model), nil
}

func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	model := ItemModel{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     item.OwnerID,
		RequestID:   item.RequestID,
	}
	if err := r.db.WithContext(ctx).Clauses(itemUpsert).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

func (r *GormItemRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&ItemModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func toDomainUser(m *UserModel) *catalog.User {
	return &catalog.User{ID: m.ID, Name: m.Name, Email: m.Email}
}

func toDomainItem(m *ItemModel) *catalog.Item {
	return &catalog.Item{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Available:   m.Available,
		OwnerID:     m.OwnerID,
		RequestID:   m.RequestID,
	}
}
