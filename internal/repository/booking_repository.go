package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"github.com/shareit/service-booking/internal/platform/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ItemID    int64     `gorm:"index;not null"`
	BookerID  int64     `gorm:"index;not null"`
	StartTime time.Time `gorm:"not null;index"`
	EndTime   time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Item   ItemModel `gorm:"foreignKey:ItemID"`
	Booker UserModel `gorm:"foreignKey:BookerID"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// withRelations loads item and booker including soft-deleted rows, so the
// owner of a withdrawn item still sees and decides its bookings.
func (r *GormBookingRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Item", unscoped).
		Preload("Booker", unscoped)
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

// FindByID retrieves a booking by its identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.withRelations(ctx).Where("bookings.id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByBooker retrieves a booker's bookings, latest start first.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID int64, page *pagination.Page) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	q := r.withRelations(ctx).
		Where("booker_id = ?", bookerID).
		Order("start_time DESC")
	if err := paginate(q, page).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booker bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByItemOwner retrieves bookings on the owner's items, newest booking first.
func (r *GormBookingRepository) FindByItemOwner(ctx context.Context, ownerID int64, page *pagination.Page) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	q := r.withRelations(ctx).
		Select("bookings.*").
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID).
		Order("bookings.id DESC")
	if err := paginate(q, page).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FirstByItemOrderByStartAsc returns the earliest-starting booking of an item.
func (r *GormBookingRepository) FirstByItemOrderByStartAsc(ctx context.Context, itemID int64) (*bookingDomain.Booking, error) {
	return r.firstByItem(ctx, itemID, "start_time ASC")
}

// FirstByItemOrderByEndDesc returns the latest-ending booking of an item.
func (r *GormBookingRepository) FirstByItemOrderByEndDesc(ctx context.Context, itemID int64) (*bookingDomain.Booking, error) {
	return r.firstByItem(ctx, itemID, "end_time DESC")
}

func (r *GormBookingRepository) firstByItem(ctx context.Context, itemID int64, order string) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.withRelations(ctx).
		Where("item_id = ?", itemID).
		Order(order).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item booking: %w", err)
	}
	return toDomainBooking(&model)
}

// Save persists a new booking and assigns the generated id to it.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	bk.AssignID(model.ID)
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	// IncrementVersion has already been called, so the stored row carries version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"start_time": bk.Start().UTC(),
			"end_time":   bk.End().UTC(),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func paginate(q *gorm.DB, page *pagination.Page) *gorm.DB {
	if page == nil {
		return q
	}
	return q.Offset(page.Offset).Limit(page.Limit)
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.Item().ID,
		BookerID:  bk.Booker().ID,
		StartTime: bk.Start().UTC(),
		EndTime:   bk.End().UTC(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	item := toDomainItem(&m.Item)
	item.ID = m.ItemID
	booker := toDomainUser(&m.Booker)
	booker.ID = m.BookerID

	return bookingDomain.ReconstructBooking(
		m.ID,
		*item,
		*booker,
		m.StartTime.UTC(),
		m.EndTime.UTC(),
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
