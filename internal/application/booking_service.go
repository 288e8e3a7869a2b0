package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/metrics"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/shareit/service-booking/internal/platform/pagination"
	"go.uber.org/zap"
)

const eventSource = "service-booking"

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	users     catalog.UserRepository
	items     catalog.ItemRepository
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService. publisher and m may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	users catalog.UserRepository,
	items catalog.ItemRepository,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &BookingService{
		repo:      repo,
		users:     users,
		items:     items,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBooking requests an item for the window in req on behalf of bookerID.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, req CreateBookingRequest) (*BookingDTO, error) {
	if req.Start == nil || req.End == nil {
		return nil, apperror.NewValidationError("start and end are required")
	}

	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(*item, *booker, req.Start.Time, req.End.Time, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("item_id", item.ID),
		zap.Int64("booker_id", bookerID),
	)
	s.metrics.ObserveTransition(bk.Status().String())
	s.publishLifecycle(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking visible to requesterID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(requesterID) {
		return nil, apperror.NewNotFound("Wrong user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// Approve settles a waiting booking. Only the item owner may decide.
func (s *BookingService) Approve(ctx context.Context, bookingID, requesterID int64, approved bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Approve(requesterID, approved); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking decided",
		zap.Int64("booking_id", bk.ID()),
		zap.String("status", bk.Status().String()),
	)
	s.metrics.ObserveTransition(bk.Status().String())
	s.publishLifecycle(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// ListByBooker returns the bookings made by userID that match state.
func (s *BookingService) ListByBooker(ctx context.Context, userID int64, state string, page *pagination.Page) ([]BookingDTO, error) {
	return s.list(ctx, userID, state, page, s.repo.FindByBooker)
}

// ListByOwner returns the bookings on items owned by ownerID that match state.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state string, page *pagination.Page) ([]BookingDTO, error) {
	return s.list(ctx, ownerID, state, page, s.repo.FindByItemOwner)
}

type bookingFinder func(ctx context.Context, userID int64, page *pagination.Page) ([]*bookingDomain.Booking, error)

func (s *BookingService) list(ctx context.Context, userID int64, rawState string, page *pagination.Page, find bookingFinder) ([]BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	state, err := bookingDomain.ParseState(rawState)
	if err != nil {
		return nil, err
	}

	bookings, err := find(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	matched, err := bookingDomain.Classify(state, bookings, s.now())
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(matched), nil
}

// ItemBookingSummary returns an item's last and next bookings. Only the
// owner sees them; anyone else gets an empty summary.
func (s *BookingService) ItemBookingSummary(ctx context.Context, itemID, requesterID int64) (*ItemBookingSummaryDTO, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	summary := &ItemBookingSummaryDTO{ItemID: item.ID}
	if !item.IsOwnedBy(requesterID) {
		return summary, nil
	}

	last, err := s.repo.FirstByItemOrderByStartAsc(ctx, itemID)
	if err != nil {
		return nil, err
	}
	next, err := s.repo.FirstByItemOrderByEndDesc(ctx, itemID)
	if err != nil {
		return nil, err
	}
	summary.LastBooking = toShortBookingDTO(last)
	summary.NextBooking = toShortBookingDTO(next)
	return summary, nil
}

func (s *BookingService) publishLifecycle(ctx context.Context, bk *bookingDomain.Booking) {
	eventType := bookingDomain.EventTypeFor(bk.Status())
	s.publishEvent(ctx, bookingDomain.TopicEvents, eventType, strconv.FormatInt(bk.ID(), 10), bookingDomain.NewLifecycleEvent(bk))
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, key, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
