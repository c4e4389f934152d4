package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type BookingService struct {
	users    domain.UserRepository
	items    domain.ItemRepository
	bookings domain.BookingRepository
	tx       domain.Transactor
	eventBus domain.EventPublisher
	locks    *keyedMutex
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(
	users domain.UserRepository,
	items domain.ItemRepository,
	bookings domain.BookingRepository,
	tx domain.Transactor,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		users:    users,
		items:    items,
		bookings: bookings,
		tx:       tx,
		eventBus: eventBus,
		locks:    newKeyedMutex(),
		now:      time.Now,
		logger:   logger,
	}
}

// Create admits a WAITING booking. Admission for one item is serialized
// in-process so the overlap check and the insert cannot interleave.
func (s *BookingService) Create(ctx context.Context, bookerID int64, dto models.NewBookingDTO) (_ *models.BookingDTO, err error) {
	ctx, span := tracer.Start(ctx, "booking.create", trace.WithAttributes(
		attribute.Int64("booker.id", bookerID),
		attribute.Int64("item.id", dto.ItemID),
	))
	defer func() { finishSpan(span, err) }()

	now := s.now()
	start, end := dto.Start.Time, dto.End.Time
	if start.IsZero() || end.IsZero() {
		return nil, domain.Validation("start and end are required")
	}
	if !start.Before(end) {
		return nil, domain.Validation("start must precede end")
	}
	if !start.After(now) {
		return nil, domain.Validation("booking dates must be in the future")
	}

	booker, err := requireUser(ctx, s.users, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := requireItem(ctx, s.items, dto.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == bookerID {
		return nil, domain.NotFound("item %d not found", item.ID)
	}
	if !item.Available {
		return nil, domain.BadRequest("item %d is not available for booking", item.ID)
	}

	unlock := s.locks.Lock(item.ID)
	defer unlock()

	booking := models.Booking{
		ItemID:   item.ID,
		BookerID: bookerID,
		Start:    start.UTC(),
		End:      end.UTC(),
		Status:   models.StatusWaiting,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.bookings.ListActiveItemBookings(ctx, item.ID, now)
		if err != nil {
			return fmt.Errorf("list bookings of item %d: %w", item.ID, err)
		}
		if conflict := firstConflict(booking.Start, booking.End, existing); conflict != nil {
			return domain.BadRequest("requested period overlaps booking %d of item %d", conflict.ID, item.ID)
		}
		if err := s.bookings.CreateBooking(ctx, &booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID, bookerID)

	dtoOut := toBookingDTO(booking, *booker, *item)
	return &dtoOut, nil
}

// Decide lets the item owner approve or reject a WAITING booking.
func (s *BookingService) Decide(ctx context.Context, bookingID, userID int64, approved bool) (_ *models.BookingDTO, err error) {
	ctx, span := tracer.Start(ctx, "booking.decide", trace.WithAttributes(
		attribute.Int64("booking.id", bookingID),
		attribute.Int64("user.id", userID),
		attribute.Bool("approved", approved),
	))
	defer func() { finishSpan(span, err) }()

	var booking *models.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetBookingForParticipant(ctx, bookingID, userID)
		if errors.Is(err, database.ErrNotFound) {
			return domain.NotFound("booking %d not found", bookingID)
		}
		if err != nil {
			return fmt.Errorf("get booking %d: %w", bookingID, err)
		}
		if b.BookerID == userID {
			return domain.NotFound("booking %d not found", bookingID)
		}
		if b.Status != models.StatusWaiting {
			return domain.Validation("cannot change status of booking %d: already %s", bookingID, b.Status)
		}

		status := models.StatusRejected
		if approved {
			status = models.StatusApproved
		}
		if err := s.bookings.UpdateBookingStatus(ctx, b.ID, status); err != nil {
			return fmt.Errorf("update booking %d: %w", b.ID, err)
		}
		b.Status = status
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, *booking, userID, userID)

	dtos, err := s.assemble(ctx, []models.Booking{*booking})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Get returns a booking to its booker or to the owner of the booked item.
func (s *BookingService) Get(ctx context.Context, bookingID, userID int64) (_ *models.BookingDTO, err error) {
	ctx, span := tracer.Start(ctx, "booking.get", trace.WithAttributes(attribute.Int64("booking.id", bookingID)))
	defer func() { finishSpan(span, err) }()

	b, err := s.bookings.GetBookingForParticipant(ctx, bookingID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("booking %d not found", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}

	dtos, err := s.assemble(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *BookingService) ListForBooker(ctx context.Context, bookerID int64, state models.BookingState, from, size int) ([]models.BookingDTO, error) {
	return s.list(ctx, "booking.list_booker", domain.BookingFilter{BookerID: bookerID, State: state}, bookerID, from, size)
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state models.BookingState, from, size int) ([]models.BookingDTO, error) {
	return s.list(ctx, "booking.list_owner", domain.BookingFilter{OwnerID: ownerID, State: state}, ownerID, from, size)
}

// ExportForOwner returns every owner booking in the state, unpaginated.
func (s *BookingService) ExportForOwner(ctx context.Context, ownerID int64, state models.BookingState) (_ []models.BookingDTO, err error) {
	ctx, span := tracer.Start(ctx, "booking.export_owner", trace.WithAttributes(attribute.Int64("user.id", ownerID)))
	defer func() { finishSpan(span, err) }()

	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListBookings(ctx, domain.BookingFilter{OwnerID: ownerID, State: state, Now: s.now()})
	if err != nil {
		return nil, fmt.Errorf("list owner bookings: %w", err)
	}
	return s.assemble(ctx, bookings)
}

func (s *BookingService) list(ctx context.Context, op string, filter domain.BookingFilter, userID int64, from, size int) (_ []models.BookingDTO, err error) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("state", string(filter.State)),
	))
	defer func() { finishSpan(span, err) }()

	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	page, err := pageOf(from, size)
	if err != nil {
		return nil, err
	}

	filter.Now = s.now()
	filter.Page = page
	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return s.assemble(ctx, bookings)
}

// assemble batch-loads bookers and items and maps bookings to DTOs.
func (s *BookingService) assemble(ctx context.Context, bookings []models.Booking) ([]models.BookingDTO, error) {
	if len(bookings) == 0 {
		return []models.BookingDTO{}, nil
	}

	bookers, err := s.users.GetUsersByIDs(ctx, uniqueIDs(bookings, func(b models.Booking) int64 { return b.BookerID }))
	if err != nil {
		return nil, fmt.Errorf("load bookers: %w", err)
	}
	items, err := s.items.GetItemsByIDs(ctx, uniqueIDs(bookings, func(b models.Booking) int64 { return b.ItemID }))
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	usersByID := indexBy(bookers, func(u models.User) int64 { return u.ID })
	itemsByID := indexBy(items, func(i models.Item) int64 { return i.ID })

	out := make([]models.BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b, usersByID[b.BookerID], itemsByID[b.ItemID]))
	}
	return out, nil
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, ownerID, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		OwnerID:   ownerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
