package database

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"gorm.io/gorm"
)

func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	m := toBookingModel(booking)
	if err := d.conn(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	booking.ID = m.ID
	return nil
}

func (d *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var m bookingModel
	if err := d.conn(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	b := toDomainBooking(m)
	return &b, nil
}

func (d *DB) GetBookingForParticipant(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	var m bookingModel
	err := d.conn(ctx).Model(&bookingModel{}).
		Select("bookings.*").
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("bookings.id = ? AND (bookings.booker_id = ? OR items.owner_id = ?)", bookingID, userID, userID).
		Take(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	b := toDomainBooking(m)
	return &b, nil
}

func (d *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	res := d.conn(ctx).Model(&bookingModel{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) ListActiveItemBookings(ctx context.Context, itemID int64, endAfter time.Time) ([]models.Booking, error) {
	var rows []bookingModel
	err := d.conn(ctx).
		Where("item_id = ? AND end_date > ? AND status <> ?", itemID, endAfter.UTC(), string(models.StatusRejected)).
		Order("start_date").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toDomainBookings(rows), nil
}

// ListBookings returns bookings of filter.BookerID, or of items owned by
// filter.OwnerID when it is set, newest start first.
func (d *DB) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]models.Booking, error) {
	q := d.conn(ctx).Model(&bookingModel{}).Select("bookings.*")
	if filter.OwnerID != 0 {
		q = q.Joins("JOIN items ON items.id = bookings.item_id").Where("items.owner_id = ?", filter.OwnerID)
	} else {
		q = q.Where("bookings.booker_id = ?", filter.BookerID)
	}
	q = applyState(q, filter.State, filter.Now.UTC()).Order("bookings.start_date DESC").Order("bookings.id DESC")

	var rows []bookingModel
	if err := paginate(q, filter.Page.Offset, filter.Page.Limit).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainBookings(rows), nil
}

func applyState(q *gorm.DB, state models.BookingState, now time.Time) *gorm.DB {
	switch state {
	case models.StateCurrent:
		return q.Where("bookings.start_date <= ? AND bookings.end_date >= ?", now, now)
	case models.StatePast:
		return q.Where("bookings.end_date < ?", now)
	case models.StateFuture:
		return q.Where("bookings.start_date > ?", now)
	case models.StateWaiting:
		return q.Where("bookings.status = ?", string(models.StatusWaiting))
	case models.StateRejected:
		return q.Where("bookings.status = ?", string(models.StatusRejected))
	default:
		return q
	}
}

func (d *DB) ListItemBookings(ctx context.Context, itemIDs []int64) ([]models.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []bookingModel
	err := d.conn(ctx).
		Where("item_id IN ? AND status <> ?", itemIDs, string(models.StatusRejected)).
		Order("start_date").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toDomainBookings(rows), nil
}

// HasFinishedBooking reports whether bookerID holds a non-rejected booking of
// itemID that ended before the given moment.
func (d *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error) {
	var count int64
	err := d.conn(ctx).Model(&bookingModel{}).
		Where("item_id = ? AND booker_id = ? AND status <> ? AND end_date < ?",
			itemID, bookerID, string(models.StatusRejected), before.UTC()).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func toDomainBookings(rows []bookingModel) []models.Booking {
	bookings := make([]models.Booking, 0, len(rows))
	for _, m := range rows {
		bookings = append(bookings, toDomainBooking(m))
	}
	return bookings
}
