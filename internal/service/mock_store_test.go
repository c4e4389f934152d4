package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *mockStore) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *mockStore) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockStore) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) CreateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockStore) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}
func (m *mockStore) UpdateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockStore) ListItemsByOwner(ctx context.Context, ownerID int64, page domain.Page) ([]models.Item, error) {
	args := m.Called(ctx, ownerID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}
func (m *mockStore) SearchAvailableItems(ctx context.Context, text string, page domain.Page) ([]models.Item, error) {
	args := m.Called(ctx, text, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}
func (m *mockStore) ListItemsByRequests(ctx context.Context, ids []int64) ([]models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *mockStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) GetBookingForParticipant(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockStore) ListActiveItemBookings(ctx context.Context, itemID int64, endAfter time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, itemID, endAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) ListItemBookings(ctx context.Context, itemIDs []int64) ([]models.Booking, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error) {
	args := m.Called(ctx, itemID, bookerID, before)
	return args.Bool(0), args.Error(1)
}

// WithinTx runs fn directly; the mock has no transactions.
func (m *mockStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
