package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64, page Page) ([]models.Item, error)
	SearchAvailableItems(ctx context.Context, text string, page Page) ([]models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// GetBookingForParticipant finds a booking visible to userID as its booker or as the item owner.
	GetBookingForParticipant(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	// ListActiveItemBookings returns non-rejected bookings of an item that end after the given moment.
	ListActiveItemBookings(ctx context.Context, itemID int64, endAfter time.Time) ([]models.Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// ListItemBookings returns non-rejected bookings of the given items.
	ListItemBookings(ctx context.Context, itemIDs []int64) ([]models.Booking, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]models.ItemRequest, error)
	ListRequestsExcept(ctx context.Context, requesterID int64, page Page) ([]models.ItemRequest, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error)
}

// Transactor runs fn inside one storage transaction carried by the context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Page is an offset window. Limit 0 means unbounded.
type Page struct {
	Offset int
	Limit  int
}

// BookingFilter selects bookings either by booker or by item owner.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    models.BookingState
	Now      time.Time
	Page     Page
}
