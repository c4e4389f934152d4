package database

import (
	"time"

	"shareit/internal/models"
)

type userModel struct {
	ID    int64  `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name;size:255;not null"`
	Email string `gorm:"column:email;size:512;not null;uniqueIndex"`
}

func (userModel) TableName() string { return "users" }

type itemModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	OwnerID     int64  `gorm:"column:owner_id;not null;index"`
	RequestID   *int64 `gorm:"column:request_id;index"`
	Name        string `gorm:"column:name;size:255;not null"`
	Description string `gorm:"column:description;size:1000;not null"`
	Available   bool   `gorm:"column:is_available;not null"`
}

func (itemModel) TableName() string { return "items" }

type bookingModel struct {
	ID       int64     `gorm:"column:id;primaryKey"`
	ItemID   int64     `gorm:"column:item_id;not null;index:idx_bookings_item_start,priority:1"`
	BookerID int64     `gorm:"column:booker_id;not null;index"`
	Start    time.Time `gorm:"column:start_date;not null;index:idx_bookings_item_start,priority:2"`
	End      time.Time `gorm:"column:end_date;not null"`
	Status   string    `gorm:"column:status;size:16;not null"`
}

func (bookingModel) TableName() string { return "bookings" }

type requestModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	RequesterID int64     `gorm:"column:requester_id;not null;index"`
	Description string    `gorm:"column:description;size:1000;not null"`
	Created     time.Time `gorm:"column:created;not null"`
}

func (requestModel) TableName() string { return "requests" }

type commentModel struct {
	ID       int64     `gorm:"column:id;primaryKey"`
	ItemID   int64     `gorm:"column:item_id;not null;index"`
	AuthorID int64     `gorm:"column:author_id;not null;index"`
	Text     string    `gorm:"column:text;size:2000;not null"`
	Created  time.Time `gorm:"column:created;not null"`
}

func (commentModel) TableName() string { return "comments" }

func toDomainUser(m userModel) models.User {
	return models.User{ID: m.ID, Name: m.Name, Email: m.Email}
}

func toUserModel(u *models.User) userModel {
	return userModel{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toDomainItem(m itemModel) models.Item {
	return models.Item{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		RequestID:   m.RequestID,
		Name:        m.Name,
		Description: m.Description,
		Available:   m.Available,
	}
}

func toItemModel(i *models.Item) itemModel {
	return itemModel{
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
	}
}

// Times are stored in UTC so SQLite text comparison orders them correctly.
func toDomainBooking(m bookingModel) models.Booking {
	return models.Booking{
		ID:       m.ID,
		ItemID:   m.ItemID,
		BookerID: m.BookerID,
		Start:    m.Start.UTC(),
		End:      m.End.UTC(),
		Status:   models.BookingStatus(m.Status),
	}
}

func toBookingModel(b *models.Booking) bookingModel {
	return bookingModel{
		ID:       b.ID,
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Start:    b.Start.UTC(),
		End:      b.End.UTC(),
		Status:   string(b.Status),
	}
}

func toDomainRequest(m requestModel) models.ItemRequest {
	return models.ItemRequest{
		ID:          m.ID,
		RequesterID: m.RequesterID,
		Description: m.Description,
		Created:     m.Created.UTC(),
	}
}

func toDomainComment(m commentModel) models.Comment {
	return models.Comment{
		ID:       m.ID,
		ItemID:   m.ItemID,
		AuthorID: m.AuthorID,
		Text:     m.Text,
		Created:  m.Created.UTC(),
	}
}
