package models

type Item struct {
	ID          int64
	OwnerID     int64
	RequestID   *int64
	Name        string
	Description string
	Available   bool
}

// ItemDTO is both the payload and the plain response shape for items.
// Pointer fields distinguish "absent" from "empty" on partial updates.
type ItemDTO struct {
	ID          int64   `json:"id"`
	OwnerID     *int64  `json:"ownerId,omitempty"`
	RequestID   *int64  `json:"requestId,omitempty"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDetailsDTO is an item enriched with booking info and comments.
type ItemDetailsDTO struct {
	ItemDTO
	LastBooking *ShortBookingDTO `json:"lastBooking"`
	NextBooking *ShortBookingDTO `json:"nextBooking"`
	Comments    []CommentDTO     `json:"comments"`
}
