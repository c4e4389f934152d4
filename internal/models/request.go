package models

import "time"

type ItemRequest struct {
	ID          int64
	RequesterID int64
	Description string
	Created     time.Time
}

type ItemRequestDTO struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []ItemDTO `json:"items"`
}
