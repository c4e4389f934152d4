package models

import "time"

type Comment struct {
	ID       int64
	ItemID   int64
	AuthorID int64
	Text     string
	Created  time.Time
}

type CommentDTO struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}
