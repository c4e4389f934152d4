package database

import (
	"context"

	"shareit/internal/models"
)

func (d *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	m := commentModel{
		ItemID:   comment.ItemID,
		AuthorID: comment.AuthorID,
		Text:     comment.Text,
		Created:  comment.Created.UTC(),
	}
	if err := d.conn(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	comment.ID = m.ID
	return nil
}

// ListCommentsByItems returns comments of the given items, oldest first.
func (d *DB) ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []commentModel
	err := d.conn(ctx).Where("item_id IN ?", itemIDs).
		Order("created").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	comments := make([]models.Comment, 0, len(rows))
	for _, m := range rows {
		comments = append(comments, toDomainComment(m))
	}
	return comments, nil
}
