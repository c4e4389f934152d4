package database

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (d *DB) CreateItem(ctx context.Context, item *models.Item) error {
	m := toItemModel(item)
	if err := d.conn(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	item.ID = m.ID
	return nil
}

func (d *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var m itemModel
	if err := d.conn(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	item := toDomainItem(m)
	return &item, nil
}

func (d *DB) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []itemModel
	if err := d.conn(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainItems(rows), nil
}

func (d *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	m := toItemModel(item)
	res := d.conn(ctx).Model(&itemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"owner_id":     m.OwnerID,
			"request_id":   m.RequestID,
			"name":         m.Name,
			"description":  m.Description,
			"is_available": m.Available,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page domain.Page) ([]models.Item, error) {
	var rows []itemModel
	q := d.conn(ctx).Where("owner_id = ?", ownerID).Order("id")
	if err := paginate(q, page.Offset, page.Limit).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainItems(rows), nil
}

// SearchAvailableItems matches text as a case-insensitive substring of name or description.
func (d *DB) SearchAvailableItems(ctx context.Context, text string, page domain.Page) ([]models.Item, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"

	var rows []itemModel
	q := d.conn(ctx).
		Where("is_available = ?", true).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("id")
	if err := paginate(q, page.Offset, page.Limit).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainItems(rows), nil
}

func (d *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var rows []itemModel
	if err := d.conn(ctx).Where("request_id IN ?", requestIDs).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainItems(rows), nil
}

func toDomainItems(rows []itemModel) []models.Item {
	items := make([]models.Item, 0, len(rows))
	for _, m := range rows {
		items = append(items, toDomainItem(m))
	}
	return items
}
