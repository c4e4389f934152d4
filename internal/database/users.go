package database

import (
	"context"

	"shareit/internal/models"

	"gorm.io/gorm"
)

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	m := toUserModel(user)
	if err := d.conn(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	user.ID = m.ID
	return nil
}

func (d *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var m userModel
	if err := d.conn(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	u := toDomainUser(m)
	return &u, nil
}

func (d *DB) GetUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []userModel
	if err := d.conn(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	users := make([]models.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, toDomainUser(m))
	}
	return users, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []userModel
	if err := d.conn(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	users := make([]models.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, toDomainUser(m))
	}
	return users, nil
}

func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	m := toUserModel(user)
	res := d.conn(ctx).Model(&userModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{"name": m.Name, "email": m.Email})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user and everything hanging off it: owned items with
// their bookings and comments, the user's own bookings, comments and requests.
// Items that answered the user's requests stay, detached from them.
// Deleting a missing user is not an error.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	return d.WithinTx(ctx, func(ctx context.Context) error {
		tx := d.conn(ctx)

		ownedItems := tx.Model(&itemModel{}).Select("id").Where("owner_id = ?", id)
		ownRequests := tx.Model(&requestModel{}).Select("id").Where("requester_id = ?", id)

		steps := []func() error{
			func() error {
				return tx.Where("author_id = ? OR item_id IN (?)", id, ownedItems).Delete(&commentModel{}).Error
			},
			func() error {
				return tx.Where("booker_id = ? OR item_id IN (?)", id, ownedItems).Delete(&bookingModel{}).Error
			},
			func() error {
				return tx.Model(&itemModel{}).Where("request_id IN (?)", ownRequests).
					Update("request_id", gorm.Expr("NULL")).Error
			},
			func() error { return tx.Where("requester_id = ?", id).Delete(&requestModel{}).Error },
			func() error { return tx.Where("owner_id = ?", id).Delete(&itemModel{}).Error },
			func() error { return tx.Delete(&userModel{}, id).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return translate(err)
			}
		}
		return nil
	})
}
