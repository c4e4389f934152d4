package database

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (d *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	m := requestModel{
		RequesterID: request.RequesterID,
		Description: request.Description,
		Created:     request.Created.UTC(),
	}
	if err := d.conn(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	request.ID = m.ID
	return nil
}

func (d *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var m requestModel
	if err := d.conn(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	r := toDomainRequest(m)
	return &r, nil
}

func (d *DB) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]models.ItemRequest, error) {
	var rows []requestModel
	err := d.conn(ctx).Where("requester_id = ?", requesterID).
		Order("created DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toDomainRequests(rows), nil
}

func (d *DB) ListRequestsExcept(ctx context.Context, requesterID int64, page domain.Page) ([]models.ItemRequest, error) {
	var rows []requestModel
	q := d.conn(ctx).Where("requester_id <> ?", requesterID).Order("created DESC").Order("id DESC")
	if err := paginate(q, page.Offset, page.Limit).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainRequests(rows), nil
}

func toDomainRequests(rows []requestModel) []models.ItemRequest {
	requests := make([]models.ItemRequest, 0, len(rows))
	for _, m := range rows {
		requests = append(requests, toDomainRequest(m))
	}
	return requests
}
