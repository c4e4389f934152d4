package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type RequestService struct {
	users    domain.UserRepository
	items    domain.ItemRepository
	requests domain.RequestRepository
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewRequestService(
	users domain.UserRepository,
	items domain.ItemRepository,
	requests domain.RequestRepository,
	logger *zerolog.Logger,
) *RequestService {
	return &RequestService{
		users:    users,
		items:    items,
		requests: requests,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, dto models.ItemRequestDTO) (_ *models.ItemRequestDTO, err error) {
	ctx, span := tracer.Start(ctx, "request.create", trace.WithAttributes(attribute.Int64("user.id", requesterID)))
	defer func() { finishSpan(span, err) }()

	description := strings.TrimSpace(dto.Description)
	if description == "" {
		return nil, domain.Validation("description must not be empty")
	}
	if _, err := requireUser(ctx, s.users, requesterID); err != nil {
		return nil, err
	}

	request := models.ItemRequest{RequesterID: requesterID, Description: description, Created: s.now().UTC()}
	if err := s.requests.CreateRequest(ctx, &request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", requesterID).Msg("item request created")
	out := toRequestDTO(request, nil)
	return &out, nil
}

// ListOwn returns the requester's own requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) (_ []models.ItemRequestDTO, err error) {
	ctx, span := tracer.Start(ctx, "request.list_own", trace.WithAttributes(attribute.Int64("user.id", requesterID)))
	defer func() { finishSpan(span, err) }()

	if _, err := requireUser(ctx, s.users, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests of user %d: %w", requesterID, err)
	}
	return s.withItems(ctx, requests)
}

// ListOthers pages through everybody else's requests, newest first.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, from, size int) (_ []models.ItemRequestDTO, err error) {
	ctx, span := tracer.Start(ctx, "request.list_others", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { finishSpan(span, err) }()

	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	page, err := pageOf(from, size)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.ListRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, requestID, userID int64) (_ *models.ItemRequestDTO, err error) {
	ctx, span := tracer.Start(ctx, "request.get", trace.WithAttributes(attribute.Int64("request.id", requestID)))
	defer func() { finishSpan(span, err) }()

	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	request, err := requireRequest(ctx, s.requests, requestID)
	if err != nil {
		return nil, err
	}
	out, err := s.withItems(ctx, []models.ItemRequest{*request})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// withItems attaches the items offered in answer to each request.
func (s *RequestService) withItems(ctx context.Context, requests []models.ItemRequest) ([]models.ItemRequestDTO, error) {
	if len(requests) == 0 {
		return []models.ItemRequestDTO{}, nil
	}

	items, err := s.items.ListItemsByRequests(ctx, uniqueIDs(requests, func(r models.ItemRequest) int64 { return r.ID }))
	if err != nil {
		return nil, fmt.Errorf("load request items: %w", err)
	}
	byRequest := groupBy(items, func(i models.Item) int64 {
		if i.RequestID == nil {
			return 0
		}
		return *i.RequestID
	})

	out := make([]models.ItemRequestDTO, 0, len(requests))
	for _, r := range requests {
		out = append(out, toRequestDTO(r, byRequest[r.ID]))
	}
	return out, nil
}
