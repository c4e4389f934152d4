package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("shareit/service")

// pageOf converts from/size into an offset window. The window always starts on
// a page boundary: from=7,size=5 selects the second page.
func pageOf(from, size int) (domain.Page, error) {
	if from < 0 || size < 1 {
		return domain.Page{}, domain.BadRequest("invalid pagination: from=%d, size=%d", from, size)
	}
	page := 0
	if from > 0 {
		page = from / size
	}
	return domain.Page{Offset: page * size, Limit: size}, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func requireUser(ctx context.Context, users domain.UserRepository, id int64) (*models.User, error) {
	u, err := users.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func requireItem(ctx context.Context, items domain.ItemRepository, id int64) (*models.Item, error) {
	item, err := items.GetItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

func requireRequest(ctx context.Context, requests domain.RequestRepository, id int64) (*models.ItemRequest, error) {
	r, err := requests.GetRequest(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("request %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, err)
	}
	return r, nil
}

// finishSpan records unexpected failures on the span. Business errors are
// expected outcomes and leave the span status unset.
func finishSpan(span trace.Span, err error) {
	if err != nil && domain.KindOf(err) == domain.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
