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

type ItemService struct {
	users    domain.UserRepository
	items    domain.ItemRepository
	bookings domain.BookingRepository
	requests domain.RequestRepository
	comments domain.CommentRepository
	tx       domain.Transactor
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewItemService(
	users domain.UserRepository,
	items domain.ItemRepository,
	bookings domain.BookingRepository,
	requests domain.RequestRepository,
	comments domain.CommentRepository,
	tx domain.Transactor,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		comments: comments,
		tx:       tx,
		now:      time.Now,
		logger:   logger,
	}
}

// GetByID returns the item with its comments. The owner also sees the last
// and next bookings.
func (s *ItemService) GetByID(ctx context.Context, itemID, userID int64) (_ *models.ItemDetailsDTO, err error) {
	ctx, span := tracer.Start(ctx, "item.get", trace.WithAttributes(attribute.Int64("item.id", itemID)))
	defer func() { finishSpan(span, err) }()

	item, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	details, err := s.enrich(ctx, []models.Item{*item}, userID)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *ItemService) FindByOwner(ctx context.Context, ownerID int64, from, size int) (_ []models.ItemDetailsDTO, err error) {
	ctx, span := tracer.Start(ctx, "item.list_owner", trace.WithAttributes(attribute.Int64("user.id", ownerID)))
	defer func() { finishSpan(span, err) }()

	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	page, err := pageOf(from, size)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("list items of user %d: %w", ownerID, err)
	}
	return s.enrich(ctx, items, ownerID)
}

// Search matches available items by name or description. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) (_ []models.ItemDTO, err error) {
	ctx, span := tracer.Start(ctx, "item.search")
	defer func() { finishSpan(span, err) }()

	page, err := pageOf(from, size)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.ItemDTO{}, nil
	}

	items, err := s.items.SearchAvailableItems(ctx, text, page)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return toItemDTOs(items), nil
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, dto models.ItemDTO) (_ *models.ItemDTO, err error) {
	ctx, span := tracer.Start(ctx, "item.create", trace.WithAttributes(attribute.Int64("user.id", ownerID)))
	defer func() { finishSpan(span, err) }()

	if isBlank(dto.Name) {
		return nil, domain.Validation("name must not be empty")
	}
	if isBlank(dto.Description) {
		return nil, domain.Validation("description must not be empty")
	}
	if dto.Available == nil {
		return nil, domain.Validation("available must be set")
	}

	item := models.Item{
		OwnerID:     ownerID,
		RequestID:   dto.RequestID,
		Name:        strings.TrimSpace(*dto.Name),
		Description: strings.TrimSpace(*dto.Description),
		Available:   *dto.Available,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := requireUser(ctx, s.users, ownerID); err != nil {
			return err
		}
		if dto.RequestID != nil {
			if _, err := requireRequest(ctx, s.requests, *dto.RequestID); err != nil {
				return err
			}
		}
		if err := s.items.CreateItem(ctx, &item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	out := toItemDTO(item)
	return &out, nil
}

// Update applies the non-nil fields of dto. Only the owner may update, and
// ownership moves when dto names another existing user.
func (s *ItemService) Update(ctx context.Context, itemID, userID int64, dto models.ItemDTO) (_ *models.ItemDTO, err error) {
	ctx, span := tracer.Start(ctx, "item.update", trace.WithAttributes(
		attribute.Int64("item.id", itemID),
		attribute.Int64("user.id", userID),
	))
	defer func() { finishSpan(span, err) }()

	if dto.Name != nil && isBlank(dto.Name) {
		return nil, domain.Validation("name must not be empty")
	}
	if dto.Description != nil && isBlank(dto.Description) {
		return nil, domain.Validation("description must not be empty")
	}

	var item *models.Item
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := requireUser(ctx, s.users, userID); err != nil {
			return err
		}
		current, err := requireItem(ctx, s.items, itemID)
		if err != nil {
			return err
		}
		if current.OwnerID != userID {
			return domain.Forbidden("user %d is not the owner of item %d", userID, itemID)
		}

		if dto.OwnerID != nil && *dto.OwnerID != current.OwnerID {
			if _, err := requireUser(ctx, s.users, *dto.OwnerID); err != nil {
				return err
			}
			current.OwnerID = *dto.OwnerID
		}
		if dto.Name != nil {
			current.Name = strings.TrimSpace(*dto.Name)
		}
		if dto.Description != nil {
			current.Description = strings.TrimSpace(*dto.Description)
		}
		if dto.Available != nil {
			current.Available = *dto.Available
		}

		if err := s.items.UpdateItem(ctx, current); err != nil {
			return fmt.Errorf("update item %d: %w", itemID, err)
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := toItemDTO(*item)
	return &out, nil
}

// AddComment requires the author to have a non-rejected booking of the item
// that has already ended.
func (s *ItemService) AddComment(ctx context.Context, itemID, userID int64, dto models.CommentDTO) (_ *models.CommentDTO, err error) {
	ctx, span := tracer.Start(ctx, "item.comment", trace.WithAttributes(
		attribute.Int64("item.id", itemID),
		attribute.Int64("user.id", userID),
	))
	defer func() { finishSpan(span, err) }()

	text := strings.TrimSpace(dto.Text)
	if text == "" {
		return nil, domain.Validation("comment text must not be empty")
	}

	var (
		author  *models.User
		comment models.Comment
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := requireItem(ctx, s.items, itemID); err != nil {
			return err
		}
		u, err := requireUser(ctx, s.users, userID)
		if err != nil {
			return err
		}
		author = u

		now := s.now()
		ok, err := s.bookings.HasFinishedBooking(ctx, itemID, userID, now)
		if err != nil {
			return fmt.Errorf("check bookings of user %d: %w", userID, err)
		}
		if !ok {
			return domain.BadRequest("user %d cannot comment item %d without a finished booking", userID, itemID)
		}

		comment = models.Comment{ItemID: itemID, AuthorID: userID, Text: text, Created: now.UTC()}
		if err := s.comments.CreateComment(ctx, &comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := toCommentDTO(comment, author.Name)
	return &out, nil
}

// enrich attaches comments to every item and last/next bookings to the items
// viewerID owns, with one query per relation.
func (s *ItemService) enrich(ctx context.Context, items []models.Item, viewerID int64) ([]models.ItemDetailsDTO, error) {
	if len(items) == 0 {
		return []models.ItemDetailsDTO{}, nil
	}

	itemIDs := uniqueIDs(items, func(i models.Item) int64 { return i.ID })
	var owned []int64
	for _, it := range items {
		if it.OwnerID == viewerID {
			owned = append(owned, it.ID)
		}
	}

	var bookingsByItem map[int64][]models.Booking
	if len(owned) > 0 {
		bookings, err := s.bookings.ListItemBookings(ctx, owned)
		if err != nil {
			return nil, fmt.Errorf("load item bookings: %w", err)
		}
		bookingsByItem = groupBy(bookings, func(b models.Booking) int64 { return b.ItemID })
	}

	comments, err := s.comments.ListCommentsByItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	authors, err := s.users.GetUsersByIDs(ctx, uniqueIDs(comments, func(c models.Comment) int64 { return c.AuthorID }))
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}
	authorsByID := indexBy(authors, func(u models.User) int64 { return u.ID })
	commentsByItem := groupBy(comments, func(c models.Comment) int64 { return c.ItemID })

	now := s.now()
	out := make([]models.ItemDetailsDTO, 0, len(items))
	for _, it := range items {
		details := models.ItemDetailsDTO{ItemDTO: toItemDTO(it), Comments: []models.CommentDTO{}}
		if it.OwnerID == viewerID {
			last, next := lastAndNext(bookingsByItem[it.ID], now)
			details.LastBooking = toShortBooking(last)
			details.NextBooking = toShortBooking(next)
		}
		for _, c := range commentsByItem[it.ID] {
			details.Comments = append(details.Comments, toCommentDTO(c, authorsByID[c.AuthorID].Name))
		}
		out = append(out, details)
	}
	return out, nil
}
