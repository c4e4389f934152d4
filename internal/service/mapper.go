package service

import "shareit/internal/models"

func toUserDTO(u models.User) models.UserDTO {
	return models.UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toItemDTO(i models.Item) models.ItemDTO {
	name, description, available, owner := i.Name, i.Description, i.Available, i.OwnerID
	return models.ItemDTO{
		ID:          i.ID,
		OwnerID:     &owner,
		RequestID:   i.RequestID,
		Name:        &name,
		Description: &description,
		Available:   &available,
	}
}

func toItemDTOs(items []models.Item) []models.ItemDTO {
	out := make([]models.ItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toItemDTO(it))
	}
	return out
}

func toBookingDTO(b models.Booking, booker models.User, item models.Item) models.BookingDTO {
	return models.BookingDTO{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Booker: toUserDTO(booker),
		Item:   toItemDTO(item),
	}
}

func toShortBooking(b *models.Booking) *models.ShortBookingDTO {
	if b == nil {
		return nil
	}
	return &models.ShortBookingDTO{
		ID:       b.ID,
		BookerID: b.BookerID,
		Start:    b.Start,
		End:      b.End,
		Status:   b.Status,
	}
}

func toCommentDTO(c models.Comment, authorName string) models.CommentDTO {
	return models.CommentDTO{ID: c.ID, Text: c.Text, AuthorName: authorName, Created: c.Created}
}

func toRequestDTO(r models.ItemRequest, items []models.Item) models.ItemRequestDTO {
	return models.ItemRequestDTO{
		ID:          r.ID,
		Description: r.Description,
		Created:     r.Created,
		Items:       toItemDTOs(items),
	}
}

// indexBy and groupBy do the in-memory half of batch loading.
func indexBy[T any](xs []T, key func(T) int64) map[int64]T {
	out := make(map[int64]T, len(xs))
	for _, x := range xs {
		out[key(x)] = x
	}
	return out
}

func groupBy[T any](xs []T, key func(T) int64) map[int64][]T {
	out := make(map[int64][]T)
	for _, x := range xs {
		k := key(x)
		out[k] = append(out[k], x)
	}
	return out
}

// uniqueIDs collects distinct ids in first-seen order.
func uniqueIDs[T any](xs []T, key func(T) int64) []int64 {
	seen := make(map[int64]struct{}, len(xs))
	ids := make([]int64, 0, len(xs))
	for _, x := range xs {
		id := key(x)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
