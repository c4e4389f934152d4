package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestItemServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	store := new(mockStore)
	s := NewItemService(store, store, store, nil, nil, store, &logger)

	cases := map[string]models.ItemDTO{
		"missing name":        {Description: models.StringPtr("d"), Available: models.BoolPtr(true)},
		"blank name":          {Name: models.StringPtr("  "), Description: models.StringPtr("d"), Available: models.BoolPtr(true)},
		"missing description": {Name: models.StringPtr("n"), Available: models.BoolPtr(true)},
		"missing available":   {Name: models.StringPtr("n"), Description: models.StringPtr("d")},
	}
	for name, dto := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, 1, dto)
			assertKind(t, domain.KindValidation, err)
		})
	}
	store.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestItemServiceCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	other := f.user(t, "other")

	_, err := f.items.Create(ctx, 999, models.ItemDTO{
		Name: models.StringPtr("x"), Description: models.StringPtr("y"), Available: models.BoolPtr(true),
	})
	assertKind(t, domain.KindNotFound, err)

	_, err = f.items.Create(ctx, owner.ID, models.ItemDTO{
		Name: models.StringPtr("x"), Description: models.StringPtr("y"), Available: models.BoolPtr(true),
		RequestID: models.Int64Ptr(42),
	})
	assertKind(t, domain.KindNotFound, err)

	item := f.item(t, owner.ID, "bike")
	require.NotNil(t, item.OwnerID)
	assert.Equal(t, owner.ID, *item.OwnerID)

	updated, err := f.items.Update(ctx, item.ID, owner.ID, models.ItemDTO{Available: models.BoolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "bike", *updated.Name)
	assert.False(t, *updated.Available)

	_, err = f.items.Update(ctx, item.ID, other.ID, models.ItemDTO{Name: models.StringPtr("stolen")})
	assertKind(t, domain.KindForbidden, err)

	_, err = f.items.Update(ctx, item.ID, owner.ID, models.ItemDTO{Name: models.StringPtr(" ")})
	assertKind(t, domain.KindValidation, err)

	_, err = f.items.Update(ctx, 999, owner.ID, models.ItemDTO{Name: models.StringPtr("ghost")})
	assertKind(t, domain.KindNotFound, err)

	_, err = f.items.Update(ctx, item.ID, owner.ID, models.ItemDTO{OwnerID: models.Int64Ptr(999)})
	assertKind(t, domain.KindNotFound, err)

	moved, err := f.items.Update(ctx, item.ID, owner.ID, models.ItemDTO{OwnerID: models.Int64Ptr(other.ID)})
	require.NoError(t, err)
	assert.Equal(t, other.ID, *moved.OwnerID)
}

func TestItemServiceSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	drill := f.item(t, owner.ID, "Power Drill")
	hidden := f.item(t, owner.ID, "Hand drill")
	_, err := f.items.Update(ctx, hidden.ID, owner.ID, models.ItemDTO{Available: models.BoolPtr(false)})
	require.NoError(t, err)

	found, err := f.items.Search(ctx, "DRILL", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, drill.ID, found[0].ID)

	found, err = f.items.Search(ctx, "   ", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = f.items.Search(ctx, "", 0, 0)
	assertKind(t, domain.KindBadRequest, err)
}

func TestItemServiceBlankSearchSkipsStorage(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	store := new(mockStore)
	s := NewItemService(store, store, store, nil, nil, store, &logger)

	for _, text := range []string{"", "   ", "\t\n"} {
		found, err := s.Search(ctx, text, 0, 10)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	}
	store.AssertNotCalled(t, "SearchAvailableItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemServiceDetailsAndComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	booker := f.user(t, "booker")
	item := f.item(t, owner.ID, "projector")

	_, err := f.items.AddComment(ctx, item.ID, booker.ID, models.CommentDTO{Text: "great"})
	assertKind(t, domain.KindBadRequest, err)

	_, err = f.items.AddComment(ctx, item.ID, booker.ID, models.CommentDTO{Text: "  "})
	assertKind(t, domain.KindValidation, err)

	finished := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: testNow.Add(-72 * time.Hour), End: testNow.Add(-48 * time.Hour), Status: models.StatusApproved}
	require.NoError(t, f.db.CreateBooking(ctx, finished))
	dto := period(24, 30)
	dto.ItemID = item.ID
	upcoming, err := f.bookings.Create(ctx, booker.ID, dto)
	require.NoError(t, err)

	comment, err := f.items.AddComment(ctx, item.ID, booker.ID, models.CommentDTO{Text: " great "})
	require.NoError(t, err)
	assert.Equal(t, "great", comment.Text)
	assert.Equal(t, "booker", comment.AuthorName)
	assert.True(t, comment.Created.Equal(testNow))

	asOwner, err := f.items.GetByID(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, asOwner.LastBooking)
	require.NotNil(t, asOwner.NextBooking)
	assert.Equal(t, finished.ID, asOwner.LastBooking.ID)
	assert.Equal(t, upcoming.ID, asOwner.NextBooking.ID)
	assert.Equal(t, booker.ID, asOwner.NextBooking.BookerID)
	require.Len(t, asOwner.Comments, 1)

	asBooker, err := f.items.GetByID(ctx, item.ID, booker.ID)
	require.NoError(t, err)
	assert.Nil(t, asBooker.LastBooking)
	assert.Nil(t, asBooker.NextBooking)
	assert.Len(t, asBooker.Comments, 1)

	list, err := f.items.FindByOwner(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].NextBooking)

	_, err = f.items.FindByOwner(ctx, 999, 0, 10)
	assertKind(t, domain.KindNotFound, err)

	_, err = f.items.GetByID(ctx, 999, owner.ID)
	assertKind(t, domain.KindNotFound, err)
}
