package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingIDs(bookings []models.Booking) []int64 {
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestBookingLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, db, "owner")
	booker := mustUser(t, db, "booker")
	stranger := mustUser(t, db, "stranger")
	item := mustItem(t, db, owner.ID, "kayak", true)

	b := mustBooking(t, db, item.ID, booker.ID, baseTime, baseTime.Add(time.Hour), models.StatusWaiting)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *b, *got)
	assert.Equal(t, time.UTC, got.Start.Location())

	for _, userID := range []int64{owner.ID, booker.ID} {
		found, err := db.GetBookingForParticipant(ctx, b.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, found.ID)
	}

	_, err = db.GetBookingForParticipant(ctx, b.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetBookingForParticipant(ctx, 999, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusApproved))
	got, err = db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, 999, models.StatusApproved), ErrNotFound)
}

func TestListBookingsByState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := baseTime

	owner := mustUser(t, db, "owner")
	booker := mustUser(t, db, "booker")
	item := mustItem(t, db, owner.ID, "tent", true)

	past := mustBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	current := mustBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	future := mustBooking(t, db, item.ID, booker.ID, now.Add(48*time.Hour), now.Add(72*time.Hour), models.StatusWaiting)
	rejected := mustBooking(t, db, item.ID, booker.ID, now.Add(96*time.Hour), now.Add(120*time.Hour), models.StatusRejected)

	tests := []struct {
		state models.BookingState
		want  []int64
	}{
		{models.StateAll, []int64{rejected.ID, future.ID, current.ID, past.ID}},
		{models.StateCurrent, []int64{current.ID}},
		{models.StatePast, []int64{past.ID}},
		{models.StateFuture, []int64{rejected.ID, future.ID}},
		{models.StateWaiting, []int64{future.ID}},
		{models.StateRejected, []int64{rejected.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			asBooker, err := db.ListBookings(ctx, domain.BookingFilter{BookerID: booker.ID, State: tt.state, Now: now})
			require.NoError(t, err)
			assert.Equal(t, tt.want, bookingIDs(asBooker))

			asOwner, err := db.ListBookings(ctx, domain.BookingFilter{OwnerID: owner.ID, State: tt.state, Now: now})
			require.NoError(t, err)
			assert.Equal(t, tt.want, bookingIDs(asOwner))
		})
	}

	t.Run("Paged", func(t *testing.T) {
		page, err := db.ListBookings(ctx, domain.BookingFilter{
			BookerID: booker.ID, State: models.StateAll, Now: now, Page: domain.Page{Offset: 2, Limit: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{current.ID, past.ID}, bookingIDs(page))
	})

	t.Run("OtherOwnerSeesNothing", func(t *testing.T) {
		got, err := db.ListBookings(ctx, domain.BookingFilter{OwnerID: booker.ID, State: models.StateAll, Now: now})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestActiveAndFinishedBookings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := baseTime

	owner := mustUser(t, db, "owner")
	booker := mustUser(t, db, "booker")
	item := mustItem(t, db, owner.ID, "canoe", true)

	ended := mustBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved)
	upcoming := mustBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)
	mustBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusRejected)

	active, err := db.ListActiveItemBookings(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{upcoming.ID}, bookingIDs(active))

	all, err := db.ListItemBookings(ctx, []int64{item.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{ended.ID, upcoming.ID}, bookingIDs(all))

	finished, err := db.HasFinishedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.True(t, finished)

	finished, err = db.HasFinishedBooking(ctx, item.ID, owner.ID, now)
	require.NoError(t, err)
	assert.False(t, finished)

	finished, err = db.HasFinishedBooking(ctx, item.ID, booker.ID, now.Add(-25*time.Hour))
	require.NoError(t, err)
	assert.False(t, finished)
}

func TestBookingTimesNormalizedToUTC(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "owner")
	booker := mustUser(t, db, "booker")
	item := mustItem(t, db, owner.ID, "bike", true)

	zone := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2030, 1, 1, 15, 0, 0, 0, zone)
	b := mustBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(start))
	assert.Equal(t, time.UTC, got.Start.Location())

	active, err := db.ListActiveItemBookings(ctx, item.ID, time.Date(2030, 1, 1, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
