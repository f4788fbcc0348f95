package database

import (
	"context"
	"testing"
	"time"

	"stayhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "SAMURAI no Yado", 6000, "Tokyo")
	u := seedUser(t, db, "taro@example.com")

	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	r := &models.Reservation{
		ListingID:         l.ID,
		UserID:            u.ID,
		CheckinDate:       in,
		CheckoutDate:      in.AddDate(0, 0, 2),
		NumberOfPeople:    2,
		Amount:            12000,
		CheckoutSessionID: "cs_test_1",
	}
	require.NoError(t, db.CreateReservation(ctx, r))
	assert.NotZero(t, r.ID)

	got, err := db.GetReservationBySessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "SAMURAI no Yado", got.ListingName)
	assert.Equal(t, in, got.CheckinDate)
	assert.Equal(t, in.AddDate(0, 0, 2), got.CheckoutDate)
	assert.Equal(t, int64(12000), got.Amount)
	assert.Equal(t, 2, got.NumberOfPeople)
}

func TestCreateReservation_DuplicateSession(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "A", 1000, "Tokyo")
	u := seedUser(t, db, "taro@example.com")

	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	mk := func() *models.Reservation {
		return &models.Reservation{
			ListingID: l.ID, UserID: u.ID, CheckinDate: in, CheckoutDate: in.AddDate(0, 0, 1),
			NumberOfPeople: 1, Amount: 1000, CheckoutSessionID: "cs_dup",
		}
	}

	require.NoError(t, db.CreateReservation(ctx, mk()))
	assert.ErrorIs(t, db.CreateReservation(ctx, mk()), ErrDuplicateReservation)

	count, err := db.CountReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateReservation_WithoutSessionAllowsMany(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "A", 1000, "Tokyo")
	u := seedUser(t, db, "taro@example.com")

	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		require.NoError(t, db.CreateReservation(ctx, &models.Reservation{
			ListingID: l.ID, UserID: u.ID, CheckinDate: in, CheckoutDate: in.AddDate(0, 0, 1),
			NumberOfPeople: 1, Amount: 1000,
		}))
	}
	count, err := db.CountReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCreateReservation_UnknownListing(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "taro@example.com")

	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	err := db.CreateReservation(context.Background(), &models.Reservation{
		ListingID: 999, UserID: u.ID, CheckinDate: in, CheckoutDate: in.AddDate(0, 0, 1),
		NumberOfPeople: 1, Amount: 1000,
	})
	assert.Error(t, err)
}

func TestGetUserReservations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "A", 1000, "Tokyo")
	u := seedUser(t, db, "taro@example.com")
	other := seedUser(t, db, "jiro@example.com")

	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.CreateReservation(ctx, &models.Reservation{
			ListingID: l.ID, UserID: u.ID, CheckinDate: in.AddDate(0, 0, i), CheckoutDate: in.AddDate(0, 0, i+1),
			NumberOfPeople: 1, Amount: 1000,
		}))
	}
	require.NoError(t, db.CreateReservation(ctx, &models.Reservation{
		ListingID: l.ID, UserID: other.ID, CheckinDate: in, CheckoutDate: in.AddDate(0, 0, 1),
		NumberOfPeople: 1, Amount: 1000,
	}))

	page, err := db.GetUserReservations(ctx, u.ID, models.PageRequest{Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalItems)
	require.Len(t, page.Items, 2)
	// newest first
	assert.True(t, page.Items[0].ID > page.Items[1].ID)

	_, err = db.GetReservationBySessionID(ctx, "cs_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
