package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Repository = (*DB)(nil)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedListing(t *testing.T, db *DB, name string, price int64, address string) *models.Listing {
	t.Helper()
	l := &models.Listing{Name: name, Price: price, Capacity: 4, Address: address}
	require.NoError(t, db.CreateListing(context.Background(), l))
	return l
}

func seedUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Taro", Email: email, PasswordHash: "hash", Enabled: true}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestSeedListings_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seed := []models.Listing{
		{ID: 1, Name: "SAMURAI no Yado", Price: 6000, Capacity: 2, Address: "Tokyo"},
		{ID: 2, Name: "Kyoto Inn", Price: 8000, Capacity: 4, Address: "Kyoto"},
	}
	require.NoError(t, db.SeedListings(ctx, seed))
	require.NoError(t, db.SeedListings(ctx, seed))

	page, err := db.SearchListings(ctx, models.ListingFilter{}, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)

	l, err := db.GetListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "SAMURAI no Yado", l.Name)
	assert.Equal(t, 2, l.Capacity)
}

func TestGetListing_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetListing(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchListings_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedListing(t, db, "Sea View", 9000, "Okinawa Naha")
	seedListing(t, db, "City Hotel", 5000, "Tokyo Shinjuku")
	seedListing(t, db, "Tokyo Capsule", 3000, "Tokyo Ueno")

	tests := []struct {
		name   string
		filter models.ListingFilter
		want   []string
	}{
		{name: "keyword matches name or address", filter: models.ListingFilter{Keyword: "Tokyo", Order: models.OrderPriceAsc}, want: []string{"Tokyo Capsule", "City Hotel"}},
		{name: "area matches address", filter: models.ListingFilter{Area: "Okinawa"}, want: []string{"Sea View"}},
		{name: "max price", filter: models.ListingFilter{MaxPrice: 5000, Order: models.OrderPriceAsc}, want: []string{"Tokyo Capsule", "City Hotel"}},
		{name: "price order", filter: models.ListingFilter{Order: models.OrderPriceAsc}, want: []string{"Tokyo Capsule", "City Hotel", "Sea View"}},
		{name: "newest first", filter: models.ListingFilter{}, want: []string{"Tokyo Capsule", "City Hotel", "Sea View"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := db.SearchListings(ctx, tt.filter, models.PageRequest{})
			require.NoError(t, err)
			var names []string
			for _, l := range page.Items {
				names = append(names, l.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), page.TotalItems)
		})
	}
}

func TestSearchListings_Paging(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedListing(t, db, "L", int64(1000+i), "Osaka")
	}

	page, err := db.SearchListings(ctx, models.ListingFilter{}, models.PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages())
}

func TestPopularListings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	quiet := seedListing(t, db, "Quiet", 1000, "A")
	busy := seedListing(t, db, "Busy", 1000, "B")
	user := seedUser(t, db, "taro@example.com")

	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		require.NoError(t, db.CreateReservation(ctx, &models.Reservation{
			ListingID: busy.ID, UserID: user.ID, CheckinDate: in, CheckoutDate: in.AddDate(0, 0, 1),
			NumberOfPeople: 1, Amount: 1000,
		}))
	}

	popular, err := db.GetPopularListings(ctx, 3)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, busy.ID, popular[0].ID)
	assert.Equal(t, quiet.ID, popular[1].ID)
}

func TestUpdateAndDeleteListing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "Old", 1000, "A")

	l.Name = "New"
	require.NoError(t, db.UpdateListing(ctx, l))
	got, err := db.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	require.NoError(t, db.DeleteListing(ctx, l.ID))
	assert.ErrorIs(t, db.DeleteListing(ctx, l.ID), ErrNotFound)
	assert.ErrorIs(t, db.UpdateListing(ctx, l), ErrNotFound)
}

func TestDeleteListing_CascadesDependents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "Doomed", 1000, "A")
	u := seedUser(t, db, "hanako@example.com")

	require.NoError(t, db.CreateFavorite(ctx, &models.Favorite{ListingID: l.ID, UserID: u.ID}))
	require.NoError(t, db.CreateReview(ctx, &models.Review{ListingID: l.ID, UserID: u.ID, Score: 5, Content: "ok"}))

	require.NoError(t, db.DeleteListing(ctx, l.ID))

	_, err := db.GetFavoriteByListingAndUser(ctx, l.ID, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := db.CountListingReviews(ctx, l.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchFaqs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seed := []models.Faq{
		{ID: 1, Question: "What time is check-in?", Answer: "From 15:00."},
		{ID: 2, Question: "Is there parking?", Answer: "Check the listing."},
		{ID: 3, Question: "Can I check out late?", Answer: "Ask the host."},
	}
	require.NoError(t, db.SeedFaqs(ctx, seed))
	require.NoError(t, db.SeedFaqs(ctx, seed))

	t.Run("All", func(t *testing.T) {
		page, err := db.SearchFaqs(ctx, "", models.PageRequest{Size: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalItems)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "What time is check-in?", page.Items[0].Question)
		assert.Equal(t, "From 15:00.", page.Items[0].Answer)
		assert.False(t, page.Items[0].CreatedAt.IsZero())

		next, err := db.SearchFaqs(ctx, "", models.PageRequest{Page: 1, Size: 2})
		require.NoError(t, err)
		require.Len(t, next.Items, 1)
		assert.Equal(t, int64(3), next.Items[0].ID)
	})

	t.Run("KeywordIgnoresAnswer", func(t *testing.T) {
		page, err := db.SearchFaqs(ctx, "check", models.PageRequest{Size: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalItems)
		require.Len(t, page.Items, 2)
		assert.Equal(t, int64(1), page.Items[0].ID)
		assert.Equal(t, int64(3), page.Items[1].ID)
	})

	t.Run("NoMatch", func(t *testing.T) {
		page, err := db.SearchFaqs(ctx, "wifi", models.PageRequest{Size: 5})
		require.NoError(t, err)
		assert.Zero(t, page.TotalItems)
		assert.Empty(t, page.Items)
	})
}
