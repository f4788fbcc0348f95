package database

import (
	"context"
	"testing"

	"stayhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "A", 1000, "Tokyo")
	taro := seedUser(t, db, "taro@example.com")
	jiro := seedUser(t, db, "jiro@example.com")

	first := &models.Review{ListingID: l.ID, UserID: taro.ID, Score: 4, Content: "good"}
	require.NoError(t, db.CreateReview(ctx, first))
	second := &models.Review{ListingID: l.ID, UserID: jiro.ID, Score: 2, Content: "meh"}
	require.NoError(t, db.CreateReview(ctx, second))

	err := db.CreateReview(ctx, &models.Review{ListingID: l.ID, UserID: taro.ID, Score: 5, Content: "again"})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	latest, err := db.GetLatestReviews(ctx, l.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, second.ID, latest[0].ID)
	assert.Equal(t, "Taro", latest[0].UserName)

	page, err := db.GetListingReviews(ctx, l.ID, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)

	mine, err := db.GetReviewByListingAndUser(ctx, l.ID, taro.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, mine.ID)

	mine.Score = 5
	require.NoError(t, db.UpdateReview(ctx, mine))
	got, err := db.GetReview(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Score)

	require.NoError(t, db.DeleteReview(ctx, mine.ID))
	_, err = db.GetReview(ctx, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavorites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "A", 1000, "Tokyo")
	u := seedUser(t, db, "taro@example.com")

	f := &models.Favorite{ListingID: l.ID, UserID: u.ID}
	require.NoError(t, db.CreateFavorite(ctx, f))
	assert.ErrorIs(t, db.CreateFavorite(ctx, &models.Favorite{ListingID: l.ID, UserID: u.ID}), ErrAlreadyFavorite)

	page, err := db.GetUserFavorites(ctx, u.ID, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].ListingName)

	got, err := db.GetFavorite(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ListingID)

	require.NoError(t, db.DeleteFavorite(ctx, f.ID))
	assert.ErrorIs(t, db.DeleteFavorite(ctx, f.ID), ErrNotFound)
}
