package database

import (
	"context"
	"fmt"
	"time"

	"stayhub/internal/models"
)

const favoriteColumns = `f.id, f.listing_id, l.name, f.user_id, f.created_at`

const favoriteFrom = ` FROM favorites f JOIN listings l ON l.id = f.listing_id`

func scanFavorite(row rowScanner) (*models.Favorite, error) {
	f := &models.Favorite{}
	if err := row.Scan(&f.ID, &f.ListingID, &f.ListingName, &f.UserID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

func (db *DB) GetFavorite(ctx context.Context, id int64) (*models.Favorite, error) {
	f, err := scanFavorite(db.QueryRowContext(ctx, `SELECT `+favoriteColumns+favoriteFrom+` WHERE f.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (db *DB) GetFavoriteByListingAndUser(ctx context.Context, listingID, userID int64) (*models.Favorite, error) {
	query := `SELECT ` + favoriteColumns + favoriteFrom + ` WHERE f.listing_id = ? AND f.user_id = ?`
	f, err := scanFavorite(db.QueryRowContext(ctx, query, listingID, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (db *DB) GetUserFavorites(ctx context.Context, userID int64, page models.PageRequest) (models.Page[*models.Favorite], error) {
	page = page.Normalize(models.DefaultPageSize)
	result := models.Page[*models.Favorite]{Page: page.Page, Size: page.Size}

	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID).Scan(&result.TotalItems)
	if err != nil {
		return result, fmt.Errorf("failed to count favorites: %w", err)
	}

	query := `SELECT ` + favoriteColumns + favoriteFrom + `
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, userID, page.Size, page.Offset())
	if err != nil {
		return result, fmt.Errorf("failed to get favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan favorite: %w", err)
		}
		result.Items = append(result.Items, f)
	}
	return result, rows.Err()
}

func (db *DB) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO favorites (listing_id, user_id, created_at) VALUES (?, ?, ?)`,
		f.ListingID, f.UserID, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyFavorite
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	f.ID = id
	f.CreatedAt = now
	return nil
}

func (db *DB) DeleteFavorite(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return requireAffected(result)
}
