package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stayhub/internal/models"
)

const reviewColumns = `rv.id, rv.listing_id, rv.user_id, u.name, rv.score, rv.content, rv.created_at, rv.updated_at`

const reviewFrom = ` FROM reviews rv JOIN users u ON u.id = rv.user_id`

func scanReview(row rowScanner) (*models.Review, error) {
	r := &models.Review{}
	err := row.Scan(&r.ID, &r.ListingID, &r.UserID, &r.UserName, &r.Score, &r.Content, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func collectReviews(rows *sql.Rows) ([]*models.Review, error) {
	defer rows.Close()

	var out []*models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	r, err := scanReview(db.QueryRowContext(ctx, `SELECT `+reviewColumns+reviewFrom+` WHERE rv.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (db *DB) GetReviewByListingAndUser(ctx context.Context, listingID, userID int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + reviewFrom + ` WHERE rv.listing_id = ? AND rv.user_id = ?`
	r, err := scanReview(db.QueryRowContext(ctx, query, listingID, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (db *DB) GetLatestReviews(ctx context.Context, listingID int64, limit int) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + reviewFrom + `
		WHERE rv.listing_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT ?`
	rows, err := db.QueryContext(ctx, query, listingID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reviews: %w", err)
	}
	return collectReviews(rows)
}

func (db *DB) GetListingReviews(ctx context.Context, listingID int64, page models.PageRequest) (models.Page[*models.Review], error) {
	page = page.Normalize(models.DefaultPageSize)
	result := models.Page[*models.Review]{Page: page.Page, Size: page.Size}

	total, err := db.CountListingReviews(ctx, listingID)
	if err != nil {
		return result, err
	}
	result.TotalItems = total

	query := `SELECT ` + reviewColumns + reviewFrom + `
		WHERE rv.listing_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, listingID, page.Size, page.Offset())
	if err != nil {
		return result, fmt.Errorf("failed to get listing reviews: %w", err)
	}
	result.Items, err = collectReviews(rows)
	return result, err
}

func (db *DB) CountListingReviews(ctx context.Context, listingID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE listing_id = ?`, listingID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

func (db *DB) CreateReview(ctx context.Context, r *models.Review) error {
	query := `INSERT INTO reviews (listing_id, user_id, score, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, r.ListingID, r.UserID, r.Score, r.Content, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (db *DB) UpdateReview(ctx context.Context, r *models.Review) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`UPDATE reviews SET score = ?, content = ?, updated_at = ? WHERE id = ?`,
		r.Score, r.Content, now, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	r.UpdatedAt = now
	return nil
}

func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return requireAffected(result)
}
