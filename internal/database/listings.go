package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/models"
)

const listingColumns = `l.id, l.name, COALESCE(l.image_name, ''), COALESCE(l.description, ''), l.price, l.capacity,
	COALESCE(l.postal_code, ''), COALESCE(l.address, ''), COALESCE(l.phone_number, ''), l.created_at, l.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	l := &models.Listing{}
	err := row.Scan(
		&l.ID, &l.Name, &l.ImageName, &l.Description, &l.Price, &l.Capacity,
		&l.PostalCode, &l.Address, &l.PhoneNumber, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func collectListings(rows *sql.Rows) ([]*models.Listing, error) {
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (db *DB) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = ?`
	l, err := scanListing(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// SearchListings applies the index filters. Keyword matches name or address,
// area matches address only.
func (db *DB) SearchListings(ctx context.Context, filter models.ListingFilter, page models.PageRequest) (models.Page[*models.Listing], error) {
	page = page.Normalize(models.ListingsPageSize)
	result := models.Page[*models.Listing]{Page: page.Page, Size: page.Size}

	var where []string
	var args []interface{}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		where = append(where, "(l.name LIKE ? OR l.address LIKE ?)")
		args = append(args, "%"+kw+"%", "%"+kw+"%")
	}
	if area := strings.TrimSpace(filter.Area); area != "" {
		where = append(where, "l.address LIKE ?")
		args = append(args, "%"+area+"%")
	}
	if filter.MaxPrice > 0 {
		where = append(where, "l.price <= ?")
		args = append(args, filter.MaxPrice)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM listings l` + whereSQL
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&result.TotalItems); err != nil {
		return result, fmt.Errorf("failed to count listings: %w", err)
	}

	orderSQL := " ORDER BY l.created_at DESC, l.id DESC"
	if filter.Order == models.OrderPriceAsc {
		orderSQL = " ORDER BY l.price ASC, l.id ASC"
	}

	query := `SELECT ` + listingColumns + ` FROM listings l` + whereSQL + orderSQL + ` LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return result, fmt.Errorf("failed to search listings: %w", err)
	}
	items, err := collectListings(rows)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func (db *DB) GetNewestListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l ORDER BY l.created_at DESC, l.id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get newest listings: %w", err)
	}
	return collectListings(rows)
}

// GetPopularListings orders listings by how many reservations they have.
func (db *DB) GetPopularListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings l
		LEFT JOIN reservations r ON r.listing_id = l.id
		GROUP BY l.id
		ORDER BY COUNT(r.id) DESC, l.id ASC
		LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular listings: %w", err)
	}
	return collectListings(rows)
}

func (db *DB) CreateListing(ctx context.Context, l *models.Listing) error {
	query := `INSERT INTO listings (
				name, image_name, description, price, capacity,
				postal_code, address, phone_number, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		l.Name, l.ImageName, l.Description, l.Price, l.Capacity,
		l.PostalCode, l.Address, l.PhoneNumber, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	l.ID = id
	l.CreatedAt = now
	l.UpdatedAt = now
	return nil
}

func (db *DB) UpdateListing(ctx context.Context, l *models.Listing) error {
	query := `UPDATE listings SET
				name = ?, image_name = ?, description = ?, price = ?, capacity = ?,
				postal_code = ?, address = ?, phone_number = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		l.Name, l.ImageName, l.Description, l.Price, l.Capacity,
		l.PostalCode, l.Address, l.PhoneNumber, now, l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	l.UpdatedAt = now
	return nil
}

func (db *DB) DeleteListing(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
