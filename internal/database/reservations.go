package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stayhub/internal/models"
)

const reservationColumns = `r.id, r.listing_id, l.name, r.user_id, r.checkin_date, r.checkout_date,
	r.number_of_people, r.amount, COALESCE(r.checkout_session_id, ''), r.created_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		res              models.Reservation
		checkin, checkout string
	)
	err := row.Scan(
		&res.ID, &res.ListingID, &res.ListingName, &res.UserID, &checkin, &checkout,
		&res.NumberOfPeople, &res.Amount, &res.CheckoutSessionID, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if res.CheckinDate, err = parseDate(checkin); err != nil {
		return nil, fmt.Errorf("failed to parse checkin date: %w", err)
	}
	if res.CheckoutDate, err = parseDate(checkout); err != nil {
		return nil, fmt.Errorf("failed to parse checkout date: %w", err)
	}
	return &res, nil
}

// CreateReservation inserts a paid reservation. A second insert for the same
// checkout session fails with ErrDuplicateReservation.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (
				listing_id, user_id, checkin_date, checkout_date,
				number_of_people, amount, checkout_session_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var sessionID interface{}
	if r.CheckoutSessionID != "" {
		sessionID = r.CheckoutSessionID
	}

	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		r.ListingID,
		r.UserID,
		r.CheckinDate.Format(models.DateLayout),
		r.CheckoutDate.Format(models.DateLayout),
		r.NumberOfPeople,
		r.Amount,
		sessionID,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReservation
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	return nil
}

func (db *DB) GetReservationBySessionID(ctx context.Context, sessionID string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations r JOIN listings l ON l.id = r.listing_id
		WHERE r.checkout_session_id = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

// GetUserReservations lists a user's reservations, newest first.
func (db *DB) GetUserReservations(ctx context.Context, userID int64, page models.PageRequest) (models.Page[*models.Reservation], error) {
	page = page.Normalize(models.DefaultPageSize)
	result := models.Page[*models.Reservation]{Page: page.Page, Size: page.Size}

	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = ?`, userID).Scan(&result.TotalItems)
	if err != nil {
		return result, fmt.Errorf("failed to count reservations: %w", err)
	}

	query := `SELECT ` + reservationColumns + `
		FROM reservations r JOIN listings l ON l.id = r.listing_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, userID, page.Size, page.Offset())
	if err != nil {
		return result, fmt.Errorf("failed to get user reservations: %w", err)
	}
	result.Items, err = collectReservations(rows)
	return result, err
}

func collectReservations(rows *sql.Rows) ([]*models.Reservation, error) {
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) CountReservations(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}
