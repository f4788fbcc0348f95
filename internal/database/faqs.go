package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/models"
)

const faqColumns = `f.id, f.question, f.answer, f.created_at, f.updated_at`

func scanFaq(row rowScanner) (*models.Faq, error) {
	f := &models.Faq{}
	if err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// SearchFaqs pages FAQ entries in id order. A non-empty keyword matches
// the question text only.
func (db *DB) SearchFaqs(ctx context.Context, keyword string, page models.PageRequest) (models.Page[*models.Faq], error) {
	result := models.Page[*models.Faq]{Page: page.Page, Size: page.Size}

	whereSQL := ""
	var args []interface{}
	if kw := strings.TrimSpace(keyword); kw != "" {
		whereSQL = " WHERE f.question LIKE ?"
		args = append(args, "%"+kw+"%")
	}

	countQuery := `SELECT COUNT(*) FROM faqs f` + whereSQL
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&result.TotalItems); err != nil {
		return result, fmt.Errorf("failed to count faqs: %w", err)
	}

	query := `SELECT ` + faqColumns + ` FROM faqs f` + whereSQL + ` ORDER BY f.id ASC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return result, fmt.Errorf("failed to search faqs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFaq(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan faq: %w", err)
		}
		result.Items = append(result.Items, f)
	}
	return result, rows.Err()
}

// SeedFaqs inserts FAQ entries from config, keeping rows that already exist.
func (db *DB) SeedFaqs(ctx context.Context, faqs []models.Faq) error {
	query := `INSERT INTO faqs (id, question, answer, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`
	now := time.Now()
	for i := range faqs {
		f := &faqs[i]
		if _, err := db.ExecContext(ctx, query, f.ID, f.Question, f.Answer, now, now); err != nil {
			return fmt.Errorf("failed to seed faq %d: %w", f.ID, err)
		}
	}
	db.logger.Info().Int("count", len(faqs)).Msg("faqs seeded")
	return nil
}
