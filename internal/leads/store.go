// internal/leads/store.go
package leads

import (
	"context"
	"database/sql"
	"fmt"

	"business-directory/internal/models"
)

const insertLeadSQL = `
	INSERT INTO leads (id, listing_id, name, email, phone, message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listLeadsSQL = `
	SELECT id, listing_id, name, email, phone, message, created_at
	FROM leads
	WHERE listing_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, lead *models.Lead) error {
	_, err := s.db.ExecContext(ctx, insertLeadSQL,
		lead.ID, lead.ListingID, lead.Name, lead.Email, lead.Phone, lead.Message, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// ListByListing returns the newest leads first.
func (s *Store) ListByListing(ctx context.Context, listingID string, limit int) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, listLeadsSQL, listingID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]models.Lead, 0)
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.ListingID, &l.Name, &l.Email, &l.Phone, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
