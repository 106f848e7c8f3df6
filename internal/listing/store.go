// Package listing persists registered businesses and exposes them to search.
package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrListingNotFound = errors.New("LISTING_NOT_FOUND")

const upsertListingSQL = `
	INSERT INTO business_listings (id, owner_id, business_name, category, city, state, services, record)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner_id) DO UPDATE SET
		business_name = EXCLUDED.business_name,
		category      = EXCLUDED.category,
		city          = EXCLUDED.city,
		state         = EXCLUDED.state,
		services      = EXCLUDED.services,
		record        = EXCLUDED.record,
		updated_at    = NOW()
	RETURNING id, plan, created_at, updated_at, (xmax = 0) AS created`

const insertAuditSQL = `INSERT INTO audit_log (listing_id, action, actor_id) VALUES ($1, $2, $3)`

const selectByOwnerSQL = `
	SELECT id, owner_id, plan, record, created_at, updated_at
	FROM business_listings
	WHERE owner_id = $1`

const selectPlanSQL = `SELECT plan FROM business_listings WHERE id = $1`

const selectContactSQL = `
	SELECT plan, COALESCE(record->>'whatsapp', '')
	FROM business_listings
	WHERE id = $1`

// Contact is what lead routing needs to know about a listing.
type Contact struct {
	ListingID string
	Plan      string
	WhatsApp  string
}

// Store keeps one listing per owner in postgres.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: logger.ForComponent(log, "listing-store")}
}

// CreateOrUpdateBusinessRecord upserts the owner's listing. Every failure is
// a *errors.PersistenceError.
func (s *Store) CreateOrUpdateBusinessRecord(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error) {
	if record == nil {
		return nil, apperrors.NewPersistenceError("business record is required", nil)
	}
	if missing := missingColumns(owner, record); len(missing) > 0 {
		return nil, apperrors.NewPersistenceError("business record is missing "+strings.Join(missing, ", "), nil)
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return nil, apperrors.NewPersistenceError("business record could not be encoded", err)
	}

	saved := &models.SavedRecord{OwnerID: owner.ID, Record: *record}
	err = s.db.QueryRowContext(ctx, upsertListingSQL,
		uuid.New().String(),
		owner.ID,
		record.BusinessName,
		record.Category,
		record.City,
		record.State,
		pq.Array(record.Services),
		doc,
	).Scan(&saved.ID, &saved.Plan, &saved.CreatedAt, &saved.UpdatedAt, &saved.Created)
	if err != nil {
		return nil, apperrors.NewPersistenceError(persistenceMessage(ctx, err), err)
	}

	action := "listing.updated"
	if saved.Created {
		action = "listing.created"
	}
	if _, err := s.db.ExecContext(ctx, insertAuditSQL, saved.ID, action, owner.ID); err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"listingId": saved.ID,
			"error":     err.Error(),
		})
	}

	s.logger.Info("listing saved", map[string]interface{}{
		"listingId": saved.ID,
		"ownerId":   owner.ID,
		"created":   saved.Created,
	})
	return saved, nil
}

func (s *Store) GetByOwner(ctx context.Context, ownerID string) (*models.SavedRecord, error) {
	var (
		saved models.SavedRecord
		doc   []byte
	)
	err := s.db.QueryRowContext(ctx, selectByOwnerSQL, ownerID).
		Scan(&saved.ID, &saved.OwnerID, &saved.Plan, &doc, &saved.CreatedAt, &saved.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: owner %s", ErrListingNotFound, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if err := json.Unmarshal(doc, &saved.Record); err != nil {
		return nil, fmt.Errorf("failed to decode listing record: %w", err)
	}
	return &saved, nil
}

// PlanOf returns the stored plan name. It is not checked against the plan
// enumeration; unknown names fail closed at the resolver.
func (s *Store) PlanOf(ctx context.Context, listingID string) (string, error) {
	var plan string
	err := s.db.QueryRowContext(ctx, selectPlanSQL, listingID).Scan(&plan)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, nil
}

func (s *Store) ContactOf(ctx context.Context, listingID string) (*Contact, error) {
	c := Contact{ListingID: listingID}
	err := s.db.QueryRowContext(ctx, selectContactSQL, listingID).Scan(&c.Plan, &c.WhatsApp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing contact: %w", err)
	}
	return &c, nil
}

func missingColumns(owner models.User, r *models.BusinessRecord) []string {
	var missing []string
	if owner.ID == "" {
		missing = append(missing, "owner")
	}
	if strings.TrimSpace(r.BusinessName) == "" {
		missing = append(missing, "business name")
	}
	if strings.TrimSpace(r.Category) == "" {
		missing = append(missing, "category")
	}
	return missing
}

func persistenceMessage(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "saving timed out, please try again"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return "the listing conflicts with an existing record"
		case "08":
			return "the directory database is unavailable"
		}
	}
	return "the listing could not be saved"
}
