package listing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = models.User{ID: "user-1", Email: "ada@example.com"}

func sampleRecord() *models.BusinessRecord {
	return &models.BusinessRecord{
		BusinessName: "Glow Salon",
		Category:     "Beauty",
		City:         "Springfield",
		State:        "IL",
		Services:     []string{"Hair Styling", "Braiding"},
	}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func TestStore_CreateOrUpdate_Created(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO business_listings").
		WithArgs(sqlmock.AnyArg(), "user-1", "Glow Salon", "Beauty", "Springfield", "IL", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan", "created_at", "updated_at", "created"}).
			AddRow("lst-1", "free", now, now, true))
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs("lst-1", "listing.created", "user-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	saved, err := store.CreateOrUpdateBusinessRecord(context.Background(), owner, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "lst-1", saved.ID)
	assert.Equal(t, "free", saved.Plan)
	assert.True(t, saved.Created)
	assert.Equal(t, "user-1", saved.OwnerID)
	assert.Equal(t, []string{"Hair Styling", "Braiding"}, saved.Record.Services)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateOrUpdate_AuditFailureIsNotFatal(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO business_listings").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan", "created_at", "updated_at", "created"}).
			AddRow("lst-1", "pro", now, now, false))
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs("lst-1", "listing.updated", "user-1").
		WillReturnError(errors.New("disk full"))

	saved, err := store.CreateOrUpdateBusinessRecord(context.Background(), owner, sampleRecord())
	require.NoError(t, err)
	assert.False(t, saved.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateOrUpdate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		owner   models.User
		record  *models.BusinessRecord
		dbErr   error
		wantMsg string
	}{
		{"nil record", owner, nil, nil, "business record is required"},
		{"no owner", models.User{}, sampleRecord(), nil, "business record is missing owner"},
		{"no name", owner, &models.BusinessRecord{Category: "x"}, nil, "business record is missing business name"},
		{"unique violation", owner, sampleRecord(), &pq.Error{Code: "23505"}, "the listing conflicts with an existing record"},
		{"connection", owner, sampleRecord(), &pq.Error{Code: "08006"}, "the directory database is unavailable"},
		{"other", owner, sampleRecord(), errors.New("boom"), "the listing could not be saved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			if tt.dbErr != nil {
				mock.ExpectQuery("INSERT INTO business_listings").WillReturnError(tt.dbErr)
			}

			saved, err := store.CreateOrUpdateBusinessRecord(context.Background(), tt.owner, tt.record)
			assert.Nil(t, saved)
			var persistErr *apperrors.PersistenceError
			require.ErrorAs(t, err, &persistErr)
			assert.Equal(t, tt.wantMsg, persistErr.Message)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_GetByOwner(t *testing.T) {
	store, mock := newMockStore(t)
	doc, _ := json.Marshal(sampleRecord())
	now := time.Now()

	mock.ExpectQuery("SELECT id, owner_id, plan, record").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "plan", "record", "created_at", "updated_at"}).
			AddRow("lst-1", "user-1", "basic", doc, now, now))

	saved, err := store.GetByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Glow Salon", saved.Record.BusinessName)
	assert.Equal(t, "basic", saved.Plan)

	mock.ExpectQuery("SELECT id, owner_id, plan, record").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "plan", "record", "created_at", "updated_at"}))

	_, err = store.GetByOwner(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrListingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PlanOf(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT plan FROM business_listings").
		WithArgs("lst-1").
		WillReturnRows(sqlmock.NewRows([]string{"plan"}).AddRow("standard"))
	plan, err := store.PlanOf(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, "standard", plan)

	mock.ExpectQuery("SELECT plan FROM business_listings").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"plan"}))
	_, err = store.PlanOf(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestStore_ContactOf(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT plan, COALESCE").
		WithArgs("lst-1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "whatsapp"}).AddRow("pro", "+15550102030"))

	contact, err := store.ContactOf(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, &Contact{ListingID: "lst-1", Plan: "pro", WhatsApp: "+15550102030"}, contact)
	assert.NoError(t, mock.ExpectationsWereMet())
}
