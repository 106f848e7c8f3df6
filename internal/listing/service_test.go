package listing

import (
	"context"
	"errors"
	"testing"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/entitlement"
	"business-directory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) CreateOrUpdateBusinessRecord(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error) {
	args := m.Called(ctx, owner, record)
	saved, _ := args.Get(0).(*models.SavedRecord)
	return saved, args.Error(1)
}

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) IndexListing(ctx context.Context, l models.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockIndexer) Search(ctx context.Context, f Filter) ([]models.Listing, int, error) {
	args := m.Called(ctx, f)
	listings, _ := args.Get(0).([]models.Listing)
	return listings, args.Int(1), args.Error(2)
}

type mockStarter struct{ mock.Mock }

func (m *mockStarter) StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error) {
	args := m.Called(ctx, processID, variables)
	return args.Get(0).(int64), args.Error(1)
}

func newResolver(t *testing.T) *entitlement.Resolver {
	t.Helper()
	r, err := entitlement.NewResolver(entitlement.DefaultCatalog())
	require.NoError(t, err)
	return r
}

func TestService_NewListingIsIndexedAndOnboarded(t *testing.T) {
	store, index, starter := &mockStore{}, &mockIndexer{}, &mockStarter{}
	saved := &models.SavedRecord{ID: "lst-1", Plan: "pro", Created: true, Record: *sampleRecord()}

	store.On("CreateOrUpdateBusinessRecord", mock.Anything, owner, mock.Anything).Return(saved, nil)
	index.On("IndexListing", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return l.ID == "lst-1" && l.Featured
	})).Return(nil)
	starter.On("StartProcess", mock.Anything, "business-onboarding", mock.Anything).Return(int64(7), nil)

	svc := NewService(store, newResolver(t), logger.NewTestLogger(t),
		WithIndex(index), WithOnboarding(starter, "business-onboarding"))

	got, err := svc.CreateOrUpdateBusinessRecord(context.Background(), owner, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	store.AssertExpectations(t)
	index.AssertExpectations(t)
	starter.AssertExpectations(t)
}

func TestService_UpdateSkipsOnboarding(t *testing.T) {
	store, starter := &mockStore{}, &mockStarter{}
	store.On("CreateOrUpdateBusinessRecord", mock.Anything, owner, mock.Anything).
		Return(&models.SavedRecord{ID: "lst-1", Plan: "free"}, nil)

	svc := NewService(store, newResolver(t), logger.NewTestLogger(t), WithOnboarding(starter, "business-onboarding"))
	_, err := svc.CreateOrUpdateBusinessRecord(context.Background(), owner, sampleRecord())
	require.NoError(t, err)
	starter.AssertNotCalled(t, "StartProcess", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SideEffectFailuresDoNotFailSave(t *testing.T) {
	store, index, starter := &mockStore{}, &mockIndexer{}, &mockStarter{}
	store.On("CreateOrUpdateBusinessRecord", mock.Anything, owner, mock.Anything).
		Return(&models.SavedRecord{ID: "lst-1", Plan: "free", Created: true}, nil)
	index.On("IndexListing", mock.Anything, mock.Anything).Return(errors.New("es down"))
	starter.On("StartProcess", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("zeebe down"))

	svc := NewService(store, newResolver(t), logger.NewTestLogger(t),
		WithIndex(index), WithOnboarding(starter, "business-onboarding"))
	saved, err := svc.CreateOrUpdateBusinessRecord(context.Background(), owner, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "lst-1", saved.ID)
}

func TestService_StoreFailurePassesThrough(t *testing.T) {
	store, index := &mockStore{}, &mockIndexer{}
	persistErr := apperrors.NewPersistenceError("the directory database is unavailable", nil)
	store.On("CreateOrUpdateBusinessRecord", mock.Anything, owner, mock.Anything).Return(nil, persistErr)

	svc := NewService(store, newResolver(t), logger.NewTestLogger(t), WithIndex(index))
	_, err := svc.CreateOrUpdateBusinessRecord(context.Background(), owner, sampleRecord())
	assert.Same(t, persistErr, err)
	index.AssertNotCalled(t, "IndexListing", mock.Anything, mock.Anything)
}

func TestService_ToListing_UnknownPlanNotFeatured(t *testing.T) {
	svc := NewService(&mockStore{}, newResolver(t), nil)
	listing := svc.ToListing(&models.SavedRecord{ID: "x", Plan: "enterprise", Record: *sampleRecord()})
	assert.False(t, listing.Featured)
	assert.Equal(t, "Glow Salon", listing.Name)
}
