package registration

import (
	"context"
	"errors"
	"testing"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/models"
	"business-directory/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockSubmitter struct{ mock.Mock }

func (m *mockSubmitter) CreateOrUpdateBusinessRecord(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error) {
	args := m.Called(ctx, owner, record)
	saved, _ := args.Get(0).(*models.SavedRecord)
	return saved, args.Error(1)
}

var singleStep = []wizard.Step{{
	Name:   "basics",
	Fields: []wizard.Field{{Name: wizard.FieldBusinessName, Label: "Business name", Required: true}},
}}

func TestBegin_RequiresAuthenticatedUser(t *testing.T) {
	identity := &mockIdentity{}
	identity.On("GetCurrentUser", mock.Anything, "").Return(nil, nil)
	identity.On("GetCurrentUser", mock.Anything, "down").Return(nil, apperrors.NewExternalServiceError("keycloak", errors.New("timeout")))

	flow := NewFlow(identity, &mockSubmitter{}, singleStep, logger.NewTestLogger(t))

	_, err := flow.Begin(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = flow.Begin(context.Background(), "down")
	var stdErr *apperrors.StandardError
	assert.ErrorAs(t, err, &stdErr)
}

func TestSession_SubmitPassesOwnerExplicitly(t *testing.T) {
	user := &models.User{ID: "u-9", Email: "owner@example.com"}
	identity := &mockIdentity{}
	identity.On("GetCurrentUser", mock.Anything, "tok").Return(user, nil)

	submitter := &mockSubmitter{}
	submitter.On("CreateOrUpdateBusinessRecord", mock.Anything, *user, mock.Anything).
		Return(&models.SavedRecord{ID: "lst-1", OwnerID: "u-9"}, nil).Once()

	flow := NewFlow(identity, submitter, singleStep, logger.NewTestLogger(t))
	session, err := flow.Begin(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-9", session.Owner().ID)

	assert.False(t, session.Advance(), "single step has nowhere to go")
	require.True(t, session.SetField(0, wizard.FieldBusinessName, "Glow Salon"))

	saved, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lst-1", saved.ID)
	assert.Equal(t, wizard.StatusSubmitted, session.State().Status)
	submitter.AssertExpectations(t)
}

func TestNewFlow_DefaultsToBuiltInSteps(t *testing.T) {
	identity := &mockIdentity{}
	identity.On("GetCurrentUser", mock.Anything, "tok").Return(&models.User{ID: "u"}, nil)

	session, err := NewFlow(identity, &mockSubmitter{}, nil, nil).Begin(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 5, session.State().TotalSteps)
	assert.Len(t, session.Steps(), 5)
	assert.False(t, session.Retreat())

	session.Cancel()
	assert.Equal(t, wizard.StatusCancelled, session.State().Status)
}

func TestSubmitOutcome(t *testing.T) {
	assert.Equal(t, "success", submitOutcome(nil))
	assert.Equal(t, "failed", submitOutcome(wizard.ErrSubmissionFailed))
	assert.Equal(t, "cancelled", submitOutcome(wizard.ErrCancelled))
	assert.Equal(t, "rejected", submitOutcome(wizard.ErrSubmitInFlight))
}
