// Package registration binds an authenticated owner to a fresh wizard and
// forwards the UI's actions to it.
package registration

import (
	"context"
	"errors"
	"fmt"

	"business-directory/internal/common/logger"
	"business-directory/internal/common/metrics"
	"business-directory/internal/models"
	"business-directory/internal/wizard"
)

var ErrUnauthenticated = errors.New("UNAUTHENTICATED")

// IdentityProvider resolves a session token. A nil user with a nil error
// means the token is missing or invalid.
type IdentityProvider interface {
	GetCurrentUser(ctx context.Context, token string) (*models.User, error)
}

type Flow struct {
	identity  IdentityProvider
	submitter wizard.Submitter
	steps     []wizard.Step
	logger    logger.Logger
}

func NewFlow(identity IdentityProvider, submitter wizard.Submitter, steps []wizard.Step, log logger.Logger) *Flow {
	if len(steps) == 0 {
		steps = wizard.DefaultRegistrationSteps()
	}
	return &Flow{
		identity:  identity,
		submitter: submitter,
		steps:     steps,
		logger:    logger.ForComponent(log, "registration"),
	}
}

// Begin resolves the owner once and starts a new wizard for them.
func (f *Flow) Begin(ctx context.Context, token string) (*Session, error) {
	user, err := f.identity.GetCurrentUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	w, err := wizard.New(f.steps, f.submitter, wizard.WithLogger(f.logger))
	if err != nil {
		return nil, err
	}

	f.logger.Info("registration started", map[string]interface{}{"ownerId": user.ID})
	return &Session{
		owner:  *user,
		wizard: w,
		logger: f.logger.WithFields(map[string]interface{}{"ownerId": user.ID}),
	}, nil
}

// Session is one owner's registration attempt.
type Session struct {
	owner  models.User
	wizard *wizard.Wizard
	logger logger.Logger
}

func (s *Session) Owner() models.User {
	return s.owner
}

func (s *Session) Steps() []wizard.Step {
	return s.wizard.Steps()
}

func (s *Session) State() wizard.State {
	return s.wizard.State()
}

func (s *Session) SetField(step int, name, value string) bool {
	return s.wizard.SetField(step, name, value)
}

func (s *Session) Advance() bool {
	step := s.wizard.State().StepName
	ok := s.wizard.Advance()
	metrics.RecordTransition(step, "advance", ok)
	return ok
}

func (s *Session) Retreat() bool {
	step := s.wizard.State().StepName
	ok := s.wizard.Retreat()
	metrics.RecordTransition(step, "retreat", ok)
	return ok
}

func (s *Session) Submit(ctx context.Context) (*models.SavedRecord, error) {
	saved, err := s.wizard.Submit(ctx, s.owner)
	metrics.WizardSubmissions.WithLabelValues(submitOutcome(err)).Inc()
	if err != nil && errors.Is(err, wizard.ErrSubmissionFailed) {
		s.logger.Warn("registration submit failed", map[string]interface{}{"error": err.Error()})
	}
	return saved, err
}

func (s *Session) Cancel() {
	s.wizard.Cancel()
	s.logger.Info("registration cancelled", nil)
}

func submitOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, wizard.ErrSubmissionFailed):
		return "failed"
	case errors.Is(err, wizard.ErrCancelled):
		return "cancelled"
	default:
		return "rejected"
	}
}
