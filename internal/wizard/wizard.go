// Package wizard drives the multi-step business registration flow: it holds
// the draft across steps, gates forward moves on step-local validation and
// hands the assembled record to an injected Submitter exactly once at a time.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/validation"
	"business-directory/internal/models"
)

var (
	ErrNoSteps          = errors.New("WIZARD_NO_STEPS")
	ErrNoSubmitter      = errors.New("WIZARD_NO_SUBMITTER")
	ErrInvalidStep      = errors.New("WIZARD_INVALID_STEP")
	ErrDuplicateField   = errors.New("WIZARD_DUPLICATE_FIELD")
	ErrNotEditing       = errors.New("WIZARD_NOT_EDITING")
	ErrNotFinalStep     = errors.New("WIZARD_NOT_FINAL_STEP")
	ErrValidationFailed = errors.New("WIZARD_VALIDATION_FAILED")
	ErrSubmitInFlight   = errors.New("WIZARD_SUBMIT_IN_FLIGHT")
	ErrSubmissionFailed = errors.New("WIZARD_SUBMISSION_FAILED")
	ErrCancelled        = errors.New("WIZARD_CANCELLED")
)

type Status string

const (
	StatusEditing   Status = "editing"
	StatusSubmitted Status = "submitted"
	StatusCancelled Status = "cancelled"
)

// Field is one input owned by exactly one step.
type Field struct {
	Name       string
	Label      string
	Required   bool
	Validators []validation.FieldValidator
}

type Step struct {
	Name   string
	Fields []Field
}

// Draft holds field values exactly as entered.
type Draft map[string]string

func (d Draft) clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Submitter is the persistence collaborator. The owner is passed on every
// call; the wizard never reads session state itself.
type Submitter interface {
	CreateOrUpdateBusinessRecord(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error)
}

// Assembler turns a complete draft into the record handed to the Submitter.
type Assembler func(Draft) *models.BusinessRecord

// State is a read-only snapshot for the rendering layer.
type State struct {
	CurrentStep         int
	TotalSteps          int
	StepName            string
	Status              Status
	Draft               Draft
	ValidationErrors    map[string]string
	LastSubmissionError string
	Submitting          bool
	SavedRecord         *models.SavedRecord
}

type Option func(*Wizard)

func WithLogger(l logger.Logger) Option {
	return func(w *Wizard) { w.logger = logger.ForComponent(l, "wizard") }
}

func WithAssembler(a Assembler) Option {
	return func(w *Wizard) {
		if a != nil {
			w.assemble = a
		}
	}
}

// Wizard is safe for concurrent use. Each registration attempt owns its own
// instance.
type Wizard struct {
	mu sync.Mutex

	steps     []Step
	fieldStep map[string]int
	submitter Submitter
	assemble  Assembler
	logger    logger.Logger

	current             int
	status              Status
	draft               Draft
	errs                map[string]string
	submitting          bool
	lastSubmissionError string
	saved               *models.SavedRecord
}

func New(steps []Step, submitter Submitter, opts ...Option) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	if submitter == nil {
		return nil, ErrNoSubmitter
	}

	w := &Wizard{
		steps:     make([]Step, len(steps)),
		fieldStep: make(map[string]int),
		submitter: submitter,
		assemble:  BuildBusinessRecord,
		logger:    logger.ForComponent(logger.NewNoOpLogger(), "wizard"),
		status:    StatusEditing,
		draft:     make(Draft),
		errs:      make(map[string]string),
	}

	for i, step := range steps {
		if len(step.Fields) == 0 {
			return nil, fmt.Errorf("%w: step %d (%s) has no fields", ErrInvalidStep, i, step.Name)
		}
		fields := make([]Field, len(step.Fields))
		copy(fields, step.Fields)
		for _, f := range fields {
			if f.Name == "" {
				return nil, fmt.Errorf("%w: step %d (%s) has an unnamed field", ErrInvalidStep, i, step.Name)
			}
			if owner, dup := w.fieldStep[f.Name]; dup {
				return nil, fmt.Errorf("%w: %q declared in steps %d and %d", ErrDuplicateField, f.Name, owner, i)
			}
			w.fieldStep[f.Name] = i
			w.draft[f.Name] = ""
		}
		w.steps[i] = Step{Name: step.Name, Fields: fields}
	}

	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Advance moves to the next step when the current step validates. On
// failure the step is unchanged and ValidationErrors holds exactly the
// failing fields of the current step.
func (w *Wizard) Advance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() || w.current >= len(w.steps)-1 {
		return false
	}

	w.errs = w.validateStep(w.current)
	if len(w.errs) > 0 {
		w.logger.Debug("advance blocked", map[string]interface{}{
			"step":        w.steps[w.current].Name,
			"errorFields": len(w.errs),
		})
		return false
	}

	w.current++
	w.logger.Debug("step advanced", map[string]interface{}{"step": w.steps[w.current].Name})
	return true
}

// Retreat moves back one step. Entered values are kept and nothing is
// validated; errors shown for the step being left are dropped.
func (w *Wizard) Retreat() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() || w.current == 0 {
		return false
	}
	w.current--
	w.errs = make(map[string]string)
	w.logger.Debug("step retreated", map[string]interface{}{"step": w.steps[w.current].Name})
	return true
}

// SetField writes a value only when step is the active step and owns the
// field. Any error for the field is cleared until the next forward move.
func (w *Wizard) SetField(step int, name, value string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() || step != w.current {
		return false
	}
	if owner, ok := w.fieldStep[name]; !ok || owner != step {
		return false
	}
	w.draft[name] = value
	delete(w.errs, name)
	return true
}

// Submit validates the final step, assembles the record and calls the
// Submitter. A failure keeps the draft and step for a retry and is
// reported through LastSubmissionError. A second call while one is in
// flight returns ErrSubmitInFlight without reaching the Submitter.
func (w *Wizard) Submit(ctx context.Context, owner models.User) (*models.SavedRecord, error) {
	w.mu.Lock()
	switch {
	case w.status != StatusEditing:
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: wizard is %s", ErrNotEditing, w.status)
	case w.submitting:
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	case w.current != len(w.steps)-1:
		w.mu.Unlock()
		return nil, ErrNotFinalStep
	}

	w.errs = w.validateStep(w.current)
	if len(w.errs) > 0 {
		n := len(w.errs)
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: %d fields", ErrValidationFailed, n)
	}

	record := w.assemble(w.draft.clone())
	w.submitting = true
	w.mu.Unlock()

	saved, err := w.callSubmitter(ctx, owner, record)
	if err == nil && saved == nil {
		err = apperrors.NewPersistenceError("storage returned no record", nil)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if w.status == StatusCancelled {
		w.logger.Info("submission outcome dropped after cancel", map[string]interface{}{"failed": err != nil})
		return nil, ErrCancelled
	}

	if err != nil {
		w.lastSubmissionError = submissionMessage(err)
		w.logger.Warn("submission failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	w.lastSubmissionError = ""
	w.saved = saved
	w.status = StatusSubmitted
	w.draft = make(Draft)
	w.logger.Info("registration submitted", map[string]interface{}{
		"recordId": saved.ID,
		"created":  saved.Created,
	})
	return saved, nil
}

// callSubmitter runs the Submitter without holding the lock. A panic clears
// the in-flight flag before it propagates so the wizard stays usable.
func (w *Wizard) callSubmitter(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error) {
	defer func() {
		if r := recover(); r != nil {
			w.mu.Lock()
			w.submitting = false
			w.mu.Unlock()
			panic(r)
		}
	}()
	return w.submitter.CreateOrUpdateBusinessRecord(ctx, owner, record)
}

// Cancel discards the draft. An outcome of an in-flight submission that
// arrives afterwards is dropped.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != StatusEditing {
		return
	}
	w.status = StatusCancelled
	w.draft = make(Draft)
	w.errs = make(map[string]string)
	w.lastSubmissionError = ""
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := make(map[string]string, len(w.errs))
	for k, v := range w.errs {
		errs[k] = v
	}
	return State{
		CurrentStep:         w.current,
		TotalSteps:          len(w.steps),
		StepName:            w.steps[w.current].Name,
		Status:              w.status,
		Draft:               w.draft.clone(),
		ValidationErrors:    errs,
		LastSubmissionError: w.lastSubmissionError,
		Submitting:          w.submitting,
		SavedRecord:         w.saved,
	}
}

// Steps returns the step layout, for rendering the active step's inputs.
func (w *Wizard) Steps() []Step {
	out := make([]Step, len(w.steps))
	for i, s := range w.steps {
		out[i] = Step{Name: s.Name, Fields: append([]Field(nil), s.Fields...)}
	}
	return out
}

// editable reports whether draft edits and navigation are accepted. Both are
// refused while a submission is in flight so the sent record stays current.
func (w *Wizard) editable() bool {
	return w.status == StatusEditing && !w.submitting
}

func (w *Wizard) validateStep(i int) map[string]string {
	errs := make(map[string]string)
	for _, f := range w.steps[i].Fields {
		if msg := validateField(f, w.draft[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

func validateField(f Field, value string) string {
	if validation.IsBlank(value) {
		if f.Required {
			return fmt.Sprintf("%s is required", labelOf(f))
		}
		return ""
	}
	for _, check := range f.Validators {
		if msg := check(value); msg != "" {
			return msg
		}
	}
	return ""
}

func labelOf(f Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func submissionMessage(err error) string {
	var persistErr *apperrors.PersistenceError
	if errors.As(err, &persistErr) {
		return persistErr.Message
	}
	return err.Error()
}
