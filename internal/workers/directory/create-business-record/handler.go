// internal/workers/directory/create-business-record/handler.go
package createbusinessrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"business-directory/internal/common/camunda"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/models"
	"business-directory/internal/wizard"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-business-record"
)

// Handler runs the registration form's checks against imported fields, then
// saves through the same collaborator the wizard uses.
type Handler struct {
	config       *Config
	submitter    wizard.Submitter
	steps        []wizard.Step
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, submitter wizard.Submitter, steps []wizard.Step, log logger.Logger) *Handler {
	if len(steps) == 0 {
		steps = wizard.DefaultRegistrationSteps()
	}
	log = logger.ForComponent(log, "worker").WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submitter:    submitter,
		steps:        steps,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewRecordValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// execute drives a throwaway wizard through every step so imported records
// pass exactly the checks a person filling the form would.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, apperrors.NewRecordValidationFailedError("ownerId is required")
	}

	w, err := wizard.New(h.steps, h.submitter, wizard.WithLogger(h.logger))
	if err != nil {
		return nil, apperrors.NewRecordValidationFailedError(err.Error())
	}

	steps := w.Steps()
	for i, step := range steps {
		for _, f := range step.Fields {
			w.SetField(i, f.Name, input.Fields[f.Name])
		}
		if i < len(steps)-1 && !w.Advance() {
			return nil, validationError(step.Name, w.State().ValidationErrors)
		}
	}

	owner := models.User{ID: input.OwnerID, Email: input.OwnerEmail, Name: input.OwnerName}
	saved, err := w.Submit(ctx, owner)
	if err != nil {
		if errs := w.State().ValidationErrors; len(errs) > 0 {
			return nil, validationError(steps[len(steps)-1].Name, errs)
		}
		return nil, err
	}

	h.logger.Info("business record saved", map[string]interface{}{
		"listingId": saved.ID,
		"created":   saved.Created,
	})
	return &Output{ListingID: saved.ID, Created: saved.Created, Plan: saved.Plan}, nil
}

func validationError(step string, errs map[string]string) error {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + errs[name]
	}
	return apperrors.NewRecordValidationFailedError(fmt.Sprintf("step %s: %s", step, strings.Join(parts, "; ")))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
