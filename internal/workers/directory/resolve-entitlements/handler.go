// internal/workers/directory/resolve-entitlements/handler.go
package resolveentitlements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"business-directory/internal/common/camunda"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/metrics"
	"business-directory/internal/entitlement"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "resolve-entitlements"
)

var ErrInvalidInput = errors.New("INVALID_INPUT")

type Handler struct {
	config       *Config
	resolver     *entitlement.Resolver
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver *entitlement.Resolver, log logger.Logger) *Handler {
	log = logger.ForComponent(log, "worker").WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		resolver:     resolver,
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

// execute never fails for an unknown plan; it answers with no capabilities.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrInvalidInput
	}

	caps := h.resolver.CapabilitiesOf(input.Plan)
	_, known := entitlement.ParsePlan(input.Plan)
	output := &Output{
		Plan:         input.Plan,
		KnownPlan:    known,
		Capabilities: make([]string, len(caps)),
	}
	for i, c := range caps {
		output.Capabilities[i] = string(c)
	}

	if input.Capability != "" {
		output.Granted = h.resolver.HasCapability(input.Plan, entitlement.Capability(input.Capability))
		metrics.RecordEntitlementCheck(entitlement.PlanLabel(input.Plan), input.Capability, output.Granted)
	}

	if !known {
		h.logger.Warn("unknown plan resolved to no capabilities", map[string]interface{}{"plan": input.Plan})
	}
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
