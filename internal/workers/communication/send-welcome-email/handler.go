// internal/workers/communication/send-welcome-email/handler.go
package sendwelcomeemail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"business-directory/internal/common/camunda"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/listing"
	"business-directory/internal/models"
	"business-directory/internal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-welcome-email"
)

type RecordReader interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.SavedRecord, error)
}

type Mailer interface {
	SendWelcome(ctx context.Context, saved *models.SavedRecord) (string, error)
}

type Handler struct {
	config       *Config
	records      RecordReader
	mailer       Mailer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, records RecordReader, mailer Mailer, log logger.Logger) *Handler {
	log = logger.ForComponent(log, "worker").WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		records:      records,
		mailer:       mailer,
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

// execute completes with Sent=false when email is switched off or the owner
// gave no usable address; the process carries on either way.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	saved, err := h.records.GetByOwner(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, listing.ErrListingNotFound) {
			return nil, apperrors.NewListingNotFoundError(input.ListingID)
		}
		return nil, apperrors.NewExternalServiceError("postgres", err)
	}
	if input.ListingID != "" && saved.ID != input.ListingID {
		return nil, apperrors.NewListingNotFoundError(input.ListingID)
	}

	messageID, err := h.mailer.SendWelcome(ctx, saved)
	switch {
	case errors.Is(err, notify.ErrDisabled):
		return &Output{Sent: false, Reason: "email disabled"}, nil
	case errors.Is(err, notify.ErrInvalidRecipient):
		h.logger.Warn("welcome email skipped", map[string]interface{}{"listingId": saved.ID, "error": err.Error()})
		return &Output{Sent: false, Reason: "invalid recipient"}, nil
	case err != nil:
		return nil, err
	}
	return &Output{Sent: true, MessageID: messageID}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
