// Package errors provides the standardized error types shared by the
// directory service: coded StandardErrors, their BPMN mapping for Zeebe
// jobs, and the PersistenceError returned by record storage.
package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeCatalogIntegrity ErrorCode = "CATALOG_INTEGRITY"
	ErrCodeUnknownPlan      ErrorCode = "UNKNOWN_PLAN"

	ErrCodeRecordValidationFailed ErrorCode = "RECORD_VALIDATION_FAILED"
	ErrCodePersistenceFailed      ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeListingNotFound        ErrorCode = "LISTING_NOT_FOUND"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeLeadCaptureDisabled ErrorCode = "LEAD_CAPTURE_DISABLED"
	ErrCodeLeadInvalid         ErrorCode = "LEAD_INVALID"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAuthenticationFailed   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeExternalService        ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// PersistenceError is the single failure shape of the record-storage
// collaborator. Network, storage-side validation and conflicts all map here.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence: %s: %v", e.Message, e.Cause)
	}
	return "persistence: " + e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func NewPersistenceError(message string, cause error) *PersistenceError {
	return &PersistenceError{Message: message, Cause: cause}
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newStandard(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewCatalogIntegrityError(details string) *StandardError {
	return newStandard(ErrCodeCatalogIntegrity, "Plan catalog failed integrity check", details, false)
}

func NewRecordValidationFailedError(details string) *StandardError {
	return newStandard(ErrCodeRecordValidationFailed, "Business record validation failed", details, false)
}

func NewPersistenceFailedError(err error) *StandardError {
	return newStandard(ErrCodePersistenceFailed, "Business record could not be saved", err.Error(), true)
}

func NewListingNotFoundError(listingID string) *StandardError {
	return newStandard(ErrCodeListingNotFound, "Listing not found", fmt.Sprintf("listingId: %s", listingID), false)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newStandard(ErrCodeSearchQueryFailed, "Listing search failed", err.Error(), true)
}

func NewSearchTimeoutError() *StandardError {
	return newStandard(ErrCodeSearchTimeout, "Listing search timeout", "search exceeded timeout", true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newStandard(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewAuthenticationError(details string) *StandardError {
	return newStandard(ErrCodeAuthenticationFailed, "Authentication failed", details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newStandard(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePersistenceFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeSearchTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "PLAN"):
		return "ENTITLEMENT"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "LISTING"):
		return "STORAGE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "LEAD"):
		return "LEADS"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
