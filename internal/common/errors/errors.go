// Package errors provides standardized error handling for the notification
// dispatch workers and their BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEventParseFailed      ErrorCode = "EVENT_PARSE_FAILED"
	ErrCodeEventValidationFailed ErrorCode = "EVENT_VALIDATION_FAILED"
	ErrCodeUnknownEventKind      ErrorCode = "UNKNOWN_EVENT_KIND"

	ErrCodeTemplateStoreUnavailable ErrorCode = "TEMPLATE_STORE_UNAVAILABLE"
	ErrCodeSettingsStoreUnavailable ErrorCode = "SETTINGS_STORE_UNAVAILABLE"

	ErrCodeTransportNotConfigured ErrorCode = "TRANSPORT_NOT_CONFIGURED"
	ErrCodeTransportSendFailed    ErrorCode = "TRANSPORT_SEND_FAILED"
	ErrCodeInvalidDestination     ErrorCode = "INVALID_DESTINATION"

	ErrCodeBannerUnavailable      ErrorCode = "BANNER_UNAVAILABLE"
	ErrCodeDeliveryLogWriteFailed ErrorCode = "DELIVERY_LOG_WRITE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
)

// StandardError represents a structured application error.
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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// ConvertToBPMNError maps a StandardError onto the BPMN error envelope.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
	}
}

// GetRetryCount returns how many engine-level retries an error code warrants.
// Failed sends are terminal and never retried; only infrastructure errors
// that prevent an event from being processed at all are retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed:
		return 3
	default:
		return 0
	}
}

// GetErrorCategory buckets error codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeEventParseFailed, ErrCodeEventValidationFailed, ErrCodeUnknownEventKind:
		return "event"
	case ErrCodeTemplateStoreUnavailable, ErrCodeSettingsStoreUnavailable,
		ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed,
		ErrCodeDeliveryLogWriteFailed:
		return "store"
	case ErrCodeTransportNotConfigured, ErrCodeTransportSendFailed, ErrCodeInvalidDestination:
		return "transport"
	case ErrCodeBannerUnavailable:
		return "banner"
	default:
		return "internal"
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewEventParseFailedError creates a non-retryable payload error.
func NewEventParseFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventParseFailed,
		Message:   "Failed to parse notification event payload",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventValidationFailedError creates a non-retryable validation error.
func NewEventValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventValidationFailed,
		Message:   "Notification event failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownEventKindError creates a non-retryable error for an
// unrecognized status transition or event kind.
func NewUnknownEventKindError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownEventKind,
		Message:   "Unknown notification event kind",
		Details:   fmt.Sprintf("eventKind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportNotConfiguredError reports missing transport credentials.
// This never reaches BPMN; it lands in a failed send outcome.
func NewTransportNotConfiguredError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportNotConfigured,
		Message:   fmt.Sprintf("%s transport not configured", channel),
		Details:   "transport credentials missing",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDestinationError reports a destination rejected before any
// provider call.
func NewInvalidDestinationError(channel, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDestination,
		Message:   reason,
		Details:   fmt.Sprintf("channel: %s, rejected before provider call", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
