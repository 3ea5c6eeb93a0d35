// Package errors provides the standardized error taxonomy for the report
// pipeline: input errors, collaborator errors, artifact-load errors, and
// programming errors, each with a stable code used in logs and metrics.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePayloadInvalid         ErrorCode = "PAYLOAD_INVALID"
	ErrCodeDataFetchFailed        ErrorCode = "DATA_FETCH_FAILED"
	ErrCodeReportSerializeFailed  ErrorCode = "REPORT_SERIALIZE_FAILED"
	ErrCodeReportUploadFailed     ErrorCode = "REPORT_UPLOAD_FAILED"
	ErrCodeStatusWriteFailed      ErrorCode = "STATUS_WRITE_FAILED"
	ErrCodeModelArtifactUnloaded  ErrorCode = "MODEL_ARTIFACT_UNAVAILABLE"
	ErrCodeAnalysisFailed         ErrorCode = "ANALYSIS_FAILED"
	ErrCodeBrokerDeliveryFailed   ErrorCode = "BROKER_DELIVERY_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewPayloadError marks a malformed job payload. Not retryable: the same
// bytes will fail the same way on redelivery.
func NewPayloadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Malformed job payload",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewFetchError marks a failed repository read.
func NewFetchError(view string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataFetchFailed,
		Message:   fmt.Sprintf("Repository read '%s' failed", view),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSerializeError marks a report that could not be encoded.
func NewSerializeError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSerializeFailed,
		Message:   "Report serialization failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUploadError marks a failed blob-store upload.
func NewUploadError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportUploadFailed,
		Message:   fmt.Sprintf("Report upload for key '%s' failed", key),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAnalysisError marks a programming error inside the analysis engine,
// such as a zero max score slipping past the repository boundary.
func NewAnalysisError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "Analysis failed on fetched data",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf extracts the taxonomy code from an error chain, defaulting to
// ANALYSIS_FAILED for untagged errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeAnalysisFailed
}
