// Package errors provides standardized error handling for the dialog assistant and its job worker.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDataUnavailable       ErrorCode = "DATA_UNAVAILABLE"
	ErrCodeDataKeyMissing        ErrorCode = "DATA_KEY_MISSING"
	ErrCodeInterpreterFailed     ErrorCode = "INTERPRETER_FAILED"
	ErrCodeInterpreterTimeout    ErrorCode = "INTERPRETER_TIMEOUT"
	ErrCodeInvalidInterpretation ErrorCode = "INVALID_INTERPRETATION"
	ErrCodeSessionStoreFailed    ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeOutputSinkFailed      ErrorCode = "OUTPUT_SINK_FAILED"
	ErrCodeInvalidJobInput       ErrorCode = "INVALID_JOB_INPUT"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
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

// ==========================
// 3. Error Constructors
// ==========================

// NewDataUnavailableError reports a directory or schedule source that could not be queried.
func NewDataUnavailableError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataUnavailable,
		Message:   fmt.Sprintf("Data source '%s' unavailable", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDataKeyMissingError reports a source that answered but has no value for key.
func NewDataKeyMissingError(source, key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataKeyMissing,
		Message:   fmt.Sprintf("Data source '%s' has no value", source),
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInterpreterFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInterpreterFailed,
		Message:   "Interpreter API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInterpreterTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInterpreterTimeout,
		Message:   "Interpreter API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInterpretationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInterpretation,
		Message:   "Interpreter response failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   fmt.Sprintf("Session store %s failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewOutputSinkFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutputSinkFailed,
		Message:   fmt.Sprintf("Output sink '%s' failed", sink),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidJobInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobInput,
		Message:   "Job input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry & Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeDataUnavailable:       "DATA_UNAVAILABLE",
	ErrCodeDataKeyMissing:        "DATA_KEY_MISSING",
	ErrCodeInterpreterFailed:     "INTERPRETER_FAILED",
	ErrCodeInterpreterTimeout:    "INTERPRETER_TIMEOUT",
	ErrCodeInvalidInterpretation: "INVALID_INTERPRETATION",
	ErrCodeSessionStoreFailed:    "SESSION_STORE_FAILED",
	ErrCodeOutputSinkFailed:      "OUTPUT_SINK_FAILED",
	ErrCodeInvalidJobInput:       "INVALID_JOB_INPUT",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataUnavailable,
		ErrCodeInterpreterFailed,
		ErrCodeSessionStoreFailed:
		return 3

	case ErrCodeInterpreterTimeout:
		return 2

	default:
		return 0 // business errors: no retry
	}
}

func IsRetryable(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DATA"):
		return "DATASOURCE"
	case strings.Contains(codeStr, "INTERPRET"):
		return "NLU"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "SINK"):
		return "OUTPUT"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// AsStandardError unwraps err to a *StandardError when one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}
