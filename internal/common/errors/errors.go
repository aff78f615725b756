package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode identifies a failure class across the bot.
type ErrorCode string

const (
	ErrCodeCatalogQueryFailed   ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogSeedFailed    ErrorCode = "CATALOG_SEED_FAILED"
	ErrCodeSessionStoreFailed   ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeNoActiveScenario     ErrorCode = "NO_ACTIVE_SCENARIO"
	ErrCodeUnknownScenario      ErrorCode = "UNKNOWN_SCENARIO"
	ErrCodeTemplateRenderFailed ErrorCode = "TEMPLATE_RENDER_FAILED"
	ErrCodeOrderSinkFailed      ErrorCode = "ORDER_SINK_FAILED"
	ErrCodeEventTimeout         ErrorCode = "EVENT_TIMEOUT"
	ErrCodeEventPanic           ErrorCode = "EVENT_PANIC"
	ErrCodeLoopClosed           ErrorCode = "LOOP_CLOSED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// retryable lists the codes caused by infrastructure rather than by the conversation.
var retryable = map[ErrorCode]bool{
	ErrCodeCatalogQueryFailed: true,
	ErrCodeSessionStoreFailed: true,
	ErrCodeOrderSinkFailed:    true,
	ErrCodeEventTimeout:       true,
}

var messages = map[ErrorCode]string{
	ErrCodeCatalogQueryFailed:   "Flight catalog query failed",
	ErrCodeCatalogSeedFailed:    "Flight catalog seeding failed",
	ErrCodeSessionStoreFailed:   "Session store operation failed",
	ErrCodeNoActiveScenario:     "User has no active scenario",
	ErrCodeUnknownScenario:      "Scenario is not defined",
	ErrCodeTemplateRenderFailed: "Step template could not be rendered",
	ErrCodeOrderSinkFailed:      "Completed order could not be recorded",
	ErrCodeEventTimeout:         "Event processing timed out",
	ErrCodeEventPanic:           "Event processing panicked",
	ErrCodeLoopClosed:           "Event loop is not running",
	ErrCodeInternal:             "Unexpected error",
}

// StandardError is the normalized failure returned for an event.
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

// New builds a StandardError for a known code.
func New(code ErrorCode, details string) *StandardError {
	msg, ok := messages[code]
	if !ok {
		msg = messages[ErrCodeInternal]
	}
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: retryable[code],
		Timestamp: time.Now().UTC(),
	}
}

// Normalize turns any error into a StandardError. Packages declare their
// sentinel errors with the code as the message (errors.New("CATALOG_QUERY_FAILED")),
// so the first error in the chain whose text is a known code decides the code.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	code := ErrCodeInternal
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if _, known := messages[ErrorCode(e.Error())]; known {
			code = ErrorCode(e.Error())
			break
		}
	}
	return New(code, err.Error())
}

// IsRetryableErrorCode reports whether repeating the same input may succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	return retryable[code]
}
