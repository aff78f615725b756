package errors

// Logger is the subset of logger.Logger the handler uses.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler logs failed chat events in one consistent shape.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleEventError normalizes and logs err, returning the normalized form.
func (h *ErrorHandler) HandleEventError(userID string, err error) *StandardError {
	stdErr := Normalize(err)
	if stdErr == nil {
		return nil
	}

	h.logger.Error("event failed", map[string]interface{}{
		"userId":       userID,
		"errorCode":    stdErr.Code,
		"errorMessage": stdErr.Message,
		"errorDetails": stdErr.Details,
		"retryable":    stdErr.Retryable,
	})
	return stdErr
}
