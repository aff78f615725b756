package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeOrderSinkFailed, "postgres: connection refused")

	assert.Equal(t, ErrCodeOrderSinkFailed, err.Code)
	assert.Equal(t, "Completed order could not be recorded", err.Message)
	assert.Equal(t, "postgres: connection refused", err.Details)
	assert.True(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, "StandardError[ORDER_SINK_FAILED]: Completed order could not be recorded", err.Error())
}

func TestNew_UnknownCodeKeepsCode(t *testing.T) {
	err := New(ErrorCode("SOMETHING_NEW"), "")
	assert.Equal(t, ErrorCode("SOMETHING_NEW"), err.Code)
	assert.Equal(t, messages[ErrCodeInternal], err.Message)
	assert.False(t, err.Retryable)
}

func TestNormalize(t *testing.T) {
	catalogErr := stderrors.New("CATALOG_QUERY_FAILED")
	storeErr := stderrors.New("SESSION_STORE_FAILED")

	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{name: "sentinel", err: catalogErr, code: ErrCodeCatalogQueryFailed, retryable: true},
		{name: "wrapped sentinel", err: fmt.Errorf("date step: %w", fmt.Errorf("%w: get tickets: timeout", catalogErr)), code: ErrCodeCatalogQueryFailed, retryable: true},
		{name: "store", err: fmt.Errorf("save state: %w", storeErr), code: ErrCodeSessionStoreFailed, retryable: true},
		{name: "template", err: fmt.Errorf("step 3: %w", stderrors.New("TEMPLATE_RENDER_FAILED")), code: ErrCodeTemplateRenderFailed},
		{name: "unknown", err: stderrors.New("index out of range"), code: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.retryable, got.Retryable)
			assert.Equal(t, tt.err.Error(), got.Details)
		})
	}
}

func TestNormalize_PassesStandardErrorThrough(t *testing.T) {
	orig := New(ErrCodeEventPanic, "nil pointer")

	assert.Same(t, orig, Normalize(orig))
	assert.Same(t, orig, Normalize(fmt.Errorf("loop: %w", orig)))
	assert.Nil(t, Normalize(nil))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeEventTimeout))
	assert.True(t, IsRetryableErrorCode(ErrCodeSessionStoreFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeNoActiveScenario))
	assert.False(t, IsRetryableErrorCode(ErrCodeEventPanic))
}

type recordingLogger struct {
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.msg, l.fields = msg, fields
}

func TestErrorHandler_HandleEventError(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	got := h.HandleEventError("42", fmt.Errorf("wrap: %w", stderrors.New("ORDER_SINK_FAILED")))
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeOrderSinkFailed, got.Code)

	assert.Equal(t, "event failed", log.msg)
	assert.Equal(t, "42", log.fields["userId"])
	assert.Equal(t, ErrCodeOrderSinkFailed, log.fields["errorCode"])
	assert.Equal(t, true, log.fields["retryable"])

	assert.Nil(t, h.HandleEventError("42", nil))
}
