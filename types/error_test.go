package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("connection refused")
	err := NewError(ErrTransport, "request failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithEndpoint("library/http@localhost:8080")

	assert.Equal(t, ErrTransport, GetErrorCode(err))
	assert.True(t, errors.Is(err, root))
	assert.Equal(t, "[TRANSPORT] library/http@localhost:8080: request failed: connection refused", err.Error())
	assert.Equal(t, 502, err.HTTPStatus)
}

func TestError_WithoutEndpointOrCause(t *testing.T) {
	t.Parallel()

	err := Errorf(ErrBadValue, "invalid value %q", "maybe")
	assert.Equal(t, `[BAD_VALUE] invalid value "maybe"`, err.Error())
}

func TestGetErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrNotImplemented, "status over udp")
	wrapped := fmt.Errorf("dispatch: %w", inner)

	assert.Equal(t, ErrNotImplemented, GetErrorCode(wrapped))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, e)
}

func TestIsErrorCode_Joined(t *testing.T) {
	t.Parallel()

	joined := errors.Join(
		NewError(ErrTransport, "udp failed"),
		fmt.Errorf("http: %w", NewError(ErrInvalidRequest, "too large")),
	)

	assert.True(t, IsErrorCode(joined, ErrTransport))
	assert.True(t, IsErrorCode(joined, ErrInvalidRequest))
	assert.False(t, IsErrorCode(joined, ErrBadValue))
	assert.False(t, IsErrorCode(nil, ErrBadValue))
}
