package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOperationErrorUnwrapsToKind(t *testing.T) {
	cause := fmt.Errorf("%w: mongo timeout", ErrStore)
	err := Wrap(OpConfirm, cause)

	require.True(t, errors.Is(err, ErrStore))
	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, OpConfirm, opErr.Op)
	require.Equal(t, "could not confirm the report", opErr.Message())
	require.NotContains(t, opErr.Message(), "mongo")
}

func TestMessagesDifferPerOperation(t *testing.T) {
	seen := map[string]bool{}
	for _, op := range []Op{OpCreate, OpConfirm, OpResolve, OpUpload} {
		msg := (&OperationError{Op: op}).Message()
		require.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(OpCreate, nil))
}

func TestUserMessageFallback(t *testing.T) {
	require.Equal(t, "fallback", UserMessage(errors.New("raw"), "fallback"))
	require.Equal(t, "could not resolve the report", UserMessage(Wrap(OpResolve, ErrStore), "fallback"))
}

func TestValidation(t *testing.T) {
	err := Validation("category %q is not supported", "x")
	require.True(t, errors.Is(err, ErrValidation))
	require.Contains(t, err.Error(), `category "x" is not supported`)
}

func TestStoreFailureKeepsBothKinds(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreFailure("insert report", cause)

	require.True(t, errors.Is(err, ErrStore))
	require.True(t, errors.Is(err, cause))
	require.Equal(t, "insert report: backing store failure: connection reset", err.Error())
}
