package reports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	require.NoError(t, translateError(nil, "confirm report r1"))

	require.ErrorIs(t, translateError(apperrors.ErrAlreadyResolved, "resolve report r1"), apperrors.ErrAlreadyResolved)
	require.ErrorIs(t, translateError(status.Error(codes.NotFound, "no document"), "confirm report r1"), apperrors.ErrNotFound)

	cause := status.Error(codes.Unavailable, "backend down")
	err := translateError(cause, "confirm report r1")
	require.ErrorIs(t, err, apperrors.ErrStore)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "confirm report r1")

	wrapped := apperrors.StoreFailure("decode report r1", errors.New("bad field"))
	require.Equal(t, wrapped, translateError(wrapped, "mark photo failed r1"))
}
