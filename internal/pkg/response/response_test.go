package response

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessAndErrorResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, map[string]string{"foo": "bar"})
	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	require.Equal(t, "success", body["status"])
	require.Contains(t, body, "data")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, 400, "bad request", "BAD_REQ")
	require.Equal(t, 400, w.Code)
	bodyErr := decode(t, w)
	require.Equal(t, "bad request", bodyErr["error"])
	require.Equal(t, "BAD_REQ", bodyErr["code"])
}

func TestListResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	List(c, []map[string]any{{"id": 1}, {"id": 2}}, 2)

	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	require.Equal(t, float64(2), body["total"])
}

func TestFromErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Validation("photo is required"), 422, "VALIDATION_FAILED"},
		{apperrors.ErrPermissionDenied, 403, "PERMISSION_DENIED"},
		{apperrors.Wrap(apperrors.OpConfirm, apperrors.ErrNotFound), 404, "REPORT_NOT_FOUND"},
		{apperrors.Wrap(apperrors.OpResolve, apperrors.ErrAlreadyResolved), 409, "ALREADY_RESOLVED"},
		{apperrors.Wrap(apperrors.OpUpload, apperrors.ErrPhotoAttached), 409, "PHOTO_ALREADY_ATTACHED"},
		{apperrors.Wrap(apperrors.OpConfirm, fmt.Errorf("%w: socket closed", apperrors.ErrStore)), 500, "CONFIRM_FAILED"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		FromError(c, tc.err, "CONFIRM_FAILED")
		require.Equal(t, tc.status, w.Code, tc.err.Error())
		require.Equal(t, tc.code, decode(t, w)["code"])
	}
}

func TestFromErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, apperrors.Wrap(apperrors.OpCreate, fmt.Errorf("%w: dial tcp 10.0.0.3", apperrors.ErrStore)), "CREATE_FAILED")

	body := decode(t, w)
	require.Equal(t, "could not create the report", body["error"])
	require.NotContains(t, w.Body.String(), "10.0.0.3")
}
