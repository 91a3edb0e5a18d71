package blob

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReportPhotoPath(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	require.Equal(t, "reports/abc/abc_1718000000123.jpg", ReportPhotoPath("abc", at))
}

func TestDownloadURLEscapesPath(t *testing.T) {
	u := downloadURL("demo.appspot.com", "reports/abc/abc_1.jpg", "tok")
	require.Equal(t, "https://firebasestorage.googleapis.com/v0/b/demo.appspot.com/o/reports%2Fabc%2Fabc_1.jpg?alt=media&token=tok", u)
}

func multipartHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["photo"][0]
}

func TestReadPhoto(t *testing.T) {
	header := multipartHeader(t, "pothole.JPG", "image/jpeg", []byte("jpegbytes"))

	photo, err := ReadPhoto(header)
	require.NoError(t, err)
	require.Equal(t, []byte("jpegbytes"), photo.Data)
	require.Equal(t, "image/jpeg", photo.ContentType)
	require.Equal(t, "pothole.JPG", photo.Filename)
}

func TestReadPhotoRejectsExtension(t *testing.T) {
	header := multipartHeader(t, "notes.pdf", "application/pdf", []byte("%PDF"))

	_, err := ReadPhoto(header)
	require.Error(t, err)
}

func TestReadPhotoRejectsEmpty(t *testing.T) {
	header := multipartHeader(t, "empty.png", "image/png", nil)

	_, err := ReadPhoto(header)
	require.ErrorIs(t, err, ErrEmptyPhoto)
}

var _ Store = (*FirebaseStore)(nil)
