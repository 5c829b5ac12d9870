package notion

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamar/intake/types"
)

func TestUploadSuccess(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)
		content, _ := io.ReadAll(file)
		assert.Equal(t, "hello attachment", string(content))

		io.WriteString(w, `{"id":"f-42","filename":"notes.txt"}`)
	}))
	defer srv.Close()

	uploader := NewUploader(srv.URL, "tok")
	att := uploader.Upload(context.Background(), "notes.txt", "text/plain",
		strings.NewReader("hello attachment"))

	assert.Equal(t, types.AttachmentSuccess, att.Status)
	assert.Empty(t, att.Error)
	assert.Equal(t, "notes.txt", att.Name)
	assert.Equal(t, int64(len("hello attachment")), att.Size)
	assert.Equal(t, srv.URL+"/files/f-42/notes.txt", att.RemoteURL)
	assert.NotEmpty(t, att.ID)
}

func TestUploadFailureIsRecordedPerFile(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	uploader := NewUploader(srv.URL, "tok")
	att := uploader.Upload(context.Background(), "big.bin", "application/octet-stream",
		strings.NewReader("xxxx"))

	assert.Equal(t, types.AttachmentError, att.Status)
	assert.Contains(t, att.Error, "413")
	assert.Equal(t, "big.bin", att.Name)
	assert.Empty(t, att.RemoteURL)
}

func TestUploadUnconfigured(t *testing.T) {
	t.Parallel()
	uploader := NewUploader("", "")
	att := uploader.Upload(context.Background(), "a.txt", "text/plain", strings.NewReader("x"))
	assert.Equal(t, types.AttachmentError, att.Status)
	assert.Contains(t, att.Error, "not configured")
}
