package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/anupamar/intake/types"
)

// Uploader pushes attachment files to the file-store collaborator. Files go
// up one at a time in selection order; a failure on one file is recorded on
// that attachment and does not touch the others.
type Uploader struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type UploaderOption func(*Uploader)

func WithUploaderHTTPClient(httpClient *http.Client) UploaderOption {
	return func(u *Uploader) { u.httpClient = httpClient }
}

func NewUploader(baseURL, token string, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload sends one file and returns the attachment in its terminal state.
// The returned attachment always carries an id and the original name; on
// failure Status is AttachmentError and Error holds the reason.
func (u *Uploader) Upload(ctx context.Context, name, mimeType string, content io.Reader) types.Attachment {
	att := types.Attachment{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Status:   types.AttachmentUploading,
	}

	remoteURL, size, err := u.send(ctx, name, mimeType, content)
	if err != nil {
		slog.Warn("attachment upload failed", "name", name, "err", err)
		att.Status = types.AttachmentError
		att.Error = err.Error()
		return att
	}
	att.Status = types.AttachmentSuccess
	att.RemoteURL = remoteURL
	att.Size = size
	return att
}

func (u *Uploader) send(ctx context.Context, name, mimeType string, content io.Reader) (string, int64, error) {
	if u.baseURL == "" {
		return "", 0, fmt.Errorf("file store not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", 0, fmt.Errorf("build form: %w", err)
	}
	size, err := io.Copy(part, content)
	if err != nil {
		return "", 0, fmt.Errorf("read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/files", &body)
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", 0, fmt.Errorf("upload returned %d: %s", resp.StatusCode, string(raw))
	}

	var uploaded struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	}
	if err := sonic.Unmarshal(raw, &uploaded); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if uploaded.Filename == "" {
		uploaded.Filename = name
	}
	// The retrieval URL is constructed deterministically from the returned
	// identifier and filename.
	return fmt.Sprintf("%s/files/%s/%s", u.baseURL, uploaded.ID, uploaded.Filename), size, nil
}
