// =============================================================================
// Bill Analyzer - Paperless-ngx Upload
// =============================================================================
//
// External collaborator: archives the source PDF in a Paperless-ngx
// instance after its data landed in the ledger. Upload failures are
// reported but never affect ledger processing.
//
// The client speaks the documented consume endpoint
// (POST /api/documents/post_document/) with token authentication. Built on
// net/http and mime/multipart from the standard library.
//
// =============================================================================

package paperless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juliweber/bill-analyzer/internal/bill"
)

// Client uploads documents to one Paperless-ngx instance.
type Client struct {
	baseURL      string
	token        string
	totalFieldID int
	httpClient   *http.Client
}

// New creates a Client for the instance at baseURL.
func New(baseURL, token string, totalFieldID int) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		totalFieldID: totalFieldID,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload archives the PDF at path with metadata taken from the bill.
// It returns the consume task UUID reported by Paperless.
func (c *Client) Upload(ctx context.Context, path string, b *bill.Bill) (string, error) {
	pdf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	title := b.Store
	if title == "" {
		title = "Bill"
	}
	if err := form.WriteField("title", title); err != nil {
		return "", err
	}

	// Paperless requires ISO 8601 for the created timestamp.
	if created, err := bill.ParseDate(b.Date); err == nil {
		if err := form.WriteField("created", created.Format("2006-01-02T00:00:00Z")); err != nil {
			return "", err
		}
	}

	if total, err := b.Total.Value(); err == nil {
		field := fmt.Sprintf(`{"field": %d, "value": %.2f}`, c.totalFieldID, total)
		if err := form.WriteField("custom_fields", field); err != nil {
			return "", err
		}
	}

	part, err := form.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(pdf); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	url := c.baseURL + "/api/documents/post_document/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload to paperless: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("paperless returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	// The endpoint answers with a quoted task UUID.
	return strings.Trim(strings.TrimSpace(string(respBody)), "\""), nil
}
