package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Lookup fetches the raw itemized payload for a receipt scan code from the
// external checker service.
type Lookup interface {
	Fetch(ctx context.Context, code string) ([]byte, error)
}

// CheckerClient implements Lookup against the receipt checker HTTP API.
type CheckerClient struct {
	url    string
	token  string
	client *http.Client
}

// NewCheckerClient creates a CheckerClient for the given endpoint and API token.
func NewCheckerClient(url, token string) *CheckerClient {
	return &CheckerClient{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch posts the scan code as a multipart form and returns the raw response
// body. Any non-2xx status is an error.
func (c *CheckerClient) Fetch(ctx context.Context, code string) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("qrraw", code); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := form.WriteField("token", c.token); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	// The checker API rejects requests without an engine cookie.
	req.Header.Set("Cookie", "ENGID=1.1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling checker API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("checker API error (status %d): %s", resp.StatusCode, string(raw))
	}

	return raw, nil
}
