package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DocumentFetcher retrieves an invoice document from its source URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// maxDocumentBytes caps a fetched document at 20MB, the upload ceiling of the
// storage side.
const maxDocumentBytes = 20 * 1024 * 1024

// HTTPFetcher fetches documents over plain HTTP. Invoice download links on the
// retail site are session-less signed URLs, so no credentials are attached.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch implements DocumentFetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	const op = "Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: downloading document: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: downloading document: status %d", op, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: reading document body: %w", op, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("%s: document exceeds %d bytes", op, maxDocumentBytes)
	}

	return data, nil
}
