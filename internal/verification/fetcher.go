package verification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves a receipt document from the provider by transaction
// reference. Retrieval is the only I/O ahead of the extraction pipeline;
// retries and TLS particulars live here, never in the engine.
type Fetcher interface {
	// Fetch downloads the receipt for a reference, returning the document
	// bytes and the content type the provider declared
	Fetch(ctx context.Context, reference string) ([]byte, string, error)
}

// HTTPFetcher downloads receipts from a provider URL template in which
// "{reference}" is replaced by the transaction reference.
type HTTPFetcher struct {
	urlTemplate string
	client      *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A zero timeout defaults to 30s.
func NewHTTPFetcher(urlTemplate string, timeout time.Duration) (*HTTPFetcher, error) {
	if !strings.Contains(urlTemplate, "{reference}") {
		return nil, fmt.Errorf("url template must contain {reference}: %q", urlTemplate)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPFetcher{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Fetch downloads the receipt document for a reference
func (f *HTTPFetcher) Fetch(ctx context.Context, reference string) ([]byte, string, error) {
	url := strings.ReplaceAll(f.urlTemplate, "{reference}", reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching receipt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading receipt body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
