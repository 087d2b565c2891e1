package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"dailybrief/pkg/domain"
	"dailybrief/pkg/httpclient"
)

// PageSource fetches the daily-snippet page over HTTP.
// The URL template carries a single %d placeholder for the numeric month,
// e.g. "https://www.santodelgiorno.it/?mese=%d".
type PageSource struct {
	urlTemplate string
	client      *httpclient.HTTPClient
}

// NewPageSource creates a page source for the given month-templated URL
func NewPageSource(urlTemplate string, client *httpclient.HTTPClient) *PageSource {
	if client == nil {
		client = httpclient.NewClient(httpclient.BrowserClient)
	}
	return &PageSource{
		urlTemplate: urlTemplate,
		client:      client,
	}
}

// Fetch issues a single GET against the month-templated URL.
// Transport errors and non-2xx responses are classified as transient fetch
// errors and propagated; nothing is swallowed here.
func (s *PageSource) Fetch(ctx context.Context, req domain.RequestDescriptor) (*domain.RawContent, error) {
	month, err := strconv.Atoi(req.Parameters[domain.ParamMonth])
	if err != nil {
		return nil, fmt.Errorf("invalid month parameter %q: %w", req.Parameters[domain.ParamMonth], err)
	}

	pageURL := fmt.Sprintf(s.urlTemplate, month)

	resp, err := s.client.Get(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{Kind: Transient, SourceID: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			Kind:     Transient,
			SourceID: pageURL,
			Err:      fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: Transient, SourceID: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return &domain.RawContent{
		Body:      body,
		SourceID:  pageURL,
		FetchedAt: time.Now(),
	}, nil
}
