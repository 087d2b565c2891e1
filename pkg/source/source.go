package source

import (
	"context"

	"dailybrief/pkg/domain"
)

// Adapter fetches raw content for a request descriptor.
// Implementations perform exactly one fresh fetch per call: no retries,
// no caching.
type Adapter interface {
	Fetch(ctx context.Context, req domain.RequestDescriptor) (*domain.RawContent, error)
}
