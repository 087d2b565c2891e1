package delivery

import (
	"context"
)

// Deliverer is the channel artifacts are handed to after the dispatch gate.
// Image paths must reside in the staging directory; implementations reject
// anything else rather than fail silently downstream.
type Deliverer interface {
	SendText(ctx context.Context, text string) error
	SendImage(ctx context.Context, path, caption string) error
}
