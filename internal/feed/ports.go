package feed

import (
	"context"

	"clientledger/internal/core"
)

// JobSource is the inbound port for the raw job feed. Implementations
// return a fresh, fully-replaced snapshot on every call; callers never
// observe a partially-updated collection.
type JobSource interface {
	// ListJobs returns every job for the given user, in feed order.
	// An empty user is valid and yields whatever the backend holds.
	ListJobs(ctx context.Context, userID string) ([]core.Job, error)
}
