package store

import (
	"context"
	"time"

	"github.com/creations-works/badgeapi/internal/domain"
)

// Cache is the badge cache store boundary. All operations are best effort:
// implementations absorb store failures on reads (returning a miss) so a
// flaky cache never fails an aggregation call.
//
// Two key namespaces exist: bulk dataset entries with a paired timestamp
// (written atomically, expiring together), and short-lived per-user entries.
type Cache interface {
	// BulkPayload returns the cached dataset for a bulk source.
	BulkPayload(ctx context.Context, source string) ([]byte, bool)
	// BulkTimestamp returns when the bulk source was last refreshed.
	BulkTimestamp(ctx context.Context, source string) (time.Time, bool)
	// SetBulk writes the dataset and its timestamp as one atomic pair.
	SetBulk(ctx context.Context, source string, payload []byte, ts time.Time) error

	// UserBadges returns the cached per-user result for a live source.
	UserBadges(ctx context.Context, source, userID string) ([]domain.Badge, bool)
	// SetUserBadges caches a per-user result.
	SetUserBadges(ctx context.Context, source, userID string, badges []domain.Badge) error
}
