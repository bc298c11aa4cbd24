package badge

import (
	"context"
	"strings"

	"github.com/creations-works/badgeapi/internal/domain"
)

// Request carries the per-call inputs an adapter needs.
type Request struct {
	UserID string
	// Origin is the inbound request's scheme://host, used to make
	// relative badge icon paths absolute. May be empty.
	Origin string
}

// Adapter resolves badges for one source. Implementations never let an
// upstream or cache failure escape as a panic; they return an error and the
// aggregator absorbs it into an empty result for that source.
type Adapter interface {
	Fetch(ctx context.Context, req Request) ([]domain.Badge, error)
}

// BulkProvider exposes the refresher's current bulk snapshots. A miss means
// the dataset is not cached yet; adapters never trigger a synchronous
// upstream fetch for bulk data.
type BulkProvider interface {
	ContributorBadges(ctx context.Context, source string) (ContributorData, bool)
	Nekocord(ctx context.Context) (*NekocordData, bool)
	ReviewDB(ctx context.Context) (ReviewDBData, bool)
}

// absoluteURL prefixes root-relative icon paths with the request origin.
// Fully-qualified URLs pass through untouched.
func absoluteURL(origin, path string) string {
	if origin != "" && strings.HasPrefix(path, "/") {
		return origin + path
	}
	return path
}
