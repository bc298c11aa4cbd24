package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creations-works/badgeapi/internal/badge"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/scheduler"
	"github.com/creations-works/badgeapi/internal/source"
	"github.com/creations-works/badgeapi/internal/store"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	TrustProxy      bool          // true if running behind a trusted reverse proxy
	RepositoryURL   string        // public repository URL shown on the index route
	RefreshInterval time.Duration // bulk refresh sweep interval (drives nextUpdate on /health)
	RateLimitBurst  int           // token bucket capacity per client IP
	RateLimitPerMin int           // refill rate per client IP per minute

	RedisClient *redis.Client             // Redis client connection, nil in tests
	Registry    *source.Registry          // registered badge sources
	Aggregator  *badge.Aggregator         // per-user badge aggregation
	Refresher   *scheduler.BadgeRefresher // bulk dataset refresher, nil in tests
	Store       store.Cache               // badge cache store
}
