package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CacheTTL        time.Duration // base TTL for cached badge data (default: 1h)
	RefreshInterval time.Duration // interval between bulk source refresh sweeps (default: 1h)
	SourceFile      string        // optional YAML file overriding source URLs (empty = built-in defaults)
	DiscordToken    string        // bot token for the Discord user API (optional, empty = discord source disabled)
	UserAgent       string        // User-Agent sent to upstream badge sources

	HTTPTimeout  time.Duration // per-request timeout for upstream fetches
	HTTPRetryMax int           // max retries per upstream fetch (0 = no retries)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	RateLimitBurst  int  // token bucket capacity per client IP
	RateLimitPerMin int  // refill rate per client IP per minute
	TrustProxy      bool // true => trust X-Forwarded-For / X-Forwarded-Proto headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BADGE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BADGE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BADGE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BADGE_PRETTY_LOG", true),

		// Badge cache
		CacheTTL:        mustDuration("BADGE_CACHE_TTL", time.Hour),
		RefreshInterval: mustDuration("BADGE_REFRESH_INTERVAL", time.Hour),
		SourceFile:      getenv("BADGE_SOURCE_FILE", ""), // Optional, empty = built-in source list
		DiscordToken:    getenv("BADGE_DISCORD_TOKEN", ""),
		UserAgent:       getenv("BADGE_USER_AGENT", "BadgeAPI/1.0 https://git.creations.works/creations/badgeAPI"),

		// Upstream fetches
		HTTPTimeout:  mustDuration("BADGE_HTTP_TIMEOUT", 10*time.Second),
		HTTPRetryMax: getenvInt("BADGE_HTTP_RETRY_MAX", 2),

		// Redis settings
		RedisAddr:             requireEnv("BADGE_REDIS_ADDR"),
		RedisUser:             getenv("BADGE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("BADGE_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("BADGE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BADGE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Request limits
		RateLimitBurst:  getenvInt("BADGE_RATE_LIMIT_BURST", 60),
		RateLimitPerMin: getenvInt("BADGE_RATE_LIMIT_PER_MIN", 60),
		TrustProxy:      mustBool("BADGE_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: BADGE_REDIS_PASSWORD is required when BADGE_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.DiscordToken != "" {
			cfgCopy.DiscordToken = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// SplitAndTrim splits a comma/space separated list into trimmed parts.
// Used for the `services` query parameter and env var lists.
func SplitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
