package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends understood by REEL_STORAGE.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Library
	CatalogFile     string // optional yaml overriding the embedded catalog
	AdminSecret     string // empty => admin actions are impossible
	DefaultIdentity string // identity used when none was chosen (and for legacy favorites)

	// Persistence
	Storage    string // file | redis | sqlite | memory
	DataFile   string // json document used by the file backend
	SQLitePath string // database used by the sqlite backend

	// Background jobs
	VersionURL           string        // document carrying <meta name="reel-version">, empty disables the checker
	VersionCheckInterval time.Duration // ex: 5m
	VersionCheckTimeout  time.Duration // abort a hanging check after this long
	PendingTimeout       time.Duration // pending generations older than this are failed
	SweepInterval        time.Duration // how often the pending sweeper runs

	// Redis (only read when Storage == redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedHosts      []string // optional, restrict access to specific Host headers
	AllowedCIDRS      []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy        bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst         int      // per-IP burst
	RateRefillPerMin  int      // per-IP refill rate
	RateLimitDisabled bool
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("REEL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("REEL_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("REEL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("REEL_PRETTY_LOG", true),

		// Library
		CatalogFile:     getenv("REEL_CATALOG_FILE", ""),
		AdminSecret:     getenv("REEL_ADMIN_SECRET", ""),
		DefaultIdentity: getenv("REEL_DEFAULT_IDENTITY", "guest"),

		// Persistence
		Storage:    strings.ToLower(getenv("REEL_STORAGE", StorageFile)),
		DataFile:   getenv("REEL_DATA_FILE", "/data/reel.json"),
		SQLitePath: getenv("REEL_SQLITE_PATH", "/data/reel.db"),

		// Background jobs
		VersionURL:           getenv("REEL_VERSION_URL", ""),
		VersionCheckInterval: mustDuration("REEL_VERSION_CHECK_INTERVAL", 5*time.Minute),
		VersionCheckTimeout:  mustDuration("REEL_VERSION_CHECK_TIMEOUT", 10*time.Second),
		PendingTimeout:       mustDuration("REEL_PENDING_TIMEOUT", time.Hour),
		SweepInterval:        mustDuration("REEL_SWEEP_INTERVAL", 10*time.Minute),

		// Access restrictions
		AllowedHosts:      splitAndTrim(getenv("REEL_ALLOWED_HOSTS", "")),
		AllowedCIDRS:      parseAllowedIPs(getenv("REEL_ALLOWED_CIDRS", "")),
		TrustProxy:        mustBool("REEL_TRUST_PROXY", false),
		RateBurst:         getenvInt("REEL_RATE_BURST", 60),
		RateRefillPerMin:  getenvInt("REEL_RATE_REFILL_PER_MIN", 120),
		RateLimitDisabled: mustBool("REEL_RATE_LIMIT_DISABLED", false),
	}

	switch cfg.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	case StorageRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: REEL_STORAGE must be one of file, redis, sqlite, memory (got %q)", cfg.Storage))
	}

	if cfg.DefaultIdentity = strings.TrimSpace(cfg.DefaultIdentity); cfg.DefaultIdentity == "" {
		cfg.DefaultIdentity = "guest"
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// loadRedis reads the Redis block; the address is mandatory once redis is selected.
func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("REEL_REDIS_ADDR")
	cfg.RedisUser = getenv("REEL_REDIS_USERNAME", "default")
	cfg.RedisPassword = getenv("REEL_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("REEL_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.AdminSecret != "" {
		cp.AdminSecret = "***REDACTED***"
	}
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
