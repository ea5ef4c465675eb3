// Package config loads the board server configuration from command-line
// flags, environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Cache drivers.
const (
	CacheBadger = "badger"
	CacheRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Import    ImportConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	Backup    BackupConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name           string
	Port           string        // default 3000
	ReadTimeout    time.Duration // default 15s
	WriteTimeout   time.Duration // default 15s
	IdleTimeout    time.Duration // default 60s
	AdvertiseMDNS  bool          // default false
	AllowedOrigins []string      // CORS origins, default "*"
}

// StorageConfig selects the authoritative board store.
type StorageConfig struct {
	Driver      string // sqlite or postgres
	DataPath    string // directory for the sqlite file and the badger cache
	DatabaseURL string // postgres connection string
}

// SQLitePath is the board database file inside DataPath.
func (s StorageConfig) SQLitePath() string {
	return filepath.Join(s.DataPath, "board.db")
}

// CacheConfig selects the local cache slot used by gateway sessions.
type CacheConfig struct {
	Driver   string // badger or redis
	Path     string // badger directory, default {data}/cache
	RedisURL string
}

// ImportConfig controls where follower exports are looked up.
type ImportConfig struct {
	Root        string   // directory holding the export folders, default cwd
	Folders     []string // candidate folder names, empty means the built-in list
	Watch       bool     // merge new export files automatically
	SettleDelay time.Duration
}

// GatewayConfig configures command-line sessions.
type GatewayConfig struct {
	RemoteURL string
	Debounce  time.Duration
}

// RateLimitConfig limits board writes per client IP.
type RateLimitConfig struct {
	WritesPerMinute int
	Burst           int
}

// BackupConfig controls server-side board snapshots.
type BackupConfig struct {
	Dir      string        // default {data}/backups
	Interval time.Duration // 0 disables the periodic job, default 24h
	Keep     int           // snapshots kept after pruning, default 14
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config with precedence flags > environment > .env file >
// defaults, then validates it. Positional arguments are rejected.
func Load(args []string) (*Config, error) {
	cfg, rest, err := LoadArgs(args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument %q", rest[0])
	}
	return cfg, nil
}

// LoadArgs is Load for command line tools: flag parsing stops at the first
// positional argument, and the remaining arguments are returned.
func LoadArgs(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("crm-seguidores", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverName := fs.String("server-name", "", "Name advertised over mDNS")
	port := fs.String("port", "", "Server port (default: 3000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := fs.String("advertise-mdns", "", "Advertise via mDNS (default: false)")
	origins := fs.String("allowed-origins", "", "Comma separated CORS origins (default: *)")

	storageDriver := fs.String("storage", "", "Board store: sqlite or postgres (default: sqlite)")
	dataPath := fs.String("data-path", "", "Directory for local data")
	databaseURL := fs.String("database-url", "", "Postgres connection string")

	cacheDriver := fs.String("cache", "", "Session cache: badger or redis (default: badger)")
	cachePath := fs.String("cache-path", "", "Badger cache directory")
	redisURL := fs.String("redis-url", "", "Redis URL for the session cache")

	importRoot := fs.String("import-root", "", "Directory holding follower exports")
	importFolders := fs.String("import-folders", "", "Comma separated export folder names")
	importWatch := fs.String("import-watch", "", "Merge new export files automatically (default: false)")
	importSettle := fs.String("import-settle", "", "Quiet time before a new export file is read (default: 2s)")

	remoteURL := fs.String("remote-url", "", "Board server URL for command-line sessions")
	debounce := fs.String("debounce", "", "Idle time before a change is saved (default: 800ms)")

	writesPerMinute := fs.String("writes-per-minute", "", "Board writes allowed per client per minute (default: 120)")
	writeBurst := fs.String("write-burst", "", "Board write burst size (default: 20)")

	backupDir := fs.String("backup-dir", "", "Directory for board snapshots")
	backupInterval := fs.String("backup-interval", "", "Time between board snapshots, 0 disables (default: 24h)")
	backupKeep := fs.String("backup-keep", "", "Board snapshots to keep (default: 14)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Missing .env files are fine; set variables always win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:           getConfigValue(*serverName, "SERVER_NAME", "CRM Seguidores"),
			Port:           getConfigValue(*port, "PORT", "3000"),
			AdvertiseMDNS:  getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", false),
			AllowedOrigins: splitList(getConfigValue(*origins, "ALLOWED_ORIGINS", "*")),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getConfigValue(*storageDriver, "STORAGE_DRIVER", StorageSQLite)),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
			DatabaseURL: getConfigValue(*databaseURL, "DATABASE_URL", ""),
		},
		Cache: CacheConfig{
			Driver:   strings.ToLower(getConfigValue(*cacheDriver, "CACHE_DRIVER", CacheBadger)),
			Path:     getConfigValue(*cachePath, "CACHE_PATH", ""),
			RedisURL: getConfigValue(*redisURL, "REDIS_URL", ""),
		},
		Import: ImportConfig{
			Root:    getConfigValue(*importRoot, "IMPORT_ROOT", ""),
			Folders: splitList(getConfigValue(*importFolders, "IMPORT_FOLDERS", "")),
			Watch:   getBoolConfigValue(*importWatch, "IMPORT_WATCH", false),
		},
		Gateway: GatewayConfig{
			RemoteURL: getConfigValue(*remoteURL, "BOARD_REMOTE_URL", "http://localhost:3000"),
		},
		Backup: BackupConfig{
			Dir: getConfigValue(*backupDir, "BACKUP_DIR", ""),
		},
	}

	var err error
	durations := []struct {
		dst  *time.Duration
		flag string
		env  string
		def  string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Import.SettleDelay, *importSettle, "IMPORT_SETTLE_DELAY", "2s"},
		{&cfg.Gateway.Debounce, *debounce, "SAVE_DEBOUNCE", "800ms"},
		{&cfg.Backup.Interval, *backupInterval, "BACKUP_INTERVAL", "24h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.def)
		if *d.dst, err = time.ParseDuration(raw); err != nil {
			return nil, nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.env), raw, err)
		}
	}

	if cfg.RateLimit.WritesPerMinute, err = getIntConfigValue(*writesPerMinute, "RATE_LIMIT_WRITES", 120); err != nil {
		return nil, nil, err
	}
	if cfg.RateLimit.Burst, err = getIntConfigValue(*writeBurst, "RATE_LIMIT_BURST", 20); err != nil {
		return nil, nil, err
	}
	if cfg.Backup.Keep, err = getIntConfigValue(*backupKeep, "BACKUP_KEEP", 14); err != nil {
		return nil, nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.DataPath == "" {
			return errors.New("data path cannot be empty")
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid storage driver: %q (must be sqlite or postgres)", c.Storage.Driver)
	}

	switch c.Cache.Driver {
	case CacheBadger:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis cache")
		}
	default:
		return fmt.Errorf("invalid cache driver: %q (must be badger or redis)", c.Cache.Driver)
	}

	if c.Gateway.Debounce <= 0 {
		return errors.New("save debounce must be positive")
	}
	if c.RateLimit.WritesPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit values must be positive")
	}
	if c.Backup.Interval < 0 {
		return errors.New("backup interval cannot be negative")
	}
	if c.Backup.Keep < 1 {
		return errors.New("backup keep must be at least 1")
	}

	return nil
}

// expandPaths resolves ~ and relative paths and fills path defaults.
func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Storage.DataPath, err = expandPath(c.Storage.DataPath, filepath.Join(home, ".crm-seguidores")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path, filepath.Join(c.Storage.DataPath, "cache")); err != nil {
		return fmt.Errorf("invalid cache path: %w", err)
	}
	if c.Backup.Dir, err = expandPath(c.Backup.Dir, filepath.Join(c.Storage.DataPath, "backups")); err != nil {
		return fmt.Errorf("invalid backup dir: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if c.Import.Root, err = expandPath(c.Import.Root, cwd); err != nil {
		return fmt.Errorf("invalid import root: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute. An empty path yields
// defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return n, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
