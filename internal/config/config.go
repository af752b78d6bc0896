// Package config loads server configuration from command-line flags,
// environment variables, a .env file and defaults, in that order of precedence.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/logger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string // default: ~/.catalog/catalog.db
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default: 3001
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 15s
	IdleTimeout  time.Duration // default: 60s
}

// CatalogConfig holds catalog behavior switches.
type CatalogConfig struct {
	CategoryDeletePolicy domain.CategoryDeletePolicy
}

// RateLimitConfig bounds write requests per client.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int // default: 120
	Burst             int // default: 20
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string // default: *
}

// LoadConfig loads configuration using the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and resolves every value with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("catalog-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := fs.String("db-path", "", "Path to the SQLite database (default: ~/.catalog/catalog.db)")

	serverPort := fs.String("port", "", "Server port (default: 3001)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	deletePolicy := fs.String("category-delete-policy", "", "What deleting a category does to its products: orphan, cascade or restrict (default: orphan)")

	rateLimitEnabled := fs.String("rate-limit-enabled", "", "Rate limit write requests (default: true)")
	rateLimitRPM := fs.String("rate-limit-rpm", "", "Write requests per minute per client (default: 120)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Write request burst per client (default: 20)")

	corsOrigins := fs.String("cors-allowed-origins", "", "Comma-separated allowed origins (default: *)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "3001"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolConfigValue(*rateLimitEnabled, "RATE_LIMIT_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RequestsPerMinute, err = getIntConfigValue(*rateLimitRPM, "RATE_LIMIT_RPM", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	policy, err := domain.ParseCategoryDeletePolicy(getConfigValue(*deletePolicy, "CATEGORY_DELETE_POLICY", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid category delete policy: %w", err)
	}
	cfg.Catalog.CategoryDeletePolicy = policy

	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	if _, err := logger.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	switch c.Catalog.CategoryDeletePolicy {
	case domain.DeletePolicyOrphan, domain.DeletePolicyCascade, domain.DeletePolicyRestrict:
	default:
		return fmt.Errorf("invalid category delete policy: %q", c.Catalog.CategoryDeletePolicy)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit rpm and burst must be positive when rate limiting is enabled")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("at least one CORS origin is required")
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is used.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDatabasePath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".catalog", "catalog.db")

	expanded, err := expandPath(c.Database.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Database.Path = expanded
	return nil
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

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars already set take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
