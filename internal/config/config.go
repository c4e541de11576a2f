package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/osse101/roundpool/internal/domain"
)

// Config holds the application configuration
type Config struct {
	LogLevel    string
	LogFormat   string
	Environment string

	Store      string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBMaxConns int32

	RedisAddr     string
	RedisPassword string
	LockTTL       time.Duration

	Deployer    domain.Identity
	Treasury    domain.Identity
	FeeRate     uint64
	RoundLength int64

	CacheTTL       time.Duration
	DeadLetterPath string
}

// Load loads the configuration from environment variables, reading .env
// first when present
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		Environment:    getEnv("ENVIRONMENT", DefaultEnvironment),
		Store:          strings.ToLower(getEnv("STORE", DefaultStore)),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBName:         getEnv("DB_NAME", "roundpool"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		DeadLetterPath: getEnv("DEAD_LETTER_PATH", DefaultDeadLetterPath),
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", DefaultDBMaxConns)
	if err != nil {
		return nil, err
	}
	cfg.DBMaxConns = int32(maxConns)

	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", DefaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getEnvDuration("LOCK_TTL", DefaultLockTTL); err != nil {
		return nil, err
	}

	feeRate, err := strconv.ParseUint(getEnv("LEDGER_FEE_RATE", strconv.FormatUint(domain.DefaultFeeRate, 10)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_FEE_RATE value: %w", err)
	}
	cfg.FeeRate = feeRate

	roundLength, err := strconv.ParseInt(getEnv("LEDGER_ROUND_LENGTH", strconv.FormatInt(domain.DefaultRoundLength, 10)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_ROUND_LENGTH value: %w", err)
	}
	cfg.RoundLength = roundLength

	if v := getEnv("LEDGER_DEPLOYER", ""); v != "" {
		if cfg.Deployer, err = domain.ParseIdentity(v); err != nil {
			return nil, fmt.Errorf("invalid LEDGER_DEPLOYER value: %w", err)
		}
	}
	cfg.Treasury = cfg.Deployer
	if v := getEnv("LEDGER_TREASURY", ""); v != "" {
		if cfg.Treasury, err = domain.ParseIdentity(v); err != nil {
			return nil, fmt.Errorf("invalid LEDGER_TREASURY value: %w", err)
		}
	}

	return cfg, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store))
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.Store == StorePostgres && c.Deployer == domain.ZeroIdentity {
		errs = append(errs, errors.New("LEDGER_DEPLOYER must be set for the postgres store"))
	}
	if c.FeeRate == 0 || c.FeeRate > domain.MaxFeeRate {
		errs = append(errs, fmt.Errorf("LEDGER_FEE_RATE must be in (0, %d], got %d", domain.MaxFeeRate, c.FeeRate))
	}
	if c.RoundLength <= 0 {
		errs = append(errs, fmt.Errorf("LEDGER_ROUND_LENGTH must be positive, got %d", c.RoundLength))
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL))
	}

	return errors.Join(errs...)
}

// Warnings lists settings that are legal but unwise
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Store == StorePostgres && c.DBPassword == exampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value")
	}
	if c.Store == StorePostgres && c.RedisAddr == "" {
		warnings = append(warnings, "REDIS_ADDR is not set; locks only cover this process")
	}
	if c.Treasury == c.Deployer && c.Deployer != domain.ZeroIdentity {
		warnings = append(warnings, "LEDGER_TREASURY defaults to the deployer")
	}
	return warnings
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}
