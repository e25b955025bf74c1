package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Basis    BasisConfig
	Prices   PriceConfig
	Auth     AuthConfig
	TaxDoc   TaxDocConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// BasisConfig holds the defaults of basis runs that do not name a method or rounding.
type BasisConfig struct {
	Method   coinpool.Method
	Rounding model.Rounding
}

// PriceConfig holds price oracle and refresh configuration
type PriceConfig struct {
	CacheTTL        time.Duration
	RefreshSchedule string // cron spec; empty disables scheduled refresh
	RefreshSymbols  []string
	RefreshTimeout  time.Duration
	LiveFetch       bool // fall back to Yahoo for days missing from the database
}

// AuthConfig holds API authentication configuration
type AuthConfig struct {
	// APIKeySet reports whether INTERNAL_API_KEY is configured. The key itself is read per
	// request by the API key middleware.
	APIKeySet bool
}

// TaxDocConfig holds the encryption key of uploaded documents
type TaxDocConfig struct {
	Key *fernet.Key
	// Ephemeral is set when no TAXDOC_KEY was configured and a random key was generated.
	// Documents stored with it cannot be read after a restart.
	Ephemeral bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	method, err := coinpool.ParseMethod(getEnv("BASIS_METHOD", "FIFO"))
	if err != nil {
		return nil, fmt.Errorf("BASIS_METHOD: %w", err)
	}
	rounding := model.RoundDollars
	if roundCents, err := getBool("BASIS_ROUND_CENTS", false); err != nil {
		return nil, err
	} else if roundCents {
		rounding = model.RoundCents
	}

	cacheTTL, err := getDuration("PRICE_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshTimeout, err := getDuration("PRICE_REFRESH_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	liveFetch, err := getBool("PRICE_LIVE_FETCH", true)
	if err != nil {
		return nil, err
	}

	taxdoc, err := loadTaxDocKey(os.Getenv("TAXDOC_KEY"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/cost_basis.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Basis: BasisConfig{
			Method:   method,
			Rounding: rounding,
		},
		Prices: PriceConfig{
			CacheTTL:        cacheTTL,
			RefreshSchedule: os.Getenv("PRICE_REFRESH_SCHEDULE"),
			RefreshSymbols:  getList("PRICE_REFRESH_SYMBOLS", nil),
			RefreshTimeout:  refreshTimeout,
			LiveFetch:       liveFetch,
		},
		Auth: AuthConfig{
			APIKeySet: os.Getenv("INTERNAL_API_KEY") != "",
		},
		TaxDoc: taxdoc,
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

func loadTaxDocKey(encoded string) (TaxDocConfig, error) {
	if strings.TrimSpace(encoded) == "" {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			return TaxDocConfig{}, fmt.Errorf("failed to generate document key: %w", err)
		}
		return TaxDocConfig{Key: &key, Ephemeral: true}, nil
	}
	key, err := fernet.DecodeKey(strings.TrimSpace(encoded))
	if err != nil {
		return TaxDocConfig{}, fmt.Errorf("TAXDOC_KEY: %w", err)
	}
	return TaxDocConfig{Key: key}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getList splits a comma separated variable, dropping empty entries.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return lo.Compact(lo.Map(strings.Split(value, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}
