// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Ledger      LedgerConfig
	Events      EventsConfig
	I18n        I18nConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	// Enabled=false keeps the ledger in memory only.
	Enabled      bool
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
	Issuer         string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
	Currency             string
	// UnitsPerCent converts one Stripe minor unit into ledger minor units.
	UnitsPerCent string
	IntentTTL    time.Duration
}

type LedgerConfig struct {
	RegistryAddress   string
	ImplementationID  string
	Operators         []string
	Minters           []string
	Treasury          string
	GalleryWallet     string
	PlatformFeeBps    uint64
	GalleryFeeBps     uint64
	DefaultRoyaltyBps uint64
	AmountDecimals    int32
}

type EventsConfig struct {
	ArchiveEnabled bool
	ArchivePrefix  string
	LocalDir       string
	BufferSize     int
	FlushInterval  time.Duration
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", true),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "digital_original"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
			Issuer:         getEnv("JWT_ISSUER", "digital-original"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			Currency:             getEnv("STRIPE_CURRENCY", "usd"),
			UnitsPerCent:         getEnv("STRIPE_UNITS_PER_CENT", "10000000000000"), // 1e13: $1 = 0.001 ETH-like units
			IntentTTL:            getEnvAsDuration("STRIPE_INTENT_TTL", 30*time.Minute),
		},
		Ledger: LedgerConfig{
			RegistryAddress:   getEnv("LEDGER_REGISTRY_ADDRESS", "0x0000000000000000000000000000000000000f00"),
			ImplementationID:  getEnv("LEDGER_IMPLEMENTATION", "collection-v1"),
			Operators:         getEnvAsList("LEDGER_OPERATORS"),
			Minters:           getEnvAsList("LEDGER_MINTERS"),
			Treasury:          getEnv("LEDGER_TREASURY", ""),
			GalleryWallet:     getEnv("LEDGER_GALLERY_WALLET", ""),
			PlatformFeeBps:    getEnvAsUint("LEDGER_PLATFORM_FEE_BPS", 1000),
			GalleryFeeBps:     getEnvAsUint("LEDGER_GALLERY_FEE_BPS", 500),
			DefaultRoyaltyBps: getEnvAsUint("LEDGER_DEFAULT_ROYALTY_BPS", 1000),
			AmountDecimals:    int32(getEnvAsInt("LEDGER_AMOUNT_DECIMALS", 18)),
		},
		Events: EventsConfig{
			ArchiveEnabled: getEnvAsBool("EVENTS_ARCHIVE_ENABLED", true),
			ArchivePrefix:  getEnv("EVENTS_ARCHIVE_PREFIX", "events"),
			LocalDir:       getEnv("EVENTS_LOCAL_DIR", "./data/events"),
			BufferSize:     getEnvAsInt("EVENTS_BUFFER_SIZE", 1024),
			FlushInterval:  getEnvAsDuration("EVENTS_FLUSH_INTERVAL", 5*time.Second),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Enabled && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if !common.IsHexAddress(c.Ledger.RegistryAddress) {
		return fmt.Errorf("LEDGER_REGISTRY_ADDRESS %q is not an address", c.Ledger.RegistryAddress)
	}
	for _, list := range [][]string{c.Ledger.Operators, c.Ledger.Minters} {
		for _, addr := range list {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("ledger role address %q is not an address", addr)
			}
		}
	}
	for name, addr := range map[string]string{
		"LEDGER_TREASURY":       c.Ledger.Treasury,
		"LEDGER_GALLERY_WALLET": c.Ledger.GalleryWallet,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("%s %q is not an address", name, addr)
		}
	}

	if c.Ledger.PlatformFeeBps+c.Ledger.GalleryFeeBps > 10000 {
		return fmt.Errorf("platform and gallery fees exceed 10000 bps")
	}
	if c.Ledger.DefaultRoyaltyBps > 10000 {
		return fmt.Errorf("default royalty exceeds 10000 bps")
	}
	if c.Ledger.AmountDecimals < 0 {
		return fmt.Errorf("amount decimals must not be negative")
	}

	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("events buffer size must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
