package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Directory backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendGRPC     = "grpc"
)

// Config struct holds all configuration for the application.
type Config struct {
	Env            string
	LogLevel       string
	LogFormat      string
	NodeHostname   string
	ServiceVersion string

	HttpPort       string
	ResolveTimeout time.Duration

	DirectoryBackend  string
	DirectorySeedPath string
	DatabaseURL       string
	MaxDBRetries     int

	UserServiceURL string
	CertPath       string
	KeyPath        string
	CaPath         string

	RedisURL string
	CacheTTL time.Duration

	MaxConcurrentQueries int
	PhoneMatchDigits     int
	DefaultCountryCode   string
	DefaultLanguage      string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	godotenv.Load()

	hostname, _ := os.Hostname()

	cfg := &Config{
		Env:            GetEnv("ENV", "production"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFormat:      GetEnv("LOG_FORMAT", "json"),
		NodeHostname:   GetEnv("NODE_HOSTNAME", hostname),
		ServiceVersion: GetEnv("SERVICE_VERSION", "0.0.0"),

		HttpPort: GetEnv("CONTACT_RESOLVER_HTTP_PORT", "13070"),

		DirectoryBackend:  GetEnv("DIRECTORY_BACKEND", BackendPostgres),
		DirectorySeedPath: GetEnv("DIRECTORY_SEED_PATH", ""),
		DatabaseURL:       GetEnv("POSTGRES_URL", ""),

		UserServiceURL: GetEnv("USER_SERVICE_GRPC_URL", ""),
		CertPath:       GetEnv("CONTACT_RESOLVER_CERT_PATH", ""),
		KeyPath:        GetEnv("CONTACT_RESOLVER_KEY_PATH", ""),
		CaPath:         GetEnv("GRPC_TLS_CA_PATH", ""),

		RedisURL: GetEnv("REDIS_URL", ""),

		DefaultCountryCode: GetEnv("DEFAULT_COUNTRY_CODE", "90"),
		DefaultLanguage:    GetEnv("DEFAULT_LANGUAGE", "en"),
	}

	var err error
	if cfg.MaxDBRetries, err = GetEnvInt("MAX_DB_RETRIES", 10); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentQueries, err = GetEnvInt("RESOLVER_MAX_CONCURRENT_QUERIES", 0); err != nil {
		return nil, err
	}
	if cfg.PhoneMatchDigits, err = GetEnvInt("PHONE_MATCH_DIGITS", 7); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = GetEnvDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ResolveTimeout, err = GetEnvDuration("RESOLVE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.DirectoryBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("POSTGRES_URL, %s dizini için zorunlu", BackendPostgres)
		}
	case BackendGRPC:
		if c.UserServiceURL == "" {
			return fmt.Errorf("USER_SERVICE_GRPC_URL, %s dizini için zorunlu", BackendGRPC)
		}
		tlsSet := 0
		for _, p := range []string{c.CertPath, c.KeyPath, c.CaPath} {
			if p != "" {
				tlsSet++
			}
		}
		if tlsSet != 0 && tlsSet != 3 {
			return fmt.Errorf("mTLS için sertifika, anahtar ve CA yollarının üçü birden verilmeli")
		}
	default:
		return fmt.Errorf("bilinmeyen DIRECTORY_BACKEND: %q", c.DirectoryBackend)
	}
	if c.MaxConcurrentQueries < 0 {
		return fmt.Errorf("RESOLVER_MAX_CONCURRENT_QUERIES negatif olamaz")
	}
	if c.PhoneMatchDigits < 1 {
		return fmt.Errorf("PHONE_MATCH_DIGITS en az 1 olmalı")
	}
	return nil
}

// GetEnv retrieves an environment variable or returns a fallback.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt parses an integer environment variable.
func GetEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s tamsayı olmalı: %w", key, err)
	}
	return n, nil
}

// GetEnvDuration parses a time.Duration environment variable ("5m", "30s").
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s geçerli bir süre olmalı: %w", key, err)
	}
	return d, nil
}
