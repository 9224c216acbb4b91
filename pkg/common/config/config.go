package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost     string
	ServerPort     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis (rate limiting)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RateLimitRPS  int

	// Kafka (access audit trail)
	KafkaBrokers []string
	KafkaGroupID string
	AuditTopic   string

	// Auth
	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	JWTTTL           time.Duration
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string

	// Document storage
	DocumentBucket    string
	DocumentRegion    string
	DocumentEndpoint  string
	DocumentPathStyle bool
	DocumentURLTTL    time.Duration

	// Form rendering
	EnumLabelOverrides string // optional YAML catalog path
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "recordforms"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "recordforms"),
		PostgresDB:       getEnv("POSTGRES_DB", "recordforms"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RateLimitRPS:  getIntEnv("RATE_LIMIT_RPS", 50),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "recordforms"),
		AuditTopic:   getEnv("AUDIT_TOPIC", "record-access-audit"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "recordforms"),
		JWTAudience:      getEnv("JWT_AUDIENCE", "recordforms-api"),
		JWTTTL:           getDuration("JWT_TTL", time.Hour),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),

		DocumentBucket:    getEnv("DOCUMENT_BUCKET", ""),
		DocumentRegion:    getEnv("DOCUMENT_REGION", "us-east-1"),
		DocumentEndpoint:  getEnv("DOCUMENT_ENDPOINT", ""),
		DocumentPathStyle: getBoolEnv("DOCUMENT_PATH_STYLE", false),
		DocumentURLTTL:    getDuration("DOCUMENT_URL_TTL", 15*time.Minute),

		EnumLabelOverrides: getEnv("ENUM_LABEL_OVERRIDES", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true") || value == "1"
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
