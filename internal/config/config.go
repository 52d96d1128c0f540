package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string // "text" | "json"

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	KVBackend    string // "bolt" | "dynamo" | "s3" | "memory"
	DataPath     string // bbolt file used by the "bolt" backend
	DynamoTable  string
	S3BucketName string
	S3Prefix     string

	// Permission the installation reports to RequestPermission.
	NotificationPermission string

	SNSRegion                 string
	SNSPlatformApplicationARN string // empty disables endpoint registration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	RedisURL     string // empty disables the Redis bridge
	RedisChannel string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool

	NotifyEmailTo string
	NotifySMSTo   string

	WebhookRatePerSecond float64
	WebhookBurst         int
	AllowedOrigins       []string // CORS allowed origins
	AgentURL             string   // base URL the CLI uses to reach a running agent
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		KVBackend:    getEnv("KV_BACKEND", "bolt"),
		DataPath:     getEnv("DATA_PATH", "./push-inbox.db"),
		DynamoTable:  getEnv("DYNAMO_TABLE_KV", "kv_store"),
		S3BucketName: getEnv("S3_BUCKET_NAME", "push-inbox"),
		S3Prefix:     getEnv("S3_PREFIX", "storage/"),

		NotificationPermission: getEnv("NOTIFICATION_PERMISSION", "authorized"),

		SNSRegion:                 getEnv("SNS_REGION", "us-east-1"),
		SNSPlatformApplicationARN: getEnv("SNS_PLATFORM_APPLICATION_ARN", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 15)) * time.Minute,

		RedisURL:     getEnv("REDIS_URL", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "push-inbox:messages"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:      getEnvBool("SMTP_TLS", false),

		NotifyEmailTo: getEnv("NOTIFY_EMAIL_TO", ""),
		NotifySMSTo:   getEnv("NOTIFY_SMS_TO", ""),

		WebhookRatePerSecond: getEnvFloat("WEBHOOK_RATE_PER_SECOND", 5),
		WebhookBurst:         getEnvInt("WEBHOOK_BURST", 10),
		AllowedOrigins:       strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AgentURL:             getEnv("AGENT_URL", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
