package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Worker   WorkerConfig
	WhatsApp WhatsAppConfig
	Auth     AuthConfig
	Alert    AlertConfig
	Events   EventsConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port      string
	BodyLimit string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type QueueConfig struct {
	Name          string
	Attempts      int
	Backoff       time.Duration
	KeepCompleted int
	KeepFailed    int
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	StallTimeout time.Duration
	ClaimLease   time.Duration
	ReplyText    string
	// Embedded runs the pool inside the API process in addition to cmd/worker.
	Embedded bool
}

type WhatsAppConfig struct {
	AppSecret       string
	VerifyToken     string
	AccessToken     string
	GraphAPIVersion string
	GraphBaseURL    string
	Timeout         time.Duration
}

type AuthConfig struct {
	InternalAPIKey string
}

type AlertConfig struct {
	WebhookURL string
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type CacheConfig struct {
	// AccountTTL also bounds how long a deactivated account keeps resolving from cache.
	AccountTTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      GetEnv("SERVER_PORT", "8080"),
			BodyLimit: GetEnv("SERVER_BODY_LIMIT", "2M"),
		},
		Database: DatabaseConfig{
			Host:         GetEnv("DB_HOST", "localhost"),
			Port:         GetEnv("DB_PORT", "3306"),
			User:         GetEnv("DB_USER", "wa"),
			Password:     GetEnv("DB_PASSWORD", "wa123"),
			DBName:       GetEnv("DB_NAME", "wa_inbound"),
			MaxOpenConns: GetEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Queue: QueueConfig{
			Name:          GetEnv("QUEUE_NAME", "wa_inbound"),
			Attempts:      GetEnvAsInt("QUEUE_ATTEMPTS", 5),
			Backoff:       GetEnvAsDuration("QUEUE_BACKOFF", 5*time.Second),
			KeepCompleted: GetEnvAsInt("QUEUE_KEEP_COMPLETED", 5000),
			KeepFailed:    GetEnvAsInt("QUEUE_KEEP_FAILED", 5000),
		},
		Worker: WorkerConfig{
			Concurrency:  GetEnvAsInt("WA_WORKER_CONCURRENCY", 5),
			PollInterval: GetEnvAsDuration("WORKER_POLL_INTERVAL", time.Second),
			StallTimeout: GetEnvAsDuration("WORKER_STALL_TIMEOUT", 5*time.Minute),
			ClaimLease:   GetEnvAsDuration("CLAIM_LEASE", 5*time.Minute),
			ReplyText:    GetEnv("AUTO_REPLY_TEXT", "Recebi sua mensagem ✅"),
			Embedded:     GetEnvAsBool("WORKER_EMBEDDED", false),
		},
		WhatsApp: WhatsAppConfig{
			AppSecret:       GetEnv("META_APP_SECRET", ""),
			VerifyToken:     GetEnv("WA_VERIFY_TOKEN", ""),
			AccessToken:     GetEnv("WA_ACCESS_TOKEN", ""),
			GraphAPIVersion: GetEnv("WA_GRAPH_API_VERSION", "v20.0"),
			GraphBaseURL:    GetEnv("WA_GRAPH_BASE_URL", "https://graph.facebook.com"),
			Timeout:         time.Duration(GetEnvAsInt("WA_GRAPH_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Auth: AuthConfig{
			InternalAPIKey: GetEnv("INTERNAL_API_KEY", ""),
		},
		Alert: AlertConfig{
			WebhookURL: GetEnv("ALERT_WEBHOOK_URL", ""),
		},
		Events: EventsConfig{
			AMQPURL:  GetEnv("AMQP_URL", ""),
			Exchange: GetEnv("AMQP_EXCHANGE", "wa.inbound"),
		},
		Cache: CacheConfig{
			AccountTTL: GetEnvAsDuration("ACCOUNT_CACHE_TTL", time.Minute),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
