package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	// ✅ HTTP surface
	CORSOrigins        []string
	RateLimitPerMinute int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// ✅ Redis Config
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SettingsCacheTTL time.Duration

	// ✅ Kafka Config (content-change event source)
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// ✅ FCM Config
	FCMCredentialsPath string // Path to Firebase service account JSON
	FCMProjectID       string // Firebase Project ID (optional, can be in JSON)
	FCMSendRate        int    // topic sends per second

	// Notification core
	Timezone              string
	ReconcileCron         string
	ReminderCron          string
	ReminderTick          time.Duration
	CleanupCron           string
	MaterializationMonths int
	RetentionDays         int
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "production"),

		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		SettingsCacheTTL: getDuration("SETTINGS_CACHE_TTL", 5*time.Minute),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "content-changes"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "church-notifications"),

		FCMCredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),
		FCMSendRate:        getInt("FCM_SEND_RATE", 50),

		Timezone:              getEnv("NOTIFY_TIMEZONE", "UTC"),
		ReconcileCron:         getEnv("RECONCILE_CRON", "@hourly"),
		ReminderCron:          getEnv("REMINDER_CRON", "@every 15m"),
		ReminderTick:          getDuration("REMINDER_TICK", 15*time.Minute),
		CleanupCron:           getEnv("CLEANUP_CRON", "0 0 * * *"),
		MaterializationMonths: getInt("MATERIALIZATION_MONTHS", 3),
		RetentionDays:         getInt("RETENTION_DAYS", 30),
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("⚠️ Unknown NOTIFY_TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
