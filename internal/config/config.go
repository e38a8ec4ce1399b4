package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	DBPath      string
	Environment string

	// Monitoring policy. The cooldown and poll interval are deployment
	// policy, not derived from any SLA; override per environment.
	CooldownWindow  time.Duration
	PollInterval    time.Duration
	GracePeriod     time.Duration
	RetentionCap    int
	PositionTimeout time.Duration

	// Remote alert mirror (MQTT)
	MirrorEnabled  bool
	MirrorBroker   string
	MirrorClientID string
	MirrorTopic    string
}

// Load reads configuration from the environment, with .env support
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", ":8080"),
		DBPath:      getEnv("DB_PATH", "./data/alerts/events.db"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CooldownWindow:  getDuration("COOLDOWN_WINDOW", 10*time.Minute),
		PollInterval:    getDuration("POLL_INTERVAL", 120*time.Second),
		GracePeriod:     getDuration("GRACE_PERIOD", 5*time.Second),
		RetentionCap:    getInt("EVENT_RETENTION_CAP", 100),
		PositionTimeout: getDuration("POSITION_TIMEOUT", 15*time.Second),

		MirrorEnabled:  getBool("MIRROR_ENABLED", false),
		MirrorBroker:   getEnv("MIRROR_BROKER", "tcp://localhost:1883"),
		MirrorClientID: getEnv("MIRROR_CLIENT_ID", "alerts-backend"),
		MirrorTopic:    getEnv("MIRROR_TOPIC", "alerts/zone-entries"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
