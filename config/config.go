package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultNotificationQueueSize = 100
	defaultNumNotifyWorkers      = 2
)

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen address
	ListenAddr string

	// secret used to sign session tokens
	JWTSecret string

	// origin allowed by the CORS layer
	AllowedOrigin string

	// public base URL used in invitation links
	PublicBaseURL string

	// shoutrrr service URLs for invitation delivery (comma separated)
	NotificationURLs []string

	// notification worker settings
	NotificationQueueSize int
	NumNotifyWorkers      int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "memoria.db")
	listenAddr := getEnvOrDefault("LISTEN_ADDR", ":8080")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-do-not-use-in-production"
		log.Printf("Warning: JWT_SECRET not set, using insecure development default")
	}

	origin := getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:3000")
	baseURL := strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:3000"), "/")

	var notifyURLs []string
	for _, raw := range strings.Split(os.Getenv("NOTIFICATION_URLS"), ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			notifyURLs = append(notifyURLs, trimmed)
		}
	}

	queueSize := getEnvIntOrDefault("NOTIFICATION_QUEUE_SIZE", defaultNotificationQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_NOTIFY_WORKERS", defaultNumNotifyWorkers)

	cfg := Config{
		DatabasePath:          dbPath,
		ListenAddr:            listenAddr,
		JWTSecret:             secret,
		AllowedOrigin:         origin,
		PublicBaseURL:         baseURL,
		NotificationURLs:      notifyURLs,
		NotificationQueueSize: queueSize,
		NumNotifyWorkers:      numWorkers,
	}

	return cfg, nil
}
