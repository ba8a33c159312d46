package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	KafkaBrokers  []string
	ConsumerGroup string
	ConsumeTopic  string

	MaxRetries    int
	BackoffBase   time.Duration
	DedupCapacity int

	ProviderMode   string // "stub" or "live"
	ProviderAPIKey string
	ProviderAPIURL string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "postcard"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	group := os.Getenv("KAFKA_CONSUMER_GROUP")
	if group == "" {
		group = "render-service-cg"
	}

	topic := os.Getenv("KAFKA_CONSUME_TOPIC")
	if topic == "" {
		topic = "video.events"
	}

	mode := strings.ToLower(strings.TrimSpace(os.Getenv("PROVIDER_MODE")))
	if mode != "live" {
		mode = "stub"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		KafkaBrokers:  brokers,
		ConsumerGroup: group,
		ConsumeTopic:  topic,

		MaxRetries:    envInt("CONSUMER_MAX_RETRIES", 3),
		BackoffBase:   time.Duration(envInt("CONSUMER_BACKOFF_BASE_MS", 1000)) * time.Millisecond,
		DedupCapacity: envInt("DEDUP_CACHE_CAPACITY", 10000),

		ProviderMode:   mode,
		ProviderAPIKey: os.Getenv("PROVIDER_API_KEY"),
		ProviderAPIURL: os.Getenv("PROVIDER_API_URL"),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
