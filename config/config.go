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
	Port string
	Env  string

	RestaurantAPIURL string
	UpstreamTimeout  time.Duration

	StoreDriver string
	RedisURL    string
	SessionTTL  time.Duration

	TaxRate float64

	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int
	CookieSecure       bool

	EventDriver         string
	KafkaBrokers        []string
	KafkaTopic          string
	CheckoutSNSTopicARN string
}

// Load reads configuration from the environment, after loading a local
// .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:                getEnv("PORT", "8087"),
		Env:                 getEnv("ENV", "development"),
		RestaurantAPIURL:    strings.TrimRight(getEnv("RESTAURANT_API_URL", "http://localhost:8080/restaurant/api/v1"), "/"),
		UpstreamTimeout:     getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		StoreDriver:         getEnv("STORE_DRIVER", "redis"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		SessionTTL:          getDuration("SESSION_TTL", time.Hour*24*7), // default 7 days
		TaxRate:             getFloat("TAX_RATE", 0.1),
		AllowedOrigins:      getList("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitPerMinute:  getInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:      getInt("RATE_LIMIT_BURST", 50),
		CookieSecure:        getEnv("COOKIE_SECURE", "false") == "true",
		EventDriver:         getEnv("EVENT_DRIVER", "none"),
		KafkaBrokers:        getList("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "checkout.requested"),
		CheckoutSNSTopicARN: os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, val, defaultVal)
		return defaultVal
	}
	return n
}

func getFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using %v", key, val, defaultVal)
		return defaultVal
	}
	return f
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}

func getList(key, defaultVal string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultVal), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
