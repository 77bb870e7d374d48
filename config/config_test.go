package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "RESTAURANT_API_URL", "TAX_RATE", "SESSION_TTL", "ALLOWED_ORIGINS", "EVENT_DRIVER", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8087", cfg.Port)
	assert.Equal(t, "http://localhost:8080/restaurant/api/v1", cfg.RestaurantAPIURL)
	assert.Equal(t, 0.1, cfg.TaxRate)
	assert.Equal(t, time.Hour*24*7, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "none", cfg.EventDriver)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RESTAURANT_API_URL", "http://api.local/v1/")
	t.Setenv("TAX_RATE", "0.08")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://api.local/v1", cfg.RestaurantAPIURL)
	assert.Equal(t, 0.08, cfg.TaxRate)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 50, cfg.RateLimitBurst)
	assert.True(t, cfg.CookieSecure)
}
