package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 50052, cfg.GRPCPort)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "cart-storage", cfg.Storage.SlotPrefix)
	assert.Equal(t, 2*time.Second, cfg.Storage.SaveTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Storage.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Storage.EvictInterval)
	assert.Equal(t, "orders-placed", cfg.OrdersTopic)
	assert.Equal(t, "checkout-outbox", cfg.OutboxTopic)
	assert.Equal(t, "cart-service-consumer", cfg.ConsumerGroup)
	assert.False(t, cfg.KafkaEnabled())
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CART_SERVICE_HTTP_PORT", "9090")
	t.Setenv("CART_STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_TTL", "1h")
	t.Setenv("CART_SAVE_TIMEOUT", "500ms")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LATEST_APP_VERSION", "2.3.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, time.Hour, cfg.Storage.RedisTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Storage.SaveTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "2.3.1", cfg.LatestAppVersion)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown backend": {"CART_STORAGE_BACKEND", "localstorage"},
		"bad port":        {"CART_SERVICE_HTTP_PORT", "70000"},
		"bad duration":    {"CART_SAVE_TIMEOUT", "soon"},
		"zero timeout":    {"CART_SAVE_TIMEOUT", "0s"},
		"zero idle ttl":   {"CART_IDLE_TTL", "0s"},
		"zero interval":   {"CART_EVICT_INTERVAL", "0s"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
