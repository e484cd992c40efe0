package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pagesync/internal/app/config"
)

func noConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	noConfigFile(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/pages")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, config.BrokerNATS, cfg.Broker)
	require.Equal(t, config.StoreFS, cfg.Page.Store)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 10*time.Second, cfg.HandlerTimeout)
	require.Equal(t, 10, cfg.NATS.MaxDeliver)
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	noConfigFile(t)
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownBroker(t *testing.T) {
	noConfigFile(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/pages")
	t.Setenv("BROKER", "rabbit")

	_, err := config.Load()
	require.ErrorContains(t, err, "BROKER")
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://file/pages
broker: kafka
workers: 8
page:
  store: redis
kafka:
  brokers: ["k1:9092", "k2:9092"]
`), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("WORKERS", "2")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://file/pages", cfg.DatabaseURL)
	require.Equal(t, config.BrokerKafka, cfg.Broker)
	require.Equal(t, config.StoreRedis, cfg.Page.Store)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 2, cfg.Workers)
}
