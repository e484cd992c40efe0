package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	MigrationsDir  string        `yaml:"migrations_dir" env:"MIGRATIONS_DIR" env-default:"migrations"`
	HTTPAddr       string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Workers        int           `yaml:"workers" env:"WORKERS" env-default:"4"`
	HandlerTimeout time.Duration `yaml:"handler_timeout" env:"HANDLER_TIMEOUT" env-default:"10s"`

	Broker string `yaml:"broker" env:"BROKER" env-default:"nats"`
	NATS   NATS   `yaml:"nats"`
	Kafka  Kafka  `yaml:"kafka"`

	Page  Page  `yaml:"page"`
	Redis Redis `yaml:"redis"`
}

type NATS struct {
	URL          string        `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	StreamPrefix string        `yaml:"stream_prefix" env:"NATS_STREAM_PREFIX" env-default:""`
	MaxDeliver   int           `yaml:"max_deliver" env:"NATS_MAX_DELIVER" env-default:"10"`
	AckWait      time.Duration `yaml:"ack_wait" env:"NATS_ACK_WAIT" env-default:"30s"`
}

type Kafka struct {
	Brokers    []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	MaxRetries uint64   `yaml:"max_retries" env:"KAFKA_MAX_RETRIES" env-default:"5"`
}

type Page struct {
	Store    string `yaml:"store" env:"PAGE_STORE" env-default:"fs"`
	Dir      string `yaml:"dir" env:"PAGE_DIR" env-default:"./pages"`
	Template string `yaml:"template" env:"PAGE_TEMPLATE" env-default:""`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

const (
	BrokerNATS  = "nats"
	BrokerKafka = "kafka"

	StoreFS    = "fs"
	StoreRedis = "redis"
)

// Load reads the YAML file named by CONFIG_PATH (default config.yaml) when it exists,
// then applies environment overrides.
func Load() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config error: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.Broker {
	case BrokerNATS, BrokerKafka:
	default:
		return fmt.Errorf("BROKER must be %q or %q, got %q", BrokerNATS, BrokerKafka, c.Broker)
	}
	switch c.Page.Store {
	case StoreFS, StoreRedis:
	default:
		return fmt.Errorf("PAGE_STORE must be %q or %q, got %q", StoreFS, StoreRedis, c.Page.Store)
	}
	if c.Workers <= 0 {
		return errors.New("WORKERS must be positive")
	}
	return nil
}
