package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. QUIZ_REDIS_ADDR.
const EnvPrefix = "QUIZ_"

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
	NATS     NATSConfig     `yaml:"nats" envPrefix:"NATS_"`
	Quiz     QuizConfig     `yaml:"quiz" envPrefix:"SESSION_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port      string `yaml:"port" env:"PORT"`
	QueueSize int    `yaml:"queueSize" env:"QUEUE_SIZE"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"URL"`
}

// NATSConfig enables the event mirror when URL is set. A zero MaxReconnects
// retries forever.
type NATSConfig struct {
	URL           string `yaml:"url" env:"URL"`
	Subject       string `yaml:"subject" env:"SUBJECT"`
	MaxReconnects int    `yaml:"maxReconnects" env:"MAX_RECONNECTS"`
	ReconnectWait string `yaml:"reconnectWait" env:"RECONNECT_WAIT"`
}

// QuizConfig tunes the session. Durations are Go duration strings.
type QuizConfig struct {
	TimeLimit        string `yaml:"timeLimit" env:"TIME_LIMIT"`
	Tick             string `yaml:"tick" env:"TICK"`
	PointsPerCorrect int    `yaml:"pointsPerCorrect" env:"POINTS_PER_CORRECT"`
	PageSize         int    `yaml:"pageSize" env:"PAGE_SIZE"`
	RoundsTTL        string `yaml:"roundsTTL" env:"ROUNDS_TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Pretty bool   `yaml:"pretty" env:"PRETTY"`
}

// Load reads YAML config from path and applies QUIZ_* environment overrides.
// A missing file is not an error; the environment alone can configure the service.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
