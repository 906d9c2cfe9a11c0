package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FeedTransportWebSocket = "websocket"
	FeedTransportSocketIO  = "socketio"

	DefaultConfirmationTimeout = 10 * time.Minute
)

type Config struct {
	Network             string        `yaml:"network"`
	Endpoint            string        `yaml:"endpoint"`
	FeedURL             string        `yaml:"feed_url"`
	FeedTransport       string        `yaml:"feed_transport"`
	GeneratorPrivateKey string        `yaml:"generator_private_key"`
	InitiatorPrivateKey string        `yaml:"initiator_private_key"`
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout"`
	LogLevel            string        `yaml:"log_level"`
}

var dotenvLoadOnce sync.Once

// ConfigFromEnv builds a Config from APOSTILLE_* variables, loading the
// nearest .env file first.
func ConfigFromEnv() (Config, error) {
	loadDotEnvIfPresent()

	config := Config{}
	if err := applyEnv(&config); err != nil {
		return Config{}, err
	}
	return config.normalize()
}

// LoadConfigFile reads a YAML configuration file. Environment variables take
// precedence over values from the file.
func LoadConfigFile(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	loadDotEnvIfPresent()
	if err := applyEnv(&config); err != nil {
		return Config{}, err
	}
	return config.normalize()
}

func applyEnv(config *Config) error {
	if network := firstNonEmptyEnv("APOSTILLE_NETWORK"); network != "" {
		config.Network = network
	}

	normalized, err := NormalizeNetwork(config.Network)
	if err != nil {
		return err
	}
	scope := strings.ToUpper(strings.ReplaceAll(normalized, "-", "_")) + "_"

	if endpoint := firstNonEmptyEnv(scope+"APOSTILLE_ENDPOINT", "APOSTILLE_ENDPOINT"); endpoint != "" {
		config.Endpoint = endpoint
	}
	if feedURL := firstNonEmptyEnv(scope+"APOSTILLE_FEED_URL", "APOSTILLE_FEED_URL"); feedURL != "" {
		config.FeedURL = feedURL
	}
	if transport := firstNonEmptyEnv("APOSTILLE_FEED_TRANSPORT"); transport != "" {
		config.FeedTransport = transport
	}
	if key := firstNonEmptyEnv(scope+"APOSTILLE_GENERATOR_KEY", "APOSTILLE_GENERATOR_KEY"); key != "" {
		config.GeneratorPrivateKey = key
	}
	if key := firstNonEmptyEnv(scope+"APOSTILLE_INITIATOR_KEY", "APOSTILLE_INITIATOR_KEY"); key != "" {
		config.InitiatorPrivateKey = key
	}
	if level := firstNonEmptyEnv("APOSTILLE_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}
	if rawTimeout := firstNonEmptyEnv("APOSTILLE_CONFIRMATION_TIMEOUT"); rawTimeout != "" {
		timeout, err := time.ParseDuration(rawTimeout)
		if err != nil {
			return fmt.Errorf("invalid APOSTILLE_CONFIRMATION_TIMEOUT: %w", err)
		}
		config.ConfirmationTimeout = timeout
	}
	return nil
}

func (c Config) normalize() (Config, error) {
	network, err := NormalizeNetwork(c.Network)
	if err != nil {
		return Config{}, err
	}
	c.Network = network
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.FeedURL = strings.TrimSpace(c.FeedURL)

	transport := strings.ToLower(strings.TrimSpace(c.FeedTransport))
	switch transport {
	case "", FeedTransportWebSocket:
		c.FeedTransport = FeedTransportWebSocket
	case FeedTransportSocketIO, "socket.io":
		c.FeedTransport = FeedTransportSocketIO
	default:
		return Config{}, fmt.Errorf("unsupported feed transport %q", c.FeedTransport)
	}

	if c.ConfirmationTimeout < 0 {
		return Config{}, fmt.Errorf("confirmation timeout cannot be negative")
	}
	if c.ConfirmationTimeout == 0 {
		c.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	return c, nil
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		current, err := os.Getwd()
		if err != nil {
			return
		}
		for {
			candidate := filepath.Join(current, ".env")
			if _, statErr := os.Stat(candidate); statErr == nil {
				_ = godotenv.Load(candidate)
				return
			}

			parent := filepath.Dir(current)
			if parent == current {
				return
			}
			current = parent
		}
	})
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}
