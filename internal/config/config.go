package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type SinkType string

const (
	SinkConsole  SinkType = "console"
	SinkDatadog  SinkType = "datadog"
	SinkNewRelic SinkType = "newrelic"
)

type ShipperConfig struct {
	MaxBatchSize  int           `yaml:"max_batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type DatadogConfig struct {
	Site   string `yaml:"site"`
	Source string `yaml:"source"`
}

type NewRelicConfig struct {
	Region string `yaml:"region"`
}

type SimulatorConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	MockErrors        bool          `yaml:"mock_errors"`
}

type Config struct {
	ServerAddr string          `yaml:"server_addr"`
	Service    string          `yaml:"service"`
	Host       string          `yaml:"host"`
	Env        string          `yaml:"env"`
	Sink       SinkType        `yaml:"sink"`
	APIKeyFile string          `yaml:"api_key_file"`
	Shipper    ShipperConfig   `yaml:"shipper"`
	Datadog    DatadogConfig   `yaml:"datadog"`
	NewRelic   NewRelicConfig  `yaml:"newrelic"`
	Simulator  SimulatorConfig `yaml:"simulator"`
	TailFiles  []string        `yaml:"tail_files"`

	// APIKey is the opaque credential for the remote sink, injected at
	// startup from the environment or from APIKeyFile. Never read from
	// the YAML file itself.
	APIKey string `yaml:"-"`
}

func defaults() Config {
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}

	return Config{
		ServerAddr: ":8080",
		Service:    "logship-demo",
		Host:       host,
		Env:        "demo",
		Sink:       SinkConsole,
		Shipper: ShipperConfig{
			MaxBatchSize:  10,
			FlushInterval: 5 * time.Second,
		},
		Datadog: DatadogConfig{
			Site:   "datadoghq.com",
			Source: "logship",
		},
		NewRelic: NewRelicConfig{
			Region: "US",
		},
		Simulator: SimulatorConfig{
			HeartbeatInterval: 30 * time.Second,
			MockErrors:        true,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// and environment variable overrides, then resolves the API key and
// validates the result.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.resolveAPIKey(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.Service = getEnv("SERVICE_NAME", c.Service)
	c.Host = getEnv("HOST_NAME", c.Host)
	c.Env = getEnv("ENVIRONMENT", c.Env)
	c.Sink = SinkType(strings.ToLower(getEnv("SINK", string(c.Sink))))
	c.APIKeyFile = getEnv("API_KEY_FILE", c.APIKeyFile)

	c.Shipper.MaxBatchSize = getEnvAsInt("BATCH_SIZE", c.Shipper.MaxBatchSize)
	c.Shipper.FlushInterval = getEnvAsDuration("FLUSH_INTERVAL", c.Shipper.FlushInterval)

	c.Datadog.Site = getEnv("DD_SITE", c.Datadog.Site)
	c.Datadog.Source = getEnv("DD_SOURCE", c.Datadog.Source)
	c.NewRelic.Region = getEnv("NR_REGION", c.NewRelic.Region)

	c.Simulator.HeartbeatInterval = getEnvAsDuration("HEARTBEAT_INTERVAL", c.Simulator.HeartbeatInterval)
	c.Simulator.MockErrors = getEnvAsBool("MOCK_ERRORS", c.Simulator.MockErrors)

	if files := os.Getenv("TAIL_FILES"); files != "" {
		c.TailFiles = strings.Split(files, ",")
	}
}

// resolveAPIKey treats the credential as an opaque string supplied by
// an external collaborator: the API_KEY environment variable wins,
// otherwise the contents of APIKeyFile.
func (c *Config) resolveAPIKey() error {
	if key := os.Getenv("API_KEY"); key != "" {
		c.APIKey = key
		return nil
	}

	if c.APIKeyFile != "" {
		data, err := os.ReadFile(c.APIKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read API key file: %w", err)
		}
		c.APIKey = strings.TrimSpace(string(data))
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Sink {
	case SinkConsole:
	case SinkDatadog, SinkNewRelic:
		if c.APIKey == "" {
			return fmt.Errorf("sink %q requires an API key (set API_KEY or api_key_file)", c.Sink)
		}
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}

	if c.Shipper.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive, got %d", c.Shipper.MaxBatchSize)
	}
	if c.Shipper.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %s", c.Shipper.FlushInterval)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultValue
}
