package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
)

// Config holds all the application's configuration parameters
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	PageSize       int    `json:"page_size"`
	DaysBack       int    `json:"days_back"`
	Query          string `json:"query"`
	SortBy         string `json:"sort_by"`
	KafkaBroker    string `json:"kafka_broker"`
	KafkaTopic     string `json:"kafka_topic"`
}

// DefaultConfig returns a configuration with sensible defaults.
// KafkaBroker defaults to empty, which disables publishing.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://newsapi.org/v2/everything",
		TimeoutSeconds: 30,
		PageSize:       100,
		DaysBack:       1,
		Query:          "human trafficking",
		SortBy:         "publishedAt",
		KafkaBroker:    "",
		KafkaTopic:     "news_articles",
	}
}

// LoadConfig reads the configuration from a JSON file
func LoadConfig(filePath string) (*Config, error) {
	if filePath == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", filePath, err)
	}
	defer file.Close()

	bytes, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
	}

	// Start with default config and override with file values
	cfg := DefaultConfig()
	if err := json.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config JSON from '%s': %w", filePath, err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in '%s': %w", filePath, err)
	}

	return cfg, nil
}

// LoadConfigFromEnv loads configuration from environment variables with fallback to defaults
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if val := os.Getenv("NEWS_BASE_URL"); val != "" {
		cfg.BaseURL = val
	}

	if val := os.Getenv("NEWS_TIMEOUT"); val != "" {
		if parsed, err := parseIntFromEnv(val); err == nil && parsed > 0 {
			cfg.TimeoutSeconds = parsed
		}
	}

	if val := os.Getenv("NEWS_PAGE_SIZE"); val != "" {
		if parsed, err := parseIntFromEnv(val); err == nil && parsed > 0 && parsed <= 100 {
			cfg.PageSize = parsed
		}
	}

	if val := os.Getenv("NEWS_DAYS_BACK"); val != "" {
		if parsed, err := parseIntFromEnv(val); err == nil && parsed >= 0 {
			cfg.DaysBack = parsed
		}
	}

	if val := os.Getenv("NEWS_QUERY"); val != "" {
		cfg.Query = val
	}

	if val := os.Getenv("NEWS_SORT_BY"); val != "" {
		cfg.SortBy = val
	}

	if val := os.Getenv("KAFKA_BROKER"); val != "" {
		cfg.KafkaBroker = val
	}

	if val := os.Getenv("KAFKA_TOPIC"); val != "" {
		cfg.KafkaTopic = val
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}

	if c.PageSize <= 0 || c.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", c.PageSize)
	}

	if c.DaysBack < 0 {
		return fmt.Errorf("days_back cannot be negative, got %d", c.DaysBack)
	}

	if c.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}

	if c.SortBy == "" {
		return fmt.Errorf("sort_by cannot be empty")
	}

	// An empty broker means publishing is disabled; a configured broker
	// needs a topic to publish to.
	if c.KafkaBroker != "" && c.KafkaTopic == "" {
		return fmt.Errorf("kafka_topic cannot be empty when kafka_broker is set")
	}

	return nil
}

// PublishingEnabled reports whether fetched articles should be handed
// off to Kafka.
func (c *Config) PublishingEnabled() bool {
	return c.KafkaBroker != ""
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filePath string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := ioutil.WriteFile(filePath, bytes, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", filePath, err)
	}

	return nil
}

// parseIntFromEnv is a helper function to parse integers from environment variables
func parseIntFromEnv(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format: %w", err)
	}

	return result, nil
}
