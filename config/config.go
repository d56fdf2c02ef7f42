package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DealerID    string
	FrontendURL string
	API         APIConfig
	Scheduler   SchedulerConfig
	Provider    ProviderConfig
	S3          S3Config
	DataDir     string
	LogFile     string
}

type APIConfig struct {
	Host string
	Port int
}

type SchedulerConfig struct {
	IntervalHours int
	Cron          string
}

// ProviderConfig describes the upstream marketplace. Values can be
// overridden by the YAML file at PROVIDER_CONFIG.
type ProviderConfig struct {
	Name            string        `yaml:"name"`
	SearchURL       string        `yaml:"search_url"`
	DealerParam     string        `yaml:"dealer_param"`
	ItemURLTemplate string        `yaml:"item_url_template"`
	ImagePattern    string        `yaml:"image_pattern"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
}

// S3Config enables publishing each snapshot to S3-compatible storage.
// Publishing is off when Bucket is empty.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for DO Spaces, R2, MinIO
	Key             string
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

func DefaultProvider() ProviderConfig {
	return ProviderConfig{
		Name:            "blocket",
		SearchURL:       "https://blocket-api.se/v1/search/car",
		DealerParam:     "org_id",
		ItemURLTemplate: "https://www.blocket.se/mobility/item/%s",
		ImagePattern:    `https://images\.blocketcdn\.se/dynamic/default/item/[^"'>\s]+`,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Timeout:         60 * time.Second,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DealerID:    getEnv("BLOCKET_DEALER_ID", "7514308"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		API: APIConfig{
			Host: getEnv("API_HOST", "0.0.0.0"),
			Port: getEnvInt("API_PORT", 8000),
		},
		Scheduler: SchedulerConfig{
			IntervalHours: getEnvInt("SYNC_INTERVAL_HOURS", 24),
			Cron:          os.Getenv("SYNC_CRON"),
		},
		Provider: DefaultProvider(),
		S3: S3Config{
			Bucket:          os.Getenv("SNAPSHOT_S3_BUCKET"),
			Region:          getEnv("SNAPSHOT_S3_REGION", "eu-north-1"),
			Endpoint:        os.Getenv("SNAPSHOT_S3_ENDPOINT"),
			Key:             getEnv("SNAPSHOT_S3_KEY", "cars.json"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		DataDir: getEnv("DATA_DIR", "data"),
		LogFile: getEnv("LOG_FILE", "sync.log"),
	}

	if cfg.Scheduler.IntervalHours <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL_HOURS must be positive, got %d", cfg.Scheduler.IntervalHours)
	}

	if err := cfg.loadProvider(getEnv("PROVIDER_CONFIG", filepath.Join("config", "provider.yaml"))); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SnapshotPath is the fixed location of the persisted snapshot.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "cars.json")
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// ScheduleDescription is the human-readable schedule reported by the status endpoint.
func (c *Config) ScheduleDescription() string {
	if c.Scheduler.Cron != "" {
		return "Scheduled by cron: " + c.Scheduler.Cron
	}
	return fmt.Sprintf("Scheduled every %d hours", c.Scheduler.IntervalHours)
}

// loadProvider overlays non-empty fields from the YAML file on top of the defaults.
// A missing file is not an error.
func (c *Config) loadProvider(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read provider config: %w", err)
	}

	var override ProviderConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parse provider config %s: %w", path, err)
	}

	if override.Name != "" {
		c.Provider.Name = override.Name
	}
	if override.SearchURL != "" {
		c.Provider.SearchURL = override.SearchURL
	}
	if override.DealerParam != "" {
		c.Provider.DealerParam = override.DealerParam
	}
	if override.ItemURLTemplate != "" {
		c.Provider.ItemURLTemplate = override.ItemURLTemplate
	}
	if override.ImagePattern != "" {
		c.Provider.ImagePattern = override.ImagePattern
	}
	if override.UserAgent != "" {
		c.Provider.UserAgent = override.UserAgent
	}
	if override.Timeout > 0 {
		c.Provider.Timeout = override.Timeout
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
