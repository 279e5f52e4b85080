package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath   string `yaml:"database_path"`
	StorageBackend string `yaml:"storage_backend"`
	DataDir        string `yaml:"data_dir"`
	Port           string `yaml:"port"`

	AssistantDelay time.Duration `yaml:"assistant_delay"`
	EndpointDelay  time.Duration `yaml:"endpoint_delay"`

	ShareBaseURL    string `yaml:"share_base_url"`
	ShareSigningKey string `yaml:"share_signing_key"`

	// Telegram Config
	TelegramBotToken       string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL     string  `yaml:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `yaml:"telegram_allowed_user_ids"`
	AdminTelegramID        int64   `yaml:"admin_telegram_id"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DatabasePath:   "data/shopping.db",
		StorageBackend: BackendSQLite,
		DataDir:        "data/records",
		Port:           "8080",
		AssistantDelay: 1500 * time.Millisecond,
		EndpointDelay:  500 * time.Millisecond,
		ShareBaseURL:   "http://localhost:8080",
	}
}

// NewFromEnv builds the configuration from defaults, then the YAML file
// named by CONFIG_FILE (if any), then environment variables.
func NewFromEnv() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// Unmarshal over the defaults so absent keys keep them.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("DATABASE_PATH", &c.DatabasePath)
	setString("STORAGE_BACKEND", &c.StorageBackend)
	setString("DATA_DIR", &c.DataDir)
	setString("PORT", &c.Port)
	setString("SHARE_BASE_URL", &c.ShareBaseURL)
	setString("SHARE_SIGNING_KEY", &c.ShareSigningKey)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramBotToken)
	setString("TELEGRAM_WEBHOOK_URL", &c.TelegramWebhookURL)

	for key, dst := range map[string]*time.Duration{
		"ASSISTANT_DELAY": &c.AssistantDelay,
		"ENDPOINT_DELAY":  &c.EndpointDelay,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
		}
		c.TelegramAllowedUserIDs = ids
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		c.AdminTelegramID = id
	}
	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.AssistantDelay < 0 || c.EndpointDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// DataPath is the directory holding the persisted records of the
// configured backend.
func (c *Config) DataPath() string {
	if c.StorageBackend == BackendFile {
		return c.DataDir
	}
	return filepath.Dir(c.DatabasePath)
}

// RequireTelegram checks the settings the bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	return nil
}

// IsUserAllowed reports whether a Telegram user may talk to the bot. An
// empty allow list lets everyone in.
func (c *Config) IsUserAllowed(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}
