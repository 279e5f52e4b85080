package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/shopping.db" {
			t.Errorf("Expected DatabasePath to be 'data/shopping.db', got '%s'", cfg.DatabasePath)
		}
		if cfg.StorageBackend != BackendSQLite {
			t.Errorf("Expected sqlite backend, got '%s'", cfg.StorageBackend)
		}
		if cfg.AssistantDelay != 1500*time.Millisecond || cfg.EndpointDelay != 500*time.Millisecond {
			t.Errorf("Unexpected delays %v / %v", cfg.AssistantDelay, cfg.EndpointDelay)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		setEnv("STORAGE_BACKEND", "file")
		setEnv("DATA_DIR", "/tmp/records")
		setEnv("ASSISTANT_DELAY", "0s")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		setEnv("ADMIN_TELEGRAM_ID", "12")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.StorageBackend != BackendFile || cfg.DataDir != "/tmp/records" {
			t.Errorf("Expected file backend in /tmp/records, got %s %s", cfg.StorageBackend, cfg.DataDir)
		}
		if cfg.AssistantDelay != 0 {
			t.Errorf("Expected no assistant delay, got %v", cfg.AssistantDelay)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 34 {
			t.Errorf("Unexpected allowed ids %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 12 {
			t.Errorf("Expected admin 12, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("YAMLOverlay", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "port: \"9090\"\nendpoint_delay: 250ms\nshare_base_url: https://listas.example\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		setEnv("CONFIG_FILE", path)
		setEnv("PORT", "7070")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.EndpointDelay != 250*time.Millisecond {
			t.Errorf("Expected endpoint delay from file, got %v", cfg.EndpointDelay)
		}
		if cfg.ShareBaseURL != "https://listas.example" {
			t.Errorf("Expected share base URL from file, got '%s'", cfg.ShareBaseURL)
		}
		if cfg.Port != "7070" {
			t.Errorf("Expected env to win over file, got port '%s'", cfg.Port)
		}
		if cfg.DatabasePath != "data/shopping.db" {
			t.Errorf("Expected keys absent from the file to keep defaults, got '%s'", cfg.DatabasePath)
		}
	})

	t.Run("InvalidBackend", func(t *testing.T) {
		setEnv("STORAGE_BACKEND", "redis")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for an unknown backend, got nil")
		}
	})

	t.Run("InvalidDelay", func(t *testing.T) {
		setEnv("ENDPOINT_DELAY", "soon")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for an unparsable delay, got nil")
		}
	})

	t.Run("MissingConfigFile", func(t *testing.T) {
		setEnv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a missing config file, got nil")
		}
	})
}

func TestRequireTelegram(t *testing.T) {
	cfg := Default()
	err := cfg.RequireTelegram()
	if err == nil {
		t.Fatal("Expected an error without a bot token, got nil")
	}
	expectedError := "TELEGRAM_BOT_TOKEN environment variable not set"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}

	cfg.TelegramBotToken = "token"
	if err := cfg.RequireTelegram(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestIsUserAllowed(t *testing.T) {
	cfg := Default()
	if !cfg.IsUserAllowed(99) {
		t.Error("Expected everyone to be allowed with an empty list")
	}
	cfg.TelegramAllowedUserIDs = []int64{1, 2}
	if !cfg.IsUserAllowed(2) || cfg.IsUserAllowed(3) {
		t.Error("Expected only listed users to be allowed")
	}
}

func TestDataPath(t *testing.T) {
	cfg := Default()
	if got := cfg.DataPath(); got != "data" {
		t.Errorf("Expected the database directory, got '%s'", got)
	}
	cfg.StorageBackend = BackendFile
	if got := cfg.DataPath(); got != "data/records" {
		t.Errorf("Expected the records directory, got '%s'", got)
	}
}
