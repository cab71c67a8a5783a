package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	// Create temporary directory for test files
	tmpDir, err := os.MkdirTemp("", "promptpal-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	globalFile := filepath.Join(tmpDir, "global", "config.json")
	projectDir := filepath.Join(tmpDir, "project")
	projectFile := filepath.Join(projectDir, ProjectFileName)

	t.Run("new config file", func(t *testing.T) {
		cfg, err := newWithPaths(globalFile, projectDir)
		if err != nil {
			t.Fatalf("Failed to create config: %v", err)
		}

		if err := cfg.Set("content.preview_length", "100"); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}

		// Verify file contents
		data, err := os.ReadFile(projectFile)
		if err != nil {
			t.Fatalf("Failed to read config file: %v", err)
		}

		var config map[string]map[string]string
		if err := json.Unmarshal(data, &config); err != nil {
			t.Fatalf("Failed to parse config file: %v", err)
		}

		if config["content"]["preview_length"] != "100" {
			t.Errorf("Expected value '100', got '%s'", config["content"]["preview_length"])
		}
	})

	t.Run("global keys go to the global file", func(t *testing.T) {
		cfg, err := newWithPaths(globalFile, projectDir)
		if err != nil {
			t.Fatalf("Failed to create config: %v", err)
		}

		if !cfg.IsGlobalKey("tokens.model") {
			t.Fatal("Expected tokens.model to be global")
		}
		if err := cfg.Set("tokens.model", "gpt-4"); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}
		if _, err := os.Stat(globalFile); err != nil {
			t.Errorf("Expected global config file to exist: %v", err)
		}
	})

	t.Run("load existing config", func(t *testing.T) {
		cfg, err := newWithPaths(globalFile, projectDir)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}

		if got := cfg.Get("content.preview_length"); got != "100" {
			t.Errorf("Expected value '100', got '%s'", got)
		}
		if got := cfg.Get("tokens.model"); got != "gpt-4" {
			t.Errorf("Expected value 'gpt-4', got '%s'", got)
		}
		if !cfg.Has("content.preview_length") || cfg.Has("content.full") {
			t.Error("Unexpected Has results")
		}

		keys := cfg.GetAllKeys()
		if len(keys) != 2 || keys[0] != "content.preview_length" || keys[1] != "tokens.model" {
			t.Errorf("Unexpected keys: %v", keys)
		}
	})

	t.Run("bool values", func(t *testing.T) {
		cfg, err := newWithPaths(globalFile, projectDir)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}

		if !cfg.GetBool("processor.follow_symlinks", true) {
			t.Error("Expected fallback for unset key")
		}
		if err := cfg.Set("processor.follow_symlinks", "false"); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}
		if cfg.GetBool("processor.follow_symlinks", true) {
			t.Error("Expected stored false value")
		}
	})

	t.Run("delete", func(t *testing.T) {
		cfg, err := newWithPaths(globalFile, projectDir)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if err := cfg.Delete("content.preview_length"); err != nil {
			t.Fatalf("Failed to delete key: %v", err)
		}

		reloaded, err := newWithPaths(globalFile, projectDir)
		if err != nil {
			t.Fatalf("Failed to reload config: %v", err)
		}
		if reloaded.Has("content.preview_length") {
			t.Error("Expected key to be removed")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if err := os.WriteFile(projectFile, []byte("invalid json"), 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		if _, err := newWithPaths(globalFile, projectDir); err == nil {
			t.Error("Expected error for invalid JSON, got nil")
		}
	})
}
