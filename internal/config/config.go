// Package config provides functionality for managing persistent settings in JSON configuration files.
// It supports organizing settings into sections, similar to INI files, but using JSON as the storage
// format. Each section is a top-level key in the JSON object containing key-value pairs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ProjectFileName is the project configuration file inside the scanned directory.
	ProjectFileName = ".promptpal"

	configType = "json"
)

// Config manages application configuration, automatically storing values in either
// global or project-specific locations based on the key.
type Config struct {
	globalPath  string
	projectPath string
	global      map[string]map[string]string
	project     map[string]map[string]string
}

// Specify shared keys. These are stored in the global configuration file and are accessible
// to all projects.
var globalKeys = map[string]bool{
	"tokens.model": true,
}

// New creates a new Config instance. If projectPath is empty, only global config
// is used. Global config is stored in ~/.config/promptpal/config.json, while
// project config is stored in .promptpal in the project directory.
func New(projectPath string) (*Config, error) {
	globalPath, err := getGlobalConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine global config path: %w", err)
	}
	return newWithPaths(filepath.Join(globalPath, "config.json"), projectPath)
}

func newWithPaths(globalFile, projectPath string) (*Config, error) {
	config := &Config{
		globalPath: globalFile,
		global:     make(map[string]map[string]string),
		project:    make(map[string]map[string]string),
	}

	if err := config.load(config.globalPath, config.global); err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}

	if projectPath != "" {
		config.projectPath = filepath.Join(projectPath, ProjectFileName)
		if err := config.load(config.projectPath, config.project); err != nil {
			return nil, fmt.Errorf("failed to load project config: %w", err)
		}
	}

	return config, nil
}

// Has checks if a configuration key exists
func (c *Config) Has(key string) bool {
	section, subKey := splitKey(key)
	sectionData, exists := c.store(key)[section]
	if !exists {
		return false
	}
	_, exists = sectionData[subKey]
	return exists
}

// Get retrieves a configuration value. Returns empty string if not found.
func (c *Config) Get(key string) string {
	section, subKey := splitKey(key)
	return c.store(key)[section][subKey]
}

// GetBool returns the value of key parsed as a boolean, or fallback when the
// key is unset or not a boolean.
func (c *Config) GetBool(key string, fallback bool) bool {
	switch c.Get(key) {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}

// Set stores a configuration value and persists it to the appropriate location
func (c *Config) Set(key, value string) error {
	section, subKey := splitKey(key)
	data := c.store(key)
	if _, exists := data[section]; !exists {
		data[section] = make(map[string]string)
	}
	data[section][subKey] = value
	return c.saveFor(key)
}

// Delete removes a configuration value
func (c *Config) Delete(key string) error {
	section, subKey := splitKey(key)
	data := c.store(key)
	if sectionData, exists := data[section]; exists {
		delete(sectionData, subKey)
		if len(sectionData) == 0 {
			delete(data, section)
		}
	}
	return c.saveFor(key)
}

// GetAllKeys returns all configuration keys as a sorted slice of strings
func (c *Config) GetAllKeys() []string {
	var keys []string
	for _, data := range []map[string]map[string]string{c.global, c.project} {
		for section, sectionData := range data {
			for subKey := range sectionData {
				keys = append(keys, section+"."+subKey)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// IsGlobalKey checks if a key is stored in global config
func (c *Config) IsGlobalKey(key string) bool {
	return globalKeys[key]
}

// MARK: Internal helper functions

func splitKey(key string) (section, subKey string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return "", key
	}
	return parts[0], parts[1]
}

func (c *Config) store(key string) map[string]map[string]string {
	if globalKeys[key] {
		return c.global
	}
	return c.project
}

func (c *Config) saveFor(key string) error {
	if globalKeys[key] {
		return c.save(c.globalPath, c.global)
	}
	if c.projectPath == "" {
		return errors.New("no project directory configured")
	}
	return c.save(c.projectPath, c.project)
}

// load reads path into data. A missing file leaves data empty.
func (c *Config) load(path string, data map[string]map[string]string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for section, values := range v.AllSettings() {
		entries, ok := values.(map[string]any)
		if !ok {
			return fmt.Errorf("section %q is not an object", section)
		}
		data[section] = make(map[string]string, len(entries))
		for subKey, value := range entries {
			data[section][subKey] = fmt.Sprint(value)
		}
	}
	return nil
}

func (c *Config) save(path string, data map[string]map[string]string) error {
	v := viper.New()
	v.SetConfigType(configType)
	for section, sectionData := range data {
		for subKey, value := range sectionData {
			v.Set(section+"."+subKey, value)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func getGlobalConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin", "linux", "freebsd", "openbsd", "netbsd":
		// Check XDG_CONFIG_HOME first
		if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
			configDir = xdgHome
		} else {
			// Fall back to ~/.config
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}

	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}

	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "promptpal"), nil
}
