package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/validate"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "wifid"
	configFile = "config.yaml"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/wifid or $HOME/.config/wifid
//   - macOS: $HOME/.config/wifid (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\wifid
func GetConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// GetDataDir returns the OS-appropriate default data directory.
//   - Linux: $XDG_DATA_HOME/wifid or $HOME/.local/share/wifid
//   - macOS: $HOME/.local/share/wifid
//   - Windows: %LOCALAPPDATA%\wifid
func GetDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func userDir(xdgVar, homeRel string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, homeRel, appName), nil

	default:
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, homeRel, appName), nil
	}
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration at path, or at GetConfigPath when path is empty.
// Fields missing from the file keep their Default values; a missing file yields
// Default. The data directory falls back to GetDataDir.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// keep defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.DataDir == "" {
		dir, err := GetDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Namespace == "" {
		return errors.New("namespace must not be empty")
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("loop_interval must be positive, got %s", c.LoopInterval)
	}
	if !validate.IsPortValid(c.UpdatePort) {
		return fmt.Errorf("update_port %d out of range", c.UpdatePort)
	}

	for _, name := range c.Services {
		if !isKnownService(name) {
			return fmt.Errorf("unknown service %q (known: %v)", name, KnownServices)
		}
	}

	d := c.Defaults
	checks := []struct {
		ok    bool
		field string
	}{
		{validate.IsHostnameValid(d.Hostname), "defaults.hostname"},
		{validate.IsPortValid(int(d.HTTPPort)), "defaults.http_port"},
		{validate.IsSSIDValid(d.StationSSID), "defaults.station_ssid"},
		{validate.IsPassphraseValid(d.StationPassphrase), "defaults.station_passphrase"},
		{validate.IsIPv4Valid(d.StationIP), "defaults.station_ip"},
		{validate.IsIPv4Valid(d.StationGateway), "defaults.station_gateway"},
		{validate.IsIPv4Valid(d.StationNetmask), "defaults.station_netmask"},
		{validate.IsSSIDValid(d.APSSID), "defaults.ap_ssid"},
		{validate.IsPassphraseValid(d.APPassphrase), "defaults.ap_passphrase"},
		{validate.IsIPv4Valid(d.APIP), "defaults.ap_ip"},
		{validate.IsIPv4Valid(d.APNetmask), "defaults.ap_netmask"},
		{validate.IsChannelValid(int(d.APChannel)), "defaults.ap_channel"},
		{netstack.Mode(d.RadioMode).Valid(), "defaults.radio_mode"},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%s is not valid", check.field)
		}
	}

	for _, n := range c.Networks {
		if !validate.IsSSIDValid(n.SSID) {
			return fmt.Errorf("network ssid %q is not valid", n.SSID)
		}
	}
	return nil
}

// Save writes the configuration to path.
// Performs an atomic write to prevent corruption on crash.
func (c *Config) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# wifid configuration file
#
# Device settings changed by configuration commands are stored in the settings
# database under data_dir, not here. The defaults section only applies to
# settings that were never written.

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

func isKnownService(name string) bool {
	for _, s := range KnownServices {
		if s == name {
			return true
		}
	}
	return false
}
