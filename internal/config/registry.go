package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "tunerdash"
	configFile = "config.yaml"

	// registryVersion is the only file layout this build understands
	registryVersion = 1
)

var (
	mu sync.Mutex

	// Loaded lazily by LoadRegistry and shared afterwards
	loaded    *Registry
	loadedErr error
	loadOnce  sync.Once

	// Set by --config; takes precedence over the platform path
	configPathOverride string
)

const fileHeader = `# Tunerdash Configuration File
# Dashboard preferences and the tuners seen on the network.
# Command line flags override these values.
#
# Location: %s

`

// GetConfigDir returns the directory holding the config file:
//   - Linux and others: $XDG_CONFIG_HOME/tunerdash, else ~/.config/tunerdash
//   - macOS: ~/.config/tunerdash
//   - Windows: %LOCALAPPDATA%\tunerdash
//
// With SetConfigPath in effect it is the directory of that file.
func GetConfigDir() (string, error) {
	if configPathOverride != "" {
		return filepath.Dir(configPathOverride), nil
	}
	base, err := platformConfigBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

func platformConfigBase() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, "AppData", "Local"), nil
		}
		return "", errors.New("cannot determine config directory: LOCALAPPDATA and USERPROFILE are not set")
	case "darwin":
		// XDG_CONFIG_HOME is ignored on macOS
	default:
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return dir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	if configPathOverride != "" {
		return configPathOverride, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// SetConfigPath points the registry at an explicit file and drops any
// registry already loaded. An empty path restores the platform default.
func SetConfigPath(path string) {
	mu.Lock()
	defer mu.Unlock()

	configPathOverride = path
	resetLocked()
}

func resetLocked() {
	loadOnce = sync.Once{}
	loaded, loadedErr = nil, nil
}

// LoadRegistry returns the shared registry, reading it on first use.
// A missing file gives a default registry.
func LoadRegistry() (*Registry, error) {
	loadOnce.Do(func() {
		loaded, loadedErr = readRegistry()
	})
	return loaded, loadedErr
}

// ReloadRegistry discards the shared registry and reads the file again,
// picking up changes made by another process.
func ReloadRegistry() (*Registry, error) {
	mu.Lock()
	resetLocked()
	mu.Unlock()

	return LoadRegistry()
}

func readRegistry() (*Registry, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseRegistry(data)
}

// parseRegistry decodes a config file and fills in anything it omits
func parseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if reg.Version != registryVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", reg.Version, registryVersion)
	}

	if reg.Devices == nil {
		reg.Devices = make(map[string]*Device)
	}
	if err := reg.ensurePreferences().Validate(); err != nil {
		return nil, fmt.Errorf("invalid preferences: %w", err)
	}
	return &reg, nil
}

// Save writes the registry to the config file. The file is replaced
// atomically so a crash never leaves it half written.
func (r *Registry) Save() error {
	mu.Lock()
	defer mu.Unlock()

	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data := append([]byte(fmt.Sprintf(fileHeader, path)), body...)

	// User-only permissions: the file may name hosts on the LAN
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeFileAtomic(path, data, 0o600)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
