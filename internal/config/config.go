package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fsserver/internal/filemanager"
	"fsserver/internal/logging"
	"fsserver/pkg/fileops"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "fsserver" // application name used for config directory

// ProjectRootEnv overrides project_root when set.
const ProjectRootEnv = "PROJECT_ROOT"

const (
	DefaultServerName    = "filesystem-server"
	DefaultServerVersion = "1.0.0"
)

// Config holds the server configuration.
type Config struct {
	// ProjectRoot is the primary sandbox root and the default target of
	// list_directory and file_stats.
	ProjectRoot string `yaml:"project_root"`

	// ExtraRoots are registered after ProjectRoot, in order.
	ExtraRoots []string `yaml:"extra_roots,omitempty"`

	AllowedExtensions []string `yaml:"allowed_extensions"`
	ExcludedDirs      []string `yaml:"excluded_dirs"`
	MaxImportantFiles int      `yaml:"max_important_files"`

	ServerName    string `yaml:"server_name"`
	ServerVersion string `yaml:"server_version"`
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// FindConfigFile returns the path to the standard config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary := ConfigPath()

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	return primary, false
}

// DefaultConfig returns a Config with sensible defaults. The project root is
// the process working directory.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		logging.Warn("Cannot determine working directory", "error", err)
		cwd = "."
	}

	return Config{
		ProjectRoot:       cwd,
		AllowedExtensions: filemanager.DefaultAllowedExtensions(),
		ExcludedDirs:      filemanager.DefaultExcludedDirs(),
		MaxImportantFiles: filemanager.DefaultMaxImportantFiles,
		ServerName:        DefaultServerName,
		ServerVersion:     DefaultServerVersion,
	}
}

// Load resolves the configuration: defaults, then the config file, then the
// environment. An explicit path must exist; the standard location is optional.
func Load(explicitPath string) (*Config, error) {
	path, exists := explicitPath, explicitPath != ""
	if !exists {
		path, exists = FindConfigFile()
	}

	cfg := DefaultConfig()
	if exists {
		loaded, err := LoadFrom(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	} else {
		logging.Debug("No config file found, using defaults", "path", path)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom loads config from a specific path on top of the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	logging.Info("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if root := strings.TrimSpace(os.Getenv(ProjectRootEnv)); root != "" {
		logging.Debug("Project root overridden from environment", "path", root)
		c.ProjectRoot = root
	}
}

// Roots returns the project root followed by the extra roots.
func (c *Config) Roots() []string {
	roots := make([]string, 0, len(c.ExtraRoots)+1)
	roots = append(roots, c.ProjectRoot)
	return append(roots, c.ExtraRoots...)
}

// Validate checks the configuration and normalizes every root to a clean
// absolute path, expanding a leading "~/" to the home directory. It does not
// check that the roots exist; the sandbox does that when roots are registered.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectRoot) == "" {
		return fmt.Errorf("project_root cannot be empty")
	}

	abs, err := fileops.CleanAbs(fileops.ExpandPath(c.ProjectRoot))
	if err != nil {
		return fmt.Errorf("invalid project_root: %w", err)
	}
	c.ProjectRoot = abs

	for i, root := range c.ExtraRoots {
		abs, err := fileops.CleanAbs(fileops.ExpandPath(root))
		if err != nil {
			return fmt.Errorf("invalid extra_roots[%d]: %w", i, err)
		}
		c.ExtraRoots[i] = abs
	}

	if c.MaxImportantFiles <= 0 {
		return fmt.Errorf("max_important_files must be positive, got %d", c.MaxImportantFiles)
	}

	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions cannot be empty")
	}
	for i, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return fmt.Errorf("allowed_extensions[%d] is empty", i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.AllowedExtensions[i] = ext
	}

	if strings.TrimSpace(c.ServerName) == "" {
		c.ServerName = DefaultServerName
	}
	if strings.TrimSpace(c.ServerVersion) == "" {
		c.ServerVersion = DefaultServerVersion
	}

	return nil
}

// Policy builds the catalog policy described by this configuration.
func (c *Config) Policy() filemanager.Policy {
	return filemanager.NewPolicy(c.AllowedExtensions, c.ExcludedDirs, c.MaxImportantFiles)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
