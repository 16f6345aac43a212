// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/bibsync/internal/i18n"
)

// Config represents repository configuration stored in .bibsync/config.json.
type Config struct {
	Locale             string `json:"locale,omitempty"`       // Export locale, e.g. "en" or "es"
	AllowProxyVenues   bool   `json:"allow_proxy_venues"`     // Accept venues missing from the registry
	RequireKnownAuthor bool   `json:"require_known_author"`   // Reject entries with no registered author
	Workers            int    `json:"workers,omitempty"`      // Parallel import workers (0 = default)
	CatalogPath        string `json:"catalog_path,omitempty"` // Extra message catalog (YAML)
}

const (
	BibsyncDir       = ".bibsync"
	ConfigFile       = "config.json"
	PublicationsFile = "publications.jsonl"
	VenuesFile       = "venues.jsonl"
	PersonsFile      = "persons.jsonl"
	CacheDir         = "cache"
	DBFile           = "library.db"
)

// DefaultWorkers is used when neither repository nor global config sets a
// worker count.
const DefaultWorkers = 4

// BibsyncPath returns the path to the .bibsync directory from a root path.
func BibsyncPath(root string) string {
	return filepath.Join(root, BibsyncDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, BibsyncDir, ConfigFile)
}

// PublicationsPath returns the path to publications.jsonl from a root path.
func PublicationsPath(root string) string {
	return filepath.Join(root, BibsyncDir, PublicationsFile)
}

// VenuesPath returns the path to venues.jsonl from a root path.
func VenuesPath(root string) string {
	return filepath.Join(root, BibsyncDir, VenuesFile)
}

// PersonsPath returns the path to persons.jsonl from a root path.
func PersonsPath(root string) string {
	return filepath.Join(root, BibsyncDir, PersonsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, BibsyncDir, CacheDir)
}

// DBPath returns the path to library.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, BibsyncDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a bibsync repository.
func IsRepository(root string) bool {
	info, err := os.Stat(BibsyncPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a bibsync repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a bibsync repository (no .bibsync directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// WithDefaults returns a copy of c with unset values taken from the global
// config, then from built-in defaults.
func (c Config) WithDefaults(g *GlobalConfig) Config {
	if g != nil {
		if c.Locale == "" {
			c.Locale = g.Locale
		}
		if c.Workers == 0 {
			c.Workers = g.Workers
		}
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	c.CatalogPath = ExpandPath(c.CatalogPath)
	return c
}

// ValidateLocale checks that the locale is a well-formed BCP 47 tag.
func ValidateLocale(locale string) error {
	if locale == "" {
		return nil // Empty defaults to English
	}
	if _, err := i18n.ParseLocale(locale); err != nil {
		return fmt.Errorf("invalid locale: %s", locale)
	}
	return nil
}

// ValidateWorkers checks that the worker count is not negative.
func ValidateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid workers: %d (must be >= 0)", n)
	}
	return nil
}

// ValidateCatalogPath checks that the catalog file exists.
func ValidateCatalogPath(path string) error {
	if path == "" {
		return nil // Empty is allowed (built-in messages only)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", expandedPath)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
