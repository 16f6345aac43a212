package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibsync/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  bibsync config                          # Show all config
  bibsync config locale                   # Get specific value
  bibsync config locale es                # Set value
  bibsync config allow-proxy-venues true  # Accept unregistered venues

Keys:
  locale                Locale for exported notes (en, es, ...)
  allow-proxy-venues    Keep entries whose venue is not in the registry
  require-known-author  Reject entries with no registered author
  workers               Parallel import workers (0 = default)
  catalog-path          YAML file with extra note messages`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("locale:               %s\n", cfg.Locale)
			fmt.Printf("allow-proxy-venues:   %t\n", cfg.AllowProxyVenues)
			fmt.Printf("require-known-author: %t\n", cfg.RequireKnownAuthor)
			fmt.Printf("workers:              %d\n", cfg.Workers)
			fmt.Printf("catalog-path:         %s\n", cfg.CatalogPath)
		} else {
			outputJSON(ConfigResponse{
				Locale:             cfg.Locale,
				AllowProxyVenues:   cfg.AllowProxyVenues,
				RequireKnownAuthor: cfg.RequireKnownAuthor,
				Workers:            cfg.Workers,
				CatalogPath:        cfg.CatalogPath,
			})
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := configValue(cfg, normalizedKey)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(normalizedKey, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := setConfigValue(cfg, normalizedKey, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}

	return nil
}

func configValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "locale":
		return cfg.Locale, true
	case "allow-proxy-venues":
		return strconv.FormatBool(cfg.AllowProxyVenues), true
	case "require-known-author":
		return strconv.FormatBool(cfg.RequireKnownAuthor), true
	case "workers":
		return strconv.Itoa(cfg.Workers), true
	case "catalog-path":
		return cfg.CatalogPath, true
	}
	return "", false
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "locale":
		if err := config.ValidateLocale(value); err != nil {
			return err
		}
		cfg.Locale = value
	case "allow-proxy-venues":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid allow-proxy-venues: %s", value)
		}
		cfg.AllowProxyVenues = b
	case "require-known-author":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid require-known-author: %s", value)
		}
		cfg.RequireKnownAuthor = b
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid workers: %s", value)
		}
		if err := config.ValidateWorkers(n); err != nil {
			return err
		}
		cfg.Workers = n
	case "catalog-path":
		expanded := config.ExpandPath(value)
		if err := config.ValidateCatalogPath(expanded); err != nil {
			return err
		}
		cfg.CatalogPath = expanded
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (allow-proxy-venues, allow_proxy_venues) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
