// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Loads configuration, opens storage, builds loggers, and renders output formats
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/discovery/internal/config"
	"github.com/harper/discovery/internal/logging"
	"github.com/harper/discovery/internal/storage/sqlite"
)

// loadConfig reads .env and the environment, applying the --db override
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// newLogger logs to the command's stderr at the configured level
func newLogger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	return logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.LogLevel,
		Verbose: verbose,
		Quiet:   quiet,
	})
}

// setup loads config, a logger, and storage for a command
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, *sqlite.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cmd, cfg)

	store, err := sqlite.NewStorageWithPath(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	logger.Debug("storage opened", "path", cfg.DBPath)
	return cfg, logger, store, nil
}

// render writes v as JSON or YAML when --format asks for it, otherwise
// calls table with a tab-aligned writer
func render(w io.Writer, v interface{}, table func(w io.Writer)) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "auto", "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want auto, table, json, or yaml)", outputFormat)
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// orDash substitutes "-" for empty table cells
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
