package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"agora/dialectic/internal/config"
	"agora/dialectic/internal/db"
	"agora/dialectic/internal/llm"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "dialectic",
	Short: "Multi-agent dialectical debate with argument graphs",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to session database")
}

// LoadConfig reads the --config file, or falls back to defaults.
func LoadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if envPath := os.Getenv("DIALECTIC_CONFIG"); envPath != "" {
		return config.Load(envPath)
	}
	return config.Default(), nil
}

// DiscoverDB resolves the database path using priority: flag > env >
// default inside the output directory.
func DiscoverDB(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if envPath := os.Getenv("DIALECTIC_DB"); envPath != "" {
		return envPath
	}
	return filepath.Join(cfg.OutputDir, "dialectic.db")
}

// OpenDatabase opens the session database, creating its directory if
// needed.
func OpenDatabase(cfg *config.Config) (*db.DB, error) {
	path := DiscoverDB(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}
	return db.OpenDB(path)
}

// NewGenerator builds the LLM backend for the configured model.
func NewGenerator(cfg *config.Config) llm.Generator {
	return llm.NewCLI(cfg.Model)
}
