// Package cli implements the gw2vault command line tool.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gw2vault-api/internal/batch"
	"gw2vault-api/internal/config"
	"gw2vault-api/internal/gw2"
)

// Version is set at build time.
var Version = "dev"

var (
	apiKey      string
	baseURL     string
	timeout     time.Duration
	concurrency int
)

var rootCmd = &cobra.Command{
	Use:   "gw2vault",
	Short: "gw2vault - Guild Wars 2 account snapshots",
	Long: `gw2vault validates Guild Wars 2 API keys and collects a full snapshot of
an account: storage, characters, equipment and every referenced item.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version

	defaults := gw2Defaults()
	rootCmd.PersistentFlags().StringVarP(&apiKey, "key", "k", "", "API key (default $GW2_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", defaults.BaseURL, "API base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaults.Timeout, "Timeout of a single API call")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", defaults.Concurrency, "Calls in flight at once")
}

// gw2Defaults reads GW2_* settings from the environment and .env, falling back
// to built-in defaults when the configuration is invalid.
func gw2Defaults() config.GW2Config {
	if cfg, err := config.Load(); err == nil {
		return cfg.GW2
	}
	return config.GW2Config{
		BaseURL:     gw2.DefaultBaseURL,
		Timeout:     gw2.DefaultTimeout,
		Concurrency: batch.DefaultLimit,
		ChunkSize:   gw2.MaxBulkIDs,
	}
}

func resolveKey() (string, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GW2_API_KEY"))
	}
	if key == "" {
		return "", fmt.Errorf("no API key: pass --key or set GW2_API_KEY")
	}
	return key, nil
}

func newClient(key string) *gw2.Client {
	return gw2.NewClient(key, gw2.WithBaseURL(baseURL), gw2.WithTimeout(timeout))
}
