package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gw2vault-api/internal/codec"
	"gw2vault-api/internal/collector"
	"gw2vault-api/internal/transform"
)

var (
	collectOut  string
	collectFull bool
)

func init() {
	collectCmd := &cobra.Command{
		Use:     "collect",
		Aliases: []string{"c"},
		Short:   "Collect an account snapshot",
		Long: `Collect account storage, characters, items and itemstats and write the
slim snapshot as JSON. Use --full to keep every field returned by the API.
An output file ending in .zst is written zstd-compressed.`,
		RunE: runCollect,
	}

	collectCmd.Flags().StringVarP(&collectOut, "out", "o", "", "Output file (default stdout)")
	collectCmd.Flags().BoolVar(&collectFull, "full", false, "Write the full snapshot instead of the slim one")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	key, err := resolveKey()
	if err != nil {
		return err
	}

	compressed := strings.HasSuffix(collectOut, ".zst")
	if compressed && collectFull {
		return fmt.Errorf("--full cannot be written compressed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := collector.New(newClient(key), collector.Config{Concurrency: concurrency})

	start := time.Now()
	snap, err := c.Collect(ctx)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "✗ ")
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("collection failed")
	}

	var data []byte
	switch {
	case collectFull:
		data, err = json.MarshalIndent(snap, "", "  ")
	case compressed:
		data, err = codec.Encode(transform.Slim(snap))
	default:
		data, err = json.MarshalIndent(transform.Slim(snap), "", "  ")
	}
	if err != nil {
		return err
	}

	if err := writeOutput(collectOut, data); err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Fprint(os.Stderr, "✓ ")
	fmt.Fprintf(os.Stderr, "%s: %d characters, %d items, %d itemstats in %v\n",
		color.CyanString(snap.Account.Name),
		len(snap.Characters), len(snap.Items), len(snap.Itemstats),
		time.Since(start).Round(time.Millisecond))
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
