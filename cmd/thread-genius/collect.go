package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/thread-genius/internal/collect"
	"github.com/pdiddy/thread-genius/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Gather news items from RSS/Atom feeds",
	Long: `Collect polls the configured RSS/Atom feeds concurrently, filters by
keywords, removes duplicates, and keeps the newest items. The batch is
saved to the news directory so generation can reuse it without hitting
the feeds again.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringSlice("feeds", nil, "feed URLs (default: collector.feeds from config)")
	collectCmd.Flags().StringSlice("keywords", nil, "keep only items matching a keyword")
	collectCmd.Flags().Int("max-items", 0, "maximum items to keep (default 10)")
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	collectCmd.Flags().String("news-dir", "news", "directory for saved news batches")
	collectCmd.Flags().Bool("no-save", false, "print results without writing a news file")
	collectCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := collectorConfig(cmd)

	client := &http.Client{Timeout: cfg.Timeout}
	sources := collect.Sources(cfg, client)

	out, err := collect.Collect(context.Background(), sources, cfg, os.Stderr)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := collect.FormatJSON(out, os.Stdout); err != nil {
			return err
		}
	} else {
		collect.FormatTable(out, os.Stdout)
	}

	noSave, _ := cmd.Flags().GetBool("no-save")
	if noSave {
		return nil
	}

	if err := os.MkdirAll(cfg.NewsDir, 0o755); err != nil {
		return fmt.Errorf("creating news directory: %w", err)
	}
	path := filepath.Join(cfg.NewsDir, fmt.Sprintf("news-%s.yaml", time.Now().Format("20060102-150405")))
	if err := collect.WriteNewsFile(path, cfg, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved %d items to %s\n", len(out.Items), path)
	return nil
}

// collectorConfig merges collect flags with config file values.
func collectorConfig(cmd *cobra.Command) types.CollectorConfig {
	feeds, _ := cmd.Flags().GetStringSlice("feeds")
	if len(feeds) == 0 {
		feeds = viper.GetStringSlice("collector.feeds")
	}
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	if len(keywords) == 0 {
		keywords = viper.GetStringSlice("collector.keywords")
	}
	maxItems, _ := cmd.Flags().GetInt("max-items")
	if maxItems == 0 {
		maxItems = viper.GetInt("collector.max_items")
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	newsDir, _ := cmd.Flags().GetString("news-dir")

	return types.CollectorConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Feeds:    feeds,
		Keywords: keywords,
		MaxItems: maxItems,
		NewsDir:  newsDir,
	}
}
