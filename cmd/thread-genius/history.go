package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thread-genius/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Search and export the post archive",
	Long: `History manages the local SQLite archive of generated and published
posts. Use subcommands to list posts with full-text search and filters,
or export the archive to YAML or JSON.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List archived posts with search and filters",
	Long: `List shows archived posts, newest first. A free-text query uses FTS5
full-text search over the post text; --persona, --status, and
--min-score narrow the result further. Published posts show their
latest engagement snapshot when one has been recorded.`,
	RunE: runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := historyOptsFromFlags(cmd, args)
	entries, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	fmt.Printf("%-5s  %-18s  %-6s  %-10s  %-44s  %s\n",
		"ID", "Persona", "Score", "Status", "Post", "Engagement")
	fmt.Println(strings.Repeat("-", 110))

	for _, e := range entries {
		text := strings.ReplaceAll(e.Text, "\n", " ")
		if len([]rune(text)) > 44 {
			text = string([]rune(text)[:41]) + "..."
		}
		persona := e.Persona
		if len(persona) > 18 {
			persona = persona[:15] + "..."
		}

		engagement := "-"
		if e.Status == history.StatusPublished {
			if snap, ok, err := store.LatestEngagement(context.Background(), e.ID); err == nil && ok {
				engagement = fmt.Sprintf("%dv %dl %dr", snap.Views, snap.Likes, snap.Replies)
			}
		}

		fmt.Printf("%-5d  %-18s  %-6.1f  %-10s  %-44s  %s\n",
			e.ID, persona, e.Score, e.Status, text, engagement)
	}

	fmt.Printf("\n%d posts\n", len(entries))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the post archive to YAML or JSON",
	Long: `Export writes the full archive (or a filtered subset) to
history/index/export.yaml or export.json. Supports the same filter
flags as list for partial exports.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := historyOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to history/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to history/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func historyOptsFromFlags(cmd *cobra.Command, args []string) history.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	persona, _ := cmd.Flags().GetString("persona")
	status, _ := cmd.Flags().GetString("status")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	limit, _ := cmd.Flags().GetInt("limit")

	return history.QueryOptions{
		Query:      queryText,
		Persona:    persona,
		Status:     status,
		MinScore:   minScore,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "", "base directory for the archive (contains index/)")

	// List flags.
	historyListCmd.Flags().String("query", "", "full-text search query over post text")
	historyListCmd.Flags().String("persona", "", "filter by persona name")
	historyListCmd.Flags().String("status", "", "filter by status: draft or published")
	historyListCmd.Flags().Float64("min-score", 0, "drop posts below this composite score")
	historyListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	historyExportCmd.Flags().String("persona", "", "filter by persona for partial export")
	historyExportCmd.Flags().String("status", "", "filter by status for partial export")
	historyExportCmd.Flags().Float64("min-score", 0, "minimum composite score for partial export")
	historyExportCmd.Flags().Int("limit", 0, "maximum posts to export (0 = all)")

	// Wire subcommands.
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
