package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thread-genius/internal/history"
	"github.com/pdiddy/thread-genius/internal/publish"
)

var insightsCmd = &cobra.Command{
	Use:   "insights [threads-post-id]",
	Short: "Fetch engagement metrics for a published post",
	Long: `Insights fetches views, likes, replies, reposts, and quotes for a
published Threads post. When the post is known to the history archive,
the snapshot is stored so engagement growth can be tracked over time.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().String("history-dir", "", "base directory for the post archive")
	insightsCmd.Flags().Bool("json", false, "output metrics as JSON")

	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	postID := args[0]

	client := publish.NewClient(publishConfig())
	insights, err := client.GetInsights(context.Background(), postID)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(insights); err != nil {
			return err
		}
	} else {
		fmt.Printf("views: %d\nlikes: %d\nreplies: %d\nreposts: %d\nquotes: %d\n",
			insights.Views, insights.Likes, insights.Replies, insights.Reposts, insights.Quotes)
	}

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	rowID, err := store.FindByThreadsID(context.Background(), postID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: snapshot not archived: %v\n", err)
		return nil
	}
	if err := store.RecordEngagement(context.Background(), rowID, history.Engagement{
		Views:   insights.Views,
		Likes:   insights.Likes,
		Replies: insights.Replies,
		Reposts: insights.Reposts,
		Quotes:  insights.Quotes,
	}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "snapshot recorded for history post #%d\n", rowID)
	return nil
}
