package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thread-genius/internal/generate"
	"github.com/pdiddy/thread-genius/internal/history"
	"github.com/pdiddy/thread-genius/internal/publish"
	"github.com/pdiddy/thread-genius/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish [batch.yaml]",
	Short: "Publish a post from a saved batch to Threads",
	Long: `Publish sends one post from a saved batch through the Threads API
using the two-step container flow. By default the top-ranked post is
published; use --index to pick another. The published post is recorded
in the history archive with its Threads post ID.

Use --text to publish arbitrary text instead of a batch post.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().Int("index", 1, "1-based rank of the post to publish")
	publishCmd.Flags().String("text", "", "publish this text instead of a batch post")
	publishCmd.Flags().String("history-dir", "", "base directory for the post archive")
	publishCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")

	var post types.Post
	persona := "manual"

	if text != "" {
		post = types.Post{Text: text}
	} else {
		if len(args) == 0 {
			return fmt.Errorf("provide a batch file or --text")
		}
		batch, err := generate.ReadBatch(args[0])
		if err != nil {
			return err
		}
		index, _ := cmd.Flags().GetInt("index")
		if index < 1 || index > len(batch.Posts) {
			return fmt.Errorf("index %d out of range: batch has %d posts", index, len(batch.Posts))
		}
		post = batch.Posts[index-1]
		persona = batch.Persona
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("About to publish:\n\n%s\n\nContinue? [y/N] ", post.Text)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "aborted")
			return nil
		}
	}

	client := publish.NewClient(publishConfig())
	result, err := client.CreatePost(context.Background(), post.Text, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Printf("published as %s\n", result.PostID)

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	post.Text = result.Text
	id, err := store.Record(context.Background(), persona, post)
	if err != nil {
		return fmt.Errorf("recording in history: %w", err)
	}
	if err := store.MarkPublished(context.Background(), id, result.PostID); err != nil {
		return fmt.Errorf("marking published in history: %w", err)
	}
	return nil
}
