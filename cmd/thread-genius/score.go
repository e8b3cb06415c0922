package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thread-genius/internal/generate"
	"github.com/pdiddy/thread-genius/internal/score"
	"github.com/pdiddy/thread-genius/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [batch.yaml]",
	Short: "Re-score and rank a saved post batch",
	Long: `Score loads a saved batch, evaluates any posts that have no metric
scores yet, computes the weighted composite for each, and prints the
ranked result. Use --write to store the updated scores back into the
batch file, e.g. after editing posts or changing scoring.weights.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Bool("json", false, "output ranked posts as JSON")
	scoreCmd.Flags().Bool("write", false, "write updated scores back to the batch file")
	scoreCmd.Flags().Bool("re-evaluate", false, "discard stored metric scores and evaluate from scratch")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	path := args[0]
	batch, err := generate.ReadBatch(path)
	if err != nil {
		return err
	}
	if len(batch.Posts) == 0 {
		return fmt.Errorf("batch %s contains no posts", path)
	}

	reEval, _ := cmd.Flags().GetBool("re-evaluate")
	if reEval {
		for i := range batch.Posts {
			batch.Posts[i].Metrics = nil
		}
	}

	ranked, err := score.ScorePosts(batch.Posts, scoringWeights(), nil)
	if err != nil {
		return err
	}
	batch.Posts = ranked

	write, _ := cmd.Flags().GetBool("write")
	if write {
		data, err := yaml.Marshal(batch)
		if err != nil {
			return fmt.Errorf("marshaling batch: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing batch: %w", err)
		}
		fmt.Fprintf(os.Stderr, "updated %s\n", path)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}

	printScoreTable(ranked)
	return nil
}

func printScoreTable(posts []types.Post) {
	fmt.Printf("%-4s  %-6s  %-8s  %-8s  %-8s  %-8s  %-8s  %s\n",
		"Rank", "Score", "Trigger", "Trend", "Emotion", "Value", "Stage1", "Post")
	fmt.Println(strings.Repeat("-", 110))

	for i, p := range posts {
		text := strings.ReplaceAll(p.Text, "\n", " ")
		if len([]rune(text)) > 40 {
			text = string([]rune(text)[:37]) + "..."
		}
		fmt.Printf("%-4d  %-6.1f  %-8.0f  %-8.0f  %-8.0f  %-8.0f  %-8.0f  %s\n",
			i+1, p.Score,
			p.Metrics[types.MetricConversationTrigger],
			p.Metrics[types.MetricTrendRelevance],
			p.Metrics[types.MetricEmotionalImpact],
			p.Metrics[types.MetricValueProvided],
			p.Metrics[types.MetricStage1Potential],
			text)
	}
	fmt.Printf("\n%d posts\n", len(posts))
}
