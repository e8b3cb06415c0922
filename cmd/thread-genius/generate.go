package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/thread-genius/internal/collect"
	"github.com/pdiddy/thread-genius/internal/generate"
	"github.com/pdiddy/thread-genius/internal/history"
	"github.com/pdiddy/thread-genius/internal/secrets"
	"github.com/pdiddy/thread-genius/pkg/types"
)

const defaultModel = "claude-sonnet-4-20250514"

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft, humanize, and rank candidate posts",
	Long: `Generate drafts candidate posts for a persona using collected news as
trend context, optionally rewrites each draft in a calmer or warmer
register, scores everything against the engagement rubric, and saves
the ranked batch. All posts are also recorded in the history archive.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("persona", "", "persona name (default: first configured persona)")
	generateCmd.Flags().String("news", "", "saved news file to use as context (default: collect fresh)")
	generateCmd.Flags().Int("count", 0, "number of candidates to produce (default 5)")
	generateCmd.Flags().Bool("two-pass", false, "rewrite drafts in a human register (second pass)")
	generateCmd.Flags().Bool("calm-priority", false, "bias the humanize mix toward the calm register")
	generateCmd.Flags().String("model", "", "Claude model identifier")
	generateCmd.Flags().String("output-dir", "output/posts", "directory for generated post batches")
	generateCmd.Flags().String("history-dir", "", "base directory for the post archive")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	personas, err := loadPersonas(cmd)
	if err != nil {
		return err
	}
	personaName, _ := cmd.Flags().GetString("persona")
	persona := personas[0]
	if personaName != "" {
		persona, err = types.FindPersona(personas, personaName)
		if err != nil {
			return err
		}
	}

	cfg := generationConfig(cmd)
	if cfg.APIKey == "" {
		return fmt.Errorf("no Anthropic API key: add %s to %s or set generation.api_key", secrets.KeyAnthropicAPIKey, secretsDir)
	}

	items, err := newsItems(cmd)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no news items available: run collect first or check collector.feeds")
	}

	var prompts []string
	for _, item := range items {
		prompts = append(prompts, collect.FormatPrompt(item))
	}
	news := strings.Join(prompts, "\n\n")
	trending := collect.TrendingTopics(items, 0)

	backend := &generate.ClaudeBackend{
		APIKey:              cfg.APIKey,
		Model:               cfg.Model,
		Client:              &http.Client{Timeout: 2 * time.Minute},
		DraftTemperature:    cfg.DraftTemperature,
		HumanizeTemperature: cfg.HumanizeTemperature,
	}

	posts, err := generate.Generate(context.Background(), backend, persona, news, scoringWeights(), trending, cfg, os.Stderr)
	if err != nil {
		return err
	}

	batch := types.PostBatch{
		Persona:   persona.Name,
		NewsTitle: items[0].Title,
		Created:   time.Now(),
		Posts:     posts,
	}

	path, err := generate.WriteBatch(cfg, batch)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved batch to %s\n", path)

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()
	if _, err := store.RecordBatch(context.Background(), batch, os.Stderr); err != nil {
		return err
	}

	printRanked(posts)
	return nil
}

// newsItems loads a saved news file or collects a fresh batch.
func newsItems(cmd *cobra.Command) ([]types.NewsItem, error) {
	newsPath, _ := cmd.Flags().GetString("news")
	if newsPath != "" {
		nf, err := collect.ReadNewsFile(newsPath)
		if err != nil {
			return nil, err
		}
		return nf.Items, nil
	}

	cfg := collectorConfig(cmd)
	client := &http.Client{Timeout: cfg.Timeout}
	out, err := collect.Collect(context.Background(), collect.Sources(cfg, client), cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func printRanked(posts []types.Post) {
	fmt.Printf("%-4s  %-6s  %-12s  %s\n", "Rank", "Score", "Style", "Post")
	fmt.Println(strings.Repeat("-", 90))
	for i, p := range posts {
		text := strings.ReplaceAll(p.Text, "\n", " ")
		if len([]rune(text)) > 60 {
			text = string([]rune(text)[:57]) + "..."
		}
		fmt.Printf("%-4d  %-6.1f  %-12s  %s\n", i+1, p.Score, p.StyleMode, text)
	}
}

// generationConfig merges generate flags with config file values.
func generationConfig(cmd *cobra.Command) types.GenerationConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("generation.model")
	}
	if model == "" {
		model = defaultModel
	}

	count, _ := cmd.Flags().GetInt("count")
	if count == 0 {
		count = viper.GetInt("generation.variations")
	}

	twoPass, _ := cmd.Flags().GetBool("two-pass")
	if !twoPass {
		twoPass = viper.GetBool("generation.two_pass_humanize")
	}
	calmPriority, _ := cmd.Flags().GetBool("calm-priority")
	if !calmPriority {
		calmPriority = viper.GetBool("generation.calm_priority")
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")

	draftTemp := viper.GetFloat64("generation.draft_temperature")
	if draftTemp == 0 {
		draftTemp = 0.7
	}
	humanizeTemp := viper.GetFloat64("generation.humanize_temperature")
	if humanizeTemp == 0 {
		humanizeTemp = 0.4
	}

	return types.GenerationConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     secretDefault(secrets.KeyAnthropicAPIKey, viper.GetString("generation.api_key")),
			MaxRetries: viper.GetInt("generation.max_retries"),
		},
		Variations:          count,
		TwoPassHumanize:     twoPass,
		CalmPriority:        calmPriority,
		DraftTemperature:    draftTemp,
		HumanizeTemperature: humanizeTemp,
		OutputDir:           outputDir,
	}
}
