// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the thread-genius CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thread-genius/internal/secrets"
	"github.com/pdiddy/thread-genius/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	secretsDir       = ".secrets/"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "thread-genius/0.1"
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, the secret value for key
// otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the thread-genius CLI.
var rootCmd = &cobra.Command{
	Use:   "thread-genius",
	Short: "Generate, score, and publish Threads posts",
	Long: `thread-genius drafts social posts with the Claude API, scores them
against an engagement rubric, and publishes the winners to Threads.

Each pipeline stage is a subcommand: collect gathers news as trend
context, generate drafts and ranks candidate posts, score re-ranks a
saved batch, publish sends a post through the Threads API, insights
fetches engagement metrics, and history searches past output.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./thread-genius.yaml or ~/.config/thread-genius/config.yaml)")
	rootCmd.PersistentFlags().String("personas-file", "", "YAML file with persona definitions (default: built-in personas)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("thread-genius")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "thread-genius"))
		}
	}

	viper.SetEnvPrefix("THREAD_GENIUS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPersonas returns the persona list: the --personas-file contents when
// given, the built-in set otherwise.
func loadPersonas(cmd *cobra.Command) ([]types.PersonaConfig, error) {
	path, _ := cmd.Flags().GetString("personas-file")
	if path == "" {
		path = viper.GetString("personas_file")
	}
	if path == "" {
		return types.DefaultPersonas(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading personas file: %w", err)
	}
	var personas []types.PersonaConfig
	if err := yaml.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("parsing personas file: %w", err)
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("personas file %s defines no personas", path)
	}
	for _, p := range personas {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return personas, nil
}

// scoringWeights reads the rubric weights from config. An empty map means
// the scoring engine's defaults apply.
func scoringWeights() types.ScoringWeights {
	raw := viper.GetStringMap("scoring.weights")
	if len(raw) == 0 {
		return nil
	}
	weights := make(types.ScoringWeights, len(raw))
	for metric, v := range raw {
		switch n := v.(type) {
		case float64:
			weights[metric] = n
		case int:
			weights[metric] = float64(n)
		}
	}
	return weights
}

// historyConfig builds the archive settings shared by several commands.
func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	dir, _ := cmd.Flags().GetString("history-dir")
	if dir == "" {
		dir = viper.GetString("history.history_dir")
	}
	if dir == "" {
		dir = "history"
	}
	return types.HistoryConfig{
		HistoryDir: dir,
		MaxResults: viper.GetInt("history.max_results"),
	}
}

// publishConfig builds the Threads client settings from config and secrets.
func publishConfig() types.PublishConfig {
	return types.PublishConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		AppID:       secretDefault(secrets.KeyThreadsAppID, viper.GetString("publish.app_id")),
		AppSecret:   secretDefault(secrets.KeyThreadsAppSecret, viper.GetString("publish.app_secret")),
		RedirectURI: viper.GetString("publish.redirect_uri"),
		AccessToken: secretDefault(secrets.KeyThreadsAccessToken, viper.GetString("publish.access_token")),
		UserID:      secretDefault(secrets.KeyThreadsUserID, viper.GetString("publish.user_id")),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
