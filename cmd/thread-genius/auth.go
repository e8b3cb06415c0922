package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thread-genius/internal/publish"
	"github.com/pdiddy/thread-genius/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize the Threads app and store a long-lived token",
	Long: `Auth runs the Threads OAuth flow. Without --code it prints the
authorization URL to open in a browser. After approving, pass the code
from the redirect back with --code; the resulting long-lived token and
user ID are written to ` + secretsDir + ` for later commands.`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().String("code", "", "authorization code from the OAuth redirect")

	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg := publishConfig()
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return fmt.Errorf("Threads app credentials missing: add %s and %s to %s",
			secrets.KeyThreadsAppID, secrets.KeyThreadsAppSecret, secretsDir)
	}
	if cfg.RedirectURI == "" {
		return fmt.Errorf("publish.redirect_uri is not configured")
	}

	client := publish.NewClient(cfg)

	code, _ := cmd.Flags().GetString("code")
	if code == "" {
		fmt.Println("Open this URL, approve access, then re-run with --code:")
		fmt.Println(client.AuthorizationURL())
		return nil
	}

	if err := client.ExchangeCode(context.Background(), code, os.Stderr); err != nil {
		return err
	}

	if err := secrets.Save(secretsDir, secrets.KeyThreadsAccessToken, client.AccessToken); err != nil {
		return err
	}
	if err := secrets.Save(secretsDir, secrets.KeyThreadsUserID, client.UserID); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "credentials saved to %s\n", secretsDir)
	return nil
}
