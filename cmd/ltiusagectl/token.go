package main

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user",
	Long: `Mint an HS256 token the report accepts as a bearer token or as a
launch token (GET /launch?token=...). The secret and issuer must match the
server's api_token_secret and api_token_issuer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := auth.TokenConfig{
			Secret: settings.GetString("secret"),
			Issuer: settings.GetString("issuer"),
			TTL:    settings.GetDuration("ttl"),
		}
		if cfg.Secret == "" {
			return errors.New("--secret (or LTIUSAGECTL_SECRET) is required")
		}
		subject := settings.GetString("subject")
		if subject == "" {
			return errors.New("--subject is required")
		}

		tok, err := auth.IssueToken(cfg, subject, settings.GetString("name"), settings.GetString("role"), time.Now())
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}

		out := cmd.OutOrStdout()
		if settings.GetBool("launch-url") {
			fmt.Fprintf(out, "%s/launch?%s\n", settings.GetString("server"), url.Values{"token": {tok}}.Encode())
			return nil
		}
		fmt.Fprintln(out, tok)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.String("secret", "", "HMAC secret shared with the server")
	f.String("issuer", "ltiusage", "issuer claim")
	f.Duration("ttl", time.Hour, "token lifetime")
	f.String("subject", "", "user id (MongoDB ObjectID hex)")
	f.String("name", "", "display name claim")
	f.String("role", "", "role claim (informational; the server uses the live role)")
	f.Bool("launch-url", false, "print a /launch URL instead of the bare token")
	rootCmd.AddCommand(tokenCmd)
}
