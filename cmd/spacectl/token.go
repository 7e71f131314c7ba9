package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-space-recommender/internal/utils"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		secret  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin endpoints",
		Long: `Signs an HS256 access token with JWT_SECRET (or --secret). The token is
printed on stdout; its id and expiry go to stderr.`,
		Example: `  curl -X POST -H "Authorization: Bearer $(spacectl token --subject ops)" \
    http://localhost:8080/v1/admin/catalog/reload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("no signing secret: set JWT_SECRET or pass --secret")
			}
			tok, err := utils.NewAccessToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "token %s for %s (%s) expires %s\n",
				tok.ID, subject, role, tok.Exp.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject, logged with admin actions")
	cmd.Flags().StringVar(&role, "role", utils.RoleAdmin, "Role claim")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default: $JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}
