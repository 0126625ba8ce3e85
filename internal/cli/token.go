package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/utils"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		actor  string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the internal API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = a.cfg.GetString("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set JWT_SECRET")
			}
			token, err := utils.IssueOperatorToken(actor, secret, a.cfg.GetString("JWT_ISSUER"), ttl, a.now())
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "operator id recorded on transitions")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (default $JWT_SECRET)")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}
