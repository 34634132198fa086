package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"selfid/pkg/domain"
)

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [account]",
		Short: "Mint a development access token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := domain.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			tokens, err := tokenService()
			if err != nil {
				return err
			}
			token, err := tokens.GenerateAccessToken(account, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
