package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"selfid/internal/pseudonym/command"
	"selfid/pkg/domain"
)

func claimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim [pseudonym]",
		Short: "Claim a pseudonym for the calling account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := submit(cmd, command.ClaimPseudonym{Pseudonym: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claimed %s\n", args[0])
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [pseudonym]",
		Short: "Attest a pseudonym as a verifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := submit(cmd, command.VerifyPseudonym{Pseudonym: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified %s\n", args[0])
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the calling account's pseudonym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := submit(cmd, command.GetPseudonym{})
			if err != nil {
				return err
			}
			printPseudonym(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [account]",
		Short: "Show the pseudonym held by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := domain.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			result, err := submit(cmd, command.GetPseudonymOf{Account: account})
			if err != nil {
				return err
			}
			printPseudonym(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [pseudonym]",
		Short: "Show owner and verification of a pseudonym",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			info, err := cl.Info(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pseudonym:   %s\n", info.Pseudonym)
			fmt.Fprintf(out, "owner:       %s\n", info.Owner)
			if info.Verified {
				fmt.Fprintf(out, "verified by: %s\n", info.VerifiedBy)
				fmt.Fprintf(out, "verified at: %d\n", *info.VerifiedAt)
			} else {
				fmt.Fprintln(out, "verified:    no")
			}
			return nil
		},
	}
}

func printPseudonym(out io.Writer, result command.Result) {
	if result.Pseudonym == nil {
		fmt.Fprintln(out, "(none)")
		return
	}
	fmt.Fprintln(out, *result.Pseudonym)
}
