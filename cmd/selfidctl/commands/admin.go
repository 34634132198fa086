package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"

	"selfid/internal/pseudonym/command"
	"selfid/pkg/domain"
)

func authorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authority",
		Short: "Show the administering account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := submit(cmd, command.GetAuthority{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Authority.String())
			return nil
		},
	}
}

func verifierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verifier",
		Short: "Manage the verifier set (authority only)",
	}
	for _, add := range []bool{true, false} {
		use, short := "add [account]", "Grant verifier rights"
		if !add {
			use, short = "remove [account]", "Revoke verifier rights"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				verifier, err := domain.ParseAccountID(args[0])
				if err != nil {
					return err
				}
				if _, err := submit(cmd, command.SetVerifier{Verifier: verifier, Add: add}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cmd.Name(), verifier)
				return nil
			},
		})
	}
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the registry (authority only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := submit(cmd, command.ResetAll{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registry reset")
			return nil
		},
	}
}

func upgradeCmd() *cobra.Command {
	var wasmPath, hashHex string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Point the registry at new code (authority only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var hash domain.CodeHash
			switch {
			case wasmPath != "" && hashHex != "":
				return fmt.Errorf("use either --wasm or --hash")
			case wasmPath != "":
				blob, err := os.ReadFile(wasmPath)
				if err != nil {
					return err
				}
				hash = CodeHashOf(blob)
			case hashHex != "":
				parsed, err := domain.ParseCodeHash(hashHex)
				if err != nil {
					return err
				}
				hash = parsed
			default:
				return fmt.Errorf("--wasm or --hash is required")
			}
			if _, err := submit(cmd, command.RedirectCode{CodeHash: hash}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "code set to %s\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&wasmPath, "wasm", "", "code blob to hash with blake2b-256")
	cmd.Flags().StringVar(&hashHex, "hash", "", "code hash as 64 hex digits")
	return cmd
}

// CodeHashOf is the blake2b-256 digest of a code blob.
func CodeHashOf(blob []byte) domain.CodeHash {
	return domain.CodeHash(blake2b.Sum256(blob))
}
