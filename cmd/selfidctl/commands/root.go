// Package commands is the selfidctl command tree.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	jwttoken "selfid/internal/jwt_token"
	"selfid/internal/pseudonym/client"
	"selfid/internal/pseudonym/command"
	"selfid/pkg/domain"
)

var config = viper.New()

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "selfidctl",
		Short:         "Client for the selfid pseudonym registry",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default ~/.selfid/config.yaml)")
	root.PersistentFlags().String("server", "http://127.0.0.1:8080", "selfid server base URL")
	root.PersistentFlags().String("token", "", "bearer token of the calling account")
	root.PersistentFlags().String("account", "", "calling account; with --signing-key a token is minted for it")
	root.PersistentFlags().String("signing-key", "", "JWT signing key for minting development tokens")
	root.PersistentFlags().String("issuer", "selfid", "JWT issuer")
	root.PersistentFlags().String("audience", "selfid", "JWT audience")

	root.AddCommand(
		tokenCmd(),
		claimCmd(),
		verifyCmd(),
		whoamiCmd(),
		lookupCmd(),
		infoCmd(),
		authorityCmd(),
		verifierCmd(),
		resetCmd(),
		upgradeCmd(),
	)
	return root
}

// initConfig layers flags over SELFIDCTL_* env vars over the config file.
func initConfig(cmd *cobra.Command) error {
	if err := config.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	config.SetEnvPrefix("selfidctl")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	if file := config.GetString("config"); file != "" {
		config.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		config.SetConfigFile(filepath.Join(home, ".selfid", "config.yaml"))
	}
	if err := config.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(config.ConfigFileUsed()); statErr == nil {
			return fmt.Errorf("read config %s: %w", config.ConfigFileUsed(), err)
		}
	}
	return nil
}

func tokenService() (*jwttoken.JWTService, error) {
	key := config.GetString("signing-key")
	if key == "" {
		return nil, fmt.Errorf("--signing-key is required to mint tokens")
	}
	return jwttoken.NewJWTService(key, config.GetString("issuer"), config.GetString("audience")), nil
}

// newClient returns a client for the configured caller. An explicit token
// wins; otherwise one is minted when both account and signing key are set.
func newClient() (*client.Client, error) {
	token := config.GetString("token")
	if token == "" && config.GetString("account") != "" {
		account, err := domain.ParseAccountID(config.GetString("account"))
		if err != nil {
			return nil, err
		}
		tokens, err := tokenService()
		if err != nil {
			return nil, err
		}
		if token, err = tokens.GenerateAccessToken(account, 5*time.Minute); err != nil {
			return nil, err
		}
	}
	return client.New(config.GetString("server"), token), nil
}

func submit(cmd *cobra.Command, c command.Command) (command.Result, error) {
	cl, err := newClient()
	if err != nil {
		return command.Result{}, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return cl.Do(ctx, c)
}
