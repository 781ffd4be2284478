package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdelaire/dodobot/internal/config"
	"github.com/jdelaire/dodobot/internal/keychain"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the bot token in the system keychain",
	}
	cmd.AddCommand(newTokenSetCmd())
	cmd.AddCommand(newTokenStatusCmd(v))
	return cmd
}

func newTokenSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [token]",
		Short: "Store the bot token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if !config.ValidToken(token) {
				return fmt.Errorf("%w: token is malformed", config.ErrConfig)
			}
			if err := keychain.SetToken(token); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "token stored in keychain")
			return nil
		},
	}
}

func newTokenStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report where the bot token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if tok := strings.TrimSpace(v.GetString("bot.token")); tok != "" {
				_, _ = fmt.Fprintf(out, "token: %s (source: config/env, valid: %t)\n", mask(tok), config.ValidToken(tok))
				return nil
			}
			tok, err := keychain.Token()
			if errors.Is(err, keychain.ErrNotFound) {
				_, _ = fmt.Fprintln(out, "token: not configured")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "token: %s (source: keychain, valid: %t)\n", mask(tok), config.ValidToken(tok))
			return nil
		},
	}
}

// mask keeps the bot id and hides the secret part.
func mask(token string) string {
	id, _, ok := strings.Cut(token, ":")
	if !ok {
		return "****"
	}
	return id + ":****"
}
