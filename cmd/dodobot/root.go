package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdelaire/dodobot/internal/config"
)

func Execute() {
	root := newRootCmd(viper.New())
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "dodobot: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dodobot",
		Short:         "Telegram bot that polls a group for Dota nights",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, v.GetString("config"))
		},
	}

	config.SetDefaults(v)
	config.BindEnv(v)

	cmd.PersistentFlags().String("config", "", "Config file path (yaml, toml or json; optional).")
	cmd.PersistentFlags().String("log-level", "info", "Logging level: debug|info|warn|error.")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")

	_ = v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))

	cmd.AddCommand(newRunCmd(v))
	cmd.AddCommand(newTokenCmd(v))
	cmd.AddCommand(newCatalogCmd(v))

	return cmd
}
