package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdelaire/dodobot/internal/catalog"
)

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the response catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(v.GetString("catalog.path"))
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := catalog.NewSource(path).Load()
			if err != nil {
				return err
			}
			if err := cat.Validate(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d yes, %d no)\n", path, len(cat.PollYes()), len(cat.PollNo()))
			return nil
		},
	})
	return cmd
}
