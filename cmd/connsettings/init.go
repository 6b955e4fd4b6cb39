package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"connsettings/internal/config"
)

func newInitCommand() *cobra.Command {
	var system, force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and create the store and keyfile directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout := config.UserLayout()
			if system {
				layout = config.SystemLayout
			}
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = layout.ConfigFile()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := layout.Create(); err != nil {
				return fmt.Errorf("create directories: %w", err)
			}
			cfg := layout.Defaults()
			if err := cfg.Save(path); err != nil {
				return err
			}

			if jsonMode(cmd) {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"config":   path,
					"database": cfg.Database.Path,
					"key_file": cfg.Secrets.KeyFile,
					"keyfiles": cfg.Keyfiles.Dir,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n%s\n", path, cfg.Summary())
			return nil
		},
	}
	cmd.Flags().BoolVar(&system, "system", false, "Use the system-wide layout under /etc and /var/lib")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
