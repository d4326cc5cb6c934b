package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kite/pkg/config"
	"github.com/simonhull/firebird-suite/kite/pkg/input"
	"github.com/simonhull/firebird-suite/kite/pkg/output"
)

// ConfigCmd returns the config command with its init subcommand
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kite configuration",
	}

	cmd.AddCommand(configInitCmd())

	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a kite.yaml with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			path := configPath(cmd, root)

			if _, err := os.Stat(path); err == nil && !force {
				msg := fmt.Sprintf("%s already exists. Overwrite?", filepath.Base(path))
				if !input.ConfirmFrom(cmd.InOrStdin(), cmd.ErrOrStderr(), msg, false) {
					output.Info("Kept existing configuration")
					return nil
				}
			}

			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			output.Success(fmt.Sprintf("Wrote %s", path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}
