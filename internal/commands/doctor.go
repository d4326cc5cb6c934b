package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/output"
)

// errDoctorFailed means at least one required check failed.
var errDoctorFailed = errors.New("project is not ready for export")

// DoctorCmd checks that a project can be exported
func DoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [path]",
		Short: "Check that a project can be analyzed",
		Long: `Check the manifest, configuration and rule tables of a project and whether
the package registry used for dependency health is reachable.

An unreachable registry is only a warning: health scores fall back to
defaults during export.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			failed := false

			m, err := manifest.Load(root)
			if err != nil {
				failed = true
				output.Error(fmt.Sprintf("Manifest: %v", err))
			} else {
				output.Success(fmt.Sprintf("Manifest: %s %s (%d dependencies, %d dev)",
					m.File, m.Name, len(m.Dependencies), len(m.DevDependencies)))
			}

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				failed = true
				output.Error(fmt.Sprintf("Config: %v", err))
			} else {
				output.Success(fmt.Sprintf("Config: %s", configPath(cmd, root)))
			}

			r, err := loadRules(root)
			if err != nil {
				failed = true
				output.Error(fmt.Sprintf("Rules: %v", err))
			} else {
				output.Success(fmt.Sprintf("Rules: %d categories, %d architecture markers",
					len(r.Categories), len(r.DependencyMarkers)+len(r.ConfigMarkers)))
			}

			if cfg != nil {
				registry := health.NewHTTPRegistry(cfg.Registry.URL, cfg.Registry.Timeout)
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Registry.Timeout)
				defer cancel()
				if err := registry.Ping(ctx); err != nil {
					output.Warn(fmt.Sprintf("Registry: %v", err))
				} else {
					output.Success(fmt.Sprintf("Registry: %s", cfg.Registry.URL))
				}
			}

			if failed {
				return errDoctorFailed
			}
			return nil
		},
	}
}
