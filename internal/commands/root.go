package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kite"
	"github.com/simonhull/firebird-suite/kite/pkg/output"
)

// RootCmd creates and returns the root command for the kite CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "kite",
		Short: "Project context exporter for Flutter and Go codebases",
		Long: `Kite analyzes a Flutter/Dart or Go project and exports a structured
context report: project metadata, file inventory, dependencies and their
health, code metrics, architecture patterns and suggestions.

Analyzers that fail are reported as unavailable; the export still succeeds.`,
		Version:       kite.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (default <project>/kite.yaml)")

	return cmd
}

// NewCLI builds the full command tree.
func NewCLI() *cobra.Command {
	root := RootCmd()
	root.AddCommand(ContextCmd())
	root.AddCommand(SchemaCmd())
	root.AddCommand(ConfigCmd())
	root.AddCommand(DoctorCmd())
	root.AddCommand(VersionCmd())
	return root
}

// VersionCmd prints the CLI version
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kite v%s\n", kite.Version)
		},
	}
}
