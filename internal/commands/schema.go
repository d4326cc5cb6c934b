package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/kite/pkg/report"
)

// SchemaCmd returns the schema command with its export subcommand
func SchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the kite command surface",
	}

	cmd.AddCommand(schemaExportCmd())

	return cmd
}

func schemaExportCmd() *cobra.Command {
	var command string
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print command metadata as JSON or YAML",
		Long: `Print the name, usage and flags of every kite command. This is the same
data exported under the "commands" key of the context report.

Example:
  kite schema export
  kite schema export --command "kite context export" --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands := CollectCommands(cmd.Root())

			var payload any = commands
			if command != "" {
				found, ok := FindCommand(commands, command)
				if !ok {
					return fmt.Errorf("unknown command %q", command)
				}
				payload = found
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			var data []byte
			switch f {
			case report.FormatJSON:
				data, err = json.MarshalIndent(payload, "", "  ")
				data = append(data, '\n')
			case report.FormatYAML:
				data, err = yaml.Marshal(payload)
			default:
				return fmt.Errorf("schema export supports json or yaml, got %s", f)
			}
			if err != nil {
				return fmt.Errorf("encoding command metadata: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&command, "command", "", `Only describe this command path, e.g. "kite context export"`)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")

	return cmd
}
