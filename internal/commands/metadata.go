package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/simonhull/firebird-suite/kite/pkg/report"
)

// CollectCommands walks the command tree depth-first and describes every
// visible command. Help and completion commands are left out.
func CollectCommands(root *cobra.Command) []report.Command {
	out := []report.Command{}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			return
		}
		out = append(out, describe(c))
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
	return out
}

// FindCommand returns the description of the command at path, e.g.
// "kite context export".
func FindCommand(commands []report.Command, path string) (report.Command, bool) {
	for _, c := range commands {
		if c.Path == path {
			return c, true
		}
	}
	return report.Command{}, false
}

func describe(c *cobra.Command) report.Command {
	cmd := report.Command{
		Path:    c.CommandPath(),
		Short:   c.Short,
		Usage:   c.UseLine(),
		Aliases: c.Aliases,
		Flags:   []report.Flag{},
	}
	c.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		cmd.Flags = append(cmd.Flags, report.Flag{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Default:   f.DefValue,
			Usage:     f.Usage,
		})
	})
	return cmd
}
