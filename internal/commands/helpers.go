package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kite/pkg/config"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/rules"
)

// RulesFile is an optional rule table override in the project root.
const RulesFile = "kite-rules.toml"

// projectRoot resolves the optional [path] argument to an absolute directory.
func projectRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving project path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("reading project path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path %s is not a directory", path)
	}
	return abs, nil
}

// configPath is the --config flag, or kite.yaml in root.
func configPath(cmd *cobra.Command, root string) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return filepath.Join(root, config.FileName)
}

func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	cfg, err := config.Load(configPath(cmd, root))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func loadRules(root string) (*rules.Rules, error) {
	r, err := rules.Load(filepath.Join(root, RulesFile))
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	return r, nil
}

// newLogger writes engine logs to stderr at the configured level; --verbose
// forces debug.
func newLogger(cmd *cobra.Command, cfg *config.Config) logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = logger.LevelDebug
	}
	return logger.NewLogger(level, cmd.ErrOrStderr())
}
