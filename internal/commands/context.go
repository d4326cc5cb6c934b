package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kite"
	"github.com/simonhull/firebird-suite/kite/pkg/config"
	"github.com/simonhull/firebird-suite/kite/pkg/engine"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/output"
	"github.com/simonhull/firebird-suite/kite/pkg/report"
)

// Stdout as --output streams the report instead of writing a file.
const Stdout = "-"

// ContextCmd returns the context command with its export subcommand
func ContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Work with the project context report",
	}

	cmd.AddCommand(contextExportCmd())

	return cmd
}

type exportOptions struct {
	output      string
	format      string
	template    string
	force       bool
	skip        bool
	maxFiles    int
	maxFileSize int64

	includeStructure    bool
	includeDependencies bool
	includeCode         bool
	includeArchitecture bool
	includeSuggestions  bool
}

func contextExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Analyze a project and export its context report",
		Long: `Analyze the project at [path] (default: current directory) and export a
context report as JSON, YAML or Markdown.

The report is written to .ai/project_context.<ext> inside the project unless
--output says otherwise; "-" writes to stdout. Sections whose analyzer fails
are marked unavailable and the export still succeeds. A missing or invalid
pubspec.yaml / go.mod is fatal.

Example:
  kite context export
  kite context export ../my_app --format markdown
  kite context export -o - --include-code=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file, or - for stdout (default <project>/.ai/project_context.<ext>)")
	f.StringVarP(&opts.format, "format", "f", string(report.FormatJSON), "Report format: json, yaml or markdown")
	f.StringVar(&opts.template, "template", "", "Render with a custom text/template file instead of --format")
	f.BoolVar(&opts.force, "force", false, "Overwrite an existing report without asking")
	f.BoolVar(&opts.skip, "skip", false, "Keep an existing report")
	f.IntVar(&opts.maxFiles, "max-files", 0, "Maximum number of source files to measure (default from config)")
	f.Int64Var(&opts.maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes (default from config)")
	f.BoolVar(&opts.includeStructure, "include-structure", true, "Include the file inventory")
	f.BoolVar(&opts.includeDependencies, "include-dependencies", true, "Include dependencies and their health")
	f.BoolVar(&opts.includeCode, "include-code", true, "Include code metrics")
	f.BoolVar(&opts.includeArchitecture, "include-architecture", true, "Include architecture patterns")
	f.BoolVar(&opts.includeSuggestions, "include-suggestions", true, "Include improvement suggestions")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *exportOptions) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	strategy, err := report.NewStrategy(opts.force, opts.skip, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	r, err := loadRules(root)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	in, err := engine.LoadInput(root, cfg, r, log)
	if err != nil {
		return err
	}
	output.Verbose(fmt.Sprintf("Loaded %s (%s)", in.Manifest.File, in.Manifest.Kind))

	registry := engine.DefaultRegistry(engine.Components{
		Config: cfg,
		Rules:  r,
		Logger: log,
	})
	orchestrator := engine.NewOrchestrator(registry, engine.RetryFrom(cfg)).
		WithLogger(log.WithFields(logger.Component("orchestrator")))

	var run *engine.Run
	err = output.RunWithSpinner("Analyzing "+filepath.Base(root), func() error {
		run = orchestrator.Run(cmd.Context(), in, engine.SectionsFor(cfg.Report))
		return cmd.Context().Err()
	})
	if err != nil {
		return err
	}

	aggregator := report.NewAggregator(report.Options{
		PriorityPatterns:   cfg.Architecture.PriorityPatterns,
		IncludeSuggestions: cfg.Report.IncludeSuggestions,
		Version:            kite.Version,
	}).WithLogger(log.WithFields(logger.Component("report")))
	rep := aggregator.Build(run, CollectCommands(cmd.Root()))

	renderer := report.NewRenderer()
	var data []byte
	if opts.template != "" {
		data, err = renderer.RenderFile(opts.template, rep)
	} else {
		data, err = renderer.Render(rep, format)
	}
	if err != nil {
		return err
	}

	for _, s := range run.Stats {
		if s.Status == engine.StatusUnavailable {
			output.Warn(fmt.Sprintf("%s unavailable after %d attempts: %s", s.Name, s.Attempts, s.Error))
		} else {
			output.Verbose(fmt.Sprintf("%s finished in %dms", s.Name, s.DurationMS))
		}
	}

	if opts.output == Stdout {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path := opts.output
	if path == "" {
		path = filepath.Join(root, ".ai", "project_context."+format.Extension())
	}
	written, err := report.WriteFile(path, data, strategy)
	if errors.Is(err, report.ErrCancelled) {
		output.Info("Export cancelled; existing report kept")
		return nil
	}
	if err != nil {
		return err
	}
	if !written {
		output.Info(fmt.Sprintf("Kept existing %s", path))
		return nil
	}

	output.Success(fmt.Sprintf("Exported project context to %s", path))
	output.Step(fmt.Sprintf("%d files, %d dependencies, primary pattern %s",
		rep.Structure.TotalFiles, rep.Dependencies.Total, rep.Architecture.Primary))
	return nil
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *exportOptions) {
	f := cmd.Flags()
	if f.Changed("max-files") {
		cfg.Report.MaxFiles = opts.maxFiles
	}
	if f.Changed("max-file-size") {
		cfg.Report.MaxFileSize = opts.maxFileSize
	}
	if f.Changed("include-structure") {
		cfg.Report.IncludeStructure = opts.includeStructure
	}
	if f.Changed("include-dependencies") {
		cfg.Report.IncludeDependencies = opts.includeDependencies
	}
	if f.Changed("include-code") {
		cfg.Report.IncludeCode = opts.includeCode
	}
	if f.Changed("include-architecture") {
		cfg.Report.IncludeArchitecture = opts.includeArchitecture
	}
	if f.Changed("include-suggestions") {
		cfg.Report.IncludeSuggestions = opts.includeSuggestions
	}
}
