package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/minazuki/internal/cli"
	"github.com/pthm/minazuki/internal/version"
	"github.com/pthm/minazuki/internal/watch"
	"github.com/pthm/minazuki/pkg/render"
)

var (
	genRuntime   string
	genSchema    string
	genOutput    string
	genTemplates string
	genPackage   string
	genIDPrefix  string
	genWorkers   int
	genWatch     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate code from a schema",
	Long: `Resolve a schema and render it with the selected runtime.

Supported runtimes: ` + strings.Join(render.ListRuntimes(), ", "),
	Example: `  # Generate Go structs into ./models
  minazuki generate --runtime go --output models

  # Render a template tree
  minazuki generate --runtime template --templates generators --output app

  # Re-generate whenever the schema or templates change
  minazuki generate --runtime template --output app --watch

  # Print a single generated file to stdout
  minazuki generate --runtime go`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve values: flags > config > defaults
		opts := generateOptions{
			Runtime:   resolveString(genRuntime, cfg.Generate.Runtime),
			Schema:    resolveString(genSchema, cfg.ResolvedSchema()),
			Output:    resolveString(genOutput, cfg.Generate.Output),
			Templates: resolveString(genTemplates, cfg.Generate.Templates),
			Package:   resolveString(genPackage, cfg.Generate.Package),
			IDPrefix:  resolveString(genIDPrefix, cfg.Generate.IDPrefix),
			Workers:   resolveInt(genWorkers, cfg.Generate.Workers),
			Irregular: cfg.Generate.Irregular,
		}

		if opts.Runtime == "" {
			return cli.ConfigError("--runtime is required", nil)
		}
		if opts.Schema == "" {
			return cli.ConfigError("--schema is required", nil)
		}
		if !render.Registered(opts.Runtime) {
			return cli.ConfigError(
				fmt.Sprintf("unknown runtime %q", opts.Runtime),
				fmt.Errorf("supported runtimes: %s", strings.Join(render.ListRuntimes(), ", ")),
			)
		}

		out := cmd.OutOrStdout()
		if !resolveBool(genWatch, cfg.Generate.Watch) {
			return runGenerate(cmd.Context(), opts, out)
		}
		if opts.Output == "" {
			return cli.ConfigError("--output is required with --watch", nil)
		}
		return watchGenerate(cmd.Context(), opts, out)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genRuntime, "runtime", "", "target runtime: "+strings.Join(render.ListRuntimes(), ", "))
	f.StringVar(&genSchema, "schema", "", "path to schema file")
	f.StringVar(&genOutput, "output", "", "output directory (default: stdout for single-file output)")
	f.StringVar(&genTemplates, "templates", "", "template directory for the template runtime")
	f.StringVar(&genPackage, "package", "", "package name for Go output")
	f.StringVar(&genIDPrefix, "id-prefix", "", "prefix for -id- path placeholders")
	f.IntVar(&genWorkers, "workers", 0, "parallel render workers (default: one per CPU)")
	f.BoolVar(&genWatch, "watch", false, "re-generate when the schema or templates change")
}

type generateOptions struct {
	Runtime   string
	Schema    string
	Output    string
	Templates string
	Package   string
	IDPrefix  string
	Workers   int
	Irregular map[string]string
}

// runGenerate resolves the schema and writes the rendered files under
// opts.Output, or to out when no output directory is set.
func runGenerate(ctx context.Context, opts generateOptions, out io.Writer) error {
	m, err := loadModel(opts.Schema, opts.Irregular)
	if err != nil {
		return err
	}

	files, err := render.Generate(ctx, opts.Runtime, m, &render.Config{
		Package:     opts.Package,
		TemplateDir: opts.Templates,
		IDPrefix:    opts.IDPrefix,
		Workers:     opts.Workers,
		Version:     version.Short(),
		SourcePath:  opts.Schema,
	})
	if err != nil {
		return cli.GeneralError("generation failed", err)
	}
	logger.Info("rendered model", "runtime", opts.Runtime, "files", len(files))

	if opts.Output == "" {
		if len(files) > 1 {
			return cli.ConfigError("--output is required for multi-file generation", nil)
		}
		for _, content := range files {
			if _, err := out.Write(content); err != nil {
				return cli.GeneralError("writing to stdout", err)
			}
		}
		return nil
	}

	written, err := render.WriteFiles(opts.Output, files)
	if err != nil {
		return cli.GeneralError("writing output", err)
	}
	if !quiet {
		for _, path := range written {
			_, _ = fmt.Fprintf(out, "Generated %s\n", path)
		}
	}
	return nil
}

// watchGenerate generates once, then again after every burst of changes
// to the schema or template tree until ctx is canceled. Failed
// regenerations are logged and the watch continues.
func watchGenerate(ctx context.Context, opts generateOptions, out io.Writer) error {
	if err := runGenerate(ctx, opts, out); err != nil {
		logger.Error("generate failed", "error", err)
	}

	paths := []string{opts.Schema}
	if opts.Runtime == "template" {
		paths = append(paths, opts.Templates)
	}
	ignore := []string{"**/.git/**", "**/*.swp", "**/*~"}
	if abs, err := filepath.Abs(opts.Output); err == nil {
		ignore = append(ignore, filepath.ToSlash(abs)+"/**")
	}

	w, err := watch.New(watch.Config{Paths: paths, Ignore: ignore, Logger: logger})
	if err != nil {
		return cli.GeneralError("starting watcher", err)
	}
	if !quiet {
		_, _ = fmt.Fprintf(out, "Watching %s for changes (Ctrl-C to stop)\n", strings.Join(paths, ", "))
	}
	err = w.Run(ctx, func(ctx context.Context, changed []string) error {
		logger.Info("change detected", "paths", changed)
		return runGenerate(ctx, opts, out)
	})
	if err != nil {
		return cli.GeneralError("watching", err)
	}
	return nil
}
