package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/minazuki/internal/cli"
	"github.com/pthm/minazuki/pkg/parser"
	"github.com/pthm/minazuki/pkg/render"
)

const starterSchema = `entities:
  - name: artist
    fields:
      - {name: name, type: string, required: true}
    has_many: [song]
  - name: song
    fields:
      - {name: name, type: string, index: true}
      - {name: length_seconds, type: integer}
    has_many: [artist]
    collections:
      - name: lyric
        fields:
          - {name: timestamp_seconds, type: integer}
          - {name: text, type: string}
`

var (
	initYes     bool
	initForce   bool
	initSchema  string
	initRuntime string
	initOutput  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create minazuki.yaml and a starter schema",
	Long: `Create a minazuki.yaml in the current directory.

Without --yes, init asks for the schema path, runtime and output directory.
A starter schema is written when the schema file does not exist yet.`,
	Example: `  # Answer the prompts
  minazuki init

  # Accept defaults, generating SQL into db/
  minazuki init --yes --runtime sql --output db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOptions{
			Schema:  resolveString(initSchema, "schema.yaml"),
			Runtime: resolveString(initRuntime, "go"),
			Output:  resolveString(initOutput, "models"),
			Starter: true,
			Force:   initForce,
		}

		if !initYes {
			if err := promptInit(cmd.Context(), &opts); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return cli.GeneralError("init aborted", nil)
				}
				return cli.GeneralError("reading answers", err)
			}
		}

		dir, err := os.Getwd()
		if err != nil {
			return cli.GeneralError("getting cwd", err)
		}
		return runInit(dir, opts, cmd.OutOrStdout())
	},
}

func init() {
	f := initCmd.Flags()
	f.BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
	f.BoolVar(&initForce, "force", false, "overwrite an existing minazuki.yaml")
	f.StringVar(&initSchema, "schema", "", "schema file path (default: schema.yaml)")
	f.StringVar(&initRuntime, "runtime", "", "generator runtime (default: go)")
	f.StringVar(&initOutput, "output", "", "output directory (default: models)")
}

type initOptions struct {
	Schema  string
	Runtime string
	Output  string
	Starter bool
	Force   bool
}

func promptInit(ctx context.Context, opts *initOptions) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema file").
				Value(&opts.Schema).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("schema path is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Runtime").
				Options(huh.NewOptions(render.ListRuntimes()...)...).
				Value(&opts.Runtime),
			huh.NewInput().
				Title("Output directory").
				Value(&opts.Output),
			huh.NewConfirm().
				Title("Write a starter schema if none exists?").
				Value(&opts.Starter),
		),
	)
	return form.RunWithContext(ctx)
}

// runInit writes the config file, and the starter schema when requested
// and absent, into dir.
func runInit(dir string, opts initOptions, out io.Writer) error {
	if !render.Registered(opts.Runtime) {
		return cli.ConfigError(fmt.Sprintf("unknown runtime %q (available: %s)",
			opts.Runtime, strings.Join(render.ListRuntimes(), ", ")), nil)
	}

	configFile := filepath.Join(dir, cli.ConfigFileNames[0])
	if _, err := os.Stat(configFile); err == nil && !opts.Force {
		return cli.ConfigError(configFile+" already exists (use --force to overwrite)", nil)
	}

	// Only chosen keys are written so the remaining defaults still apply.
	generate := map[string]any{"runtime": opts.Runtime}
	if opts.Output != "" {
		generate["output"] = opts.Output
	}
	data, err := yaml.Marshal(map[string]any{
		"schema":   opts.Schema,
		"generate": generate,
	})
	if err != nil {
		return cli.GeneralError("encoding config", err)
	}
	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return cli.GeneralError("writing config", err)
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", configFile)

	if !opts.Starter {
		return nil
	}
	schemaFile := opts.Schema
	if !filepath.IsAbs(schemaFile) {
		schemaFile = filepath.Join(dir, schemaFile)
	}
	if _, err := os.Stat(schemaFile); err == nil {
		logger.Debug("schema exists, not writing starter", "path", schemaFile)
		return nil
	}
	if _, err := parser.ParseSchemaString(starterSchema); err != nil {
		return cli.GeneralError("starter schema", err)
	}
	if err := os.MkdirAll(filepath.Dir(schemaFile), 0o755); err != nil {
		return cli.GeneralError("creating schema directory", err)
	}
	if err := os.WriteFile(schemaFile, []byte(starterSchema), 0o644); err != nil {
		return cli.GeneralError("writing schema", err)
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", schemaFile)
	return nil
}
