package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/minazuki/internal/cli"
	"github.com/pthm/minazuki/internal/doctor"
)

var (
	doctorSchema    string
	doctorRuntime   string
	doctorTemplates string
	doctorVerbose   bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long:  `Run health checks on the schema and the inputs of the selected runtime.`,
	Example: `  # Run health checks
  minazuki doctor

  # Show resolution levels and junctions
  minazuki doctor --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(doctorSchema, cfg.ResolvedSchema())
		verboseFlag := resolveBool(doctorVerbose, cfg.Doctor.Verbose)
		out := cmd.OutOrStdout()

		if !quiet {
			_, _ = fmt.Fprintln(out, "minazuki doctor - Health Check")
		}

		d := doctor.New(schemaPath, doctor.Options{
			Runtime:     resolveString(doctorRuntime, cfg.Generate.Runtime),
			TemplateDir: resolveString(doctorTemplates, cfg.Generate.Templates),
			Resolve:     resolveOptions(cfg.Generate.Irregular),
		})
		report, err := d.Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running doctor", err)
		}

		report.Print(out, verboseFlag)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorSchema, "schema", "", "path to schema file")
	f.StringVar(&doctorRuntime, "runtime", "", "runtime to check inputs for")
	f.StringVar(&doctorTemplates, "templates", "", "template directory")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}
