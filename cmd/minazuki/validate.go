package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a schema",
	Long: `Validate that a schema parses and resolves: field names are legal, every
parent and has_many target exists, no synthesized names collide and the
dependency graph has no cycles.`,
	Example: `  # Validate a specific schema file
  minazuki validate --schema schema.yaml

  # Validate using config file settings
  minazuki validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve schema path: flag > config > default
		schemaPath := resolveString(validateSchema, cfg.Schema)

		m, err := loadModel(schemaPath, cfg.Generate.Irregular)
		if err != nil {
			return err
		}

		if !quiet {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Schema is valid. Resolved %d entities in %d levels:\n", len(m.Entities), len(m.Levels))
			for _, e := range m.Entities {
				kind := ""
				switch {
				case e.Junction:
					kind = " (junction)"
				case e.IsCollection():
					kind = fmt.Sprintf(" (collection of %s)", e.Owner)
				}
				_, _ = fmt.Fprintf(out, "  %d. %s%s\n", e.Index, e.Name, kind)
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "path to schema file")
}
