package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/minazuki/internal/cli"
	"github.com/pthm/minazuki/pkg/compiler"
)

var (
	resolveSchema string
	resolveFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the resolved model",
	Long: `Resolve a schema and print every entity in dependency order with its
level, parent, owner, has_many targets and junction members.`,
	Example: `  # Show the dependency order as a table
  minazuki resolve

  # Dump the model as YAML for inspection
  minazuki resolve --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(resolveSchema, cfg.Schema)

		m, err := loadModel(schemaPath, cfg.Generate.Irregular)
		if err != nil {
			return err
		}
		if err := printModel(cmd.OutOrStdout(), m, resolveFormat); err != nil {
			return cli.GeneralError("printing model", err)
		}
		return nil
	},
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&resolveSchema, "schema", "", "path to schema file")
	f.StringVarP(&resolveFormat, "format", "o", "table", "output format: table, yaml, json")
}

type modelView struct {
	Entities      []entityView        `json:"entities"`
	Levels        [][]string          `json:"levels"`
	MappingTables map[string][]string `json:"mapping_tables,omitempty"`
	Owners        map[string]string   `json:"owners,omitempty"`
}

type entityView struct {
	Index    int                 `json:"index"`
	Level    int                 `json:"level"`
	Name     string              `json:"name"`
	Plural   string              `json:"plural"`
	Parent   string              `json:"parent,omitempty"`
	Owner    string              `json:"owner,omitempty"`
	Fields   []fieldView         `json:"fields,omitempty"`
	Composed map[string][]string `json:"composed,omitempty"`
	HasMany  []string            `json:"has_many,omitempty"`
	Members  []string            `json:"members,omitempty"`
}

type fieldView struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

func newModelView(m *compiler.Model) modelView {
	v := modelView{
		Levels:        m.Levels,
		MappingTables: m.MappingTables,
		Owners:        m.Owners,
	}
	for _, e := range m.Entities {
		ev := entityView{
			Index:   e.Index,
			Level:   e.Level,
			Name:    e.Name,
			Plural:  e.Plural,
			Parent:  e.Parent,
			Owner:   e.Owner,
			HasMany: e.HasMany,
			Members: e.Members,
		}
		for _, f := range e.Fields {
			ev.Fields = append(ev.Fields, fieldView{Name: f.Name, Type: f.Type, Options: f.Options})
		}
		for _, anc := range e.Composed {
			if ev.Composed == nil {
				ev.Composed = make(map[string][]string)
			}
			names := make([]string, len(anc.Fields))
			for i, f := range anc.Fields {
				names[i] = f.Name
			}
			ev.Composed[anc.Entity] = names
		}
		v.Entities = append(v.Entities, ev)
	}
	return v
}

// printModel writes m to w in the given format.
func printModel(w io.Writer, m *compiler.Model, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newModelView(m))
	case "yaml":
		out, err := yaml.Marshal(newModelView(m))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "table", "":
		_, err := fmt.Fprintln(w, modelTable(m).Render())
		return err
	default:
		return fmt.Errorf("unknown format %q (want table, yaml or json)", format)
	}
}

func modelTable(m *compiler.Model) *table.Table {
	rows := make([][]string, 0, len(m.Entities))
	for _, e := range m.Entities {
		related := e.HasMany
		if e.Junction {
			related = e.Members
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			strconv.Itoa(e.Level),
			e.Name,
			e.Parent,
			e.Owner,
			strings.Join(related, ", "),
		})
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "LEVEL", "ENTITY", "PARENT", "OWNER", "RELATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
