// Package doctor provides health checks for minazuki projects.
//
// The doctor command validates that a project is ready to generate by
// checking the schema file, its resolution, reference fields, naming and
// the selected runtime's inputs.
//
// Example usage:
//
//	d := doctor.New("schema.yaml", doctor.Options{Runtime: "template", TemplateDir: "templates"})
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pthm/minazuki/internal/resolve"
	"github.com/pthm/minazuki/pkg/parser"
	"github.com/pthm/minazuki/pkg/render"
	"github.com/pthm/minazuki/pkg/schema"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Schema File", "Templates").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Check returns the first check with the given name.
func (r *Report) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Options configures the runtime-specific checks.
type Options struct {
	// Runtime is the renderer generate will use. Empty skips the runtime
	// checks.
	Runtime string
	// TemplateDir is checked when Runtime is "template".
	TemplateDir string
	// Resolve is passed through to resolve.Resolve.
	Resolve []resolve.Option
}

// Doctor performs health checks on a minazuki project.
type Doctor struct {
	schemaPath string
	opts       Options

	// Cached data from checks (populated during Run)
	parsed schema.Schema
	model  *resolve.Model
}

// New creates a new Doctor instance.
func New(schemaPath string, opts Options) *Doctor {
	return &Doctor{
		schemaPath: schemaPath,
		opts:       opts,
	}
}

// Run executes all health checks and returns a report. Checks that
// depend on an earlier failed check are skipped.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if d.checkSchemaFile(report) {
		if d.checkResolution(report) {
			d.checkReferences(report)
			d.checkNaming(report)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.checkRuntime(report); err != nil {
		return nil, fmt.Errorf("checking runtime: %w", err)
	}
	return report, nil
}

// checkSchemaFile validates the schema file exists and parses.
func (d *Doctor) checkSchemaFile(report *Report) bool {
	info, err := os.Stat(d.schemaPath)
	if err != nil || info.IsDir() {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema file not found at %s", d.schemaPath),
			FixHint:  "Create a schema.yaml or point --schema at your schema file",
		})
		return false
	}

	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema file exists at %s", d.schemaPath),
	})

	s, err := parser.ParseSchema(d.schemaPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "valid",
			Status:   StatusFail,
			Message:  "Schema has definition errors",
			Details:  err.Error(),
			FixHint:  "Run 'minazuki validate' to see detailed errors",
		})
		return false
	}
	d.parsed = s

	fieldCount := 0
	for _, e := range s.Entities {
		fieldCount += countFields(e)
	}
	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema is valid (%d entities, %d fields)", len(s.Entities), fieldCount),
	})
	return true
}

func countFields(d schema.EntityDefinition) int {
	n := len(d.Fields)
	for _, c := range d.Collections {
		n += countFields(c)
	}
	return n
}

// checkResolution resolves the parsed schema.
func (d *Doctor) checkResolution(report *Report) bool {
	m, err := resolve.Resolve(d.parsed, d.opts.Resolve...)
	if err != nil {
		hint := "Fix the reported definition error and re-run"
		if schema.IsCyclicSchemaErr(err) {
			hint = "Break the cycle between the listed entities"
		}
		report.AddCheck(CheckResult{
			Category: "Resolution",
			Name:     "resolves",
			Status:   StatusFail,
			Message:  "Schema does not resolve",
			Details:  err.Error(),
			FixHint:  hint,
		})
		return false
	}
	d.model = m

	var details strings.Builder
	for i, level := range m.Levels {
		if i > 0 {
			details.WriteByte('\n')
		}
		fmt.Fprintf(&details, "level %d: %s", i, strings.Join(level, ", "))
	}
	report.AddCheck(CheckResult{
		Category: "Resolution",
		Name:     "resolves",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Resolved %d entities in %d levels", len(m.Entities), len(m.Levels)),
		Details:  details.String(),
	})

	junctions := m.Junctions()
	var names []string
	for _, j := range junctions {
		names = append(names, fmt.Sprintf("%s (%s)", j.Name, strings.Join(j.Members, " ↔ ")))
	}
	report.AddCheck(CheckResult{
		Category: "Resolution",
		Name:     "junctions",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d junction entities synthesized", len(junctions)),
		Details:  strings.Join(names, "\n"),
	})
	return true
}

// checkReferences reports reference fields whose type names no entity.
func (d *Doctor) checkReferences(report *Report) {
	var dangling []string
	for _, e := range d.model.Entities {
		for _, f := range e.Fields {
			if !f.IsReference() {
				continue
			}
			if _, ok := d.model.Entity(f.Type); !ok {
				dangling = append(dangling, fmt.Sprintf("%s.%s → %s", e.Name, f.Name, f.Type))
			}
		}
	}

	if len(dangling) > 0 {
		report.AddCheck(CheckResult{
			Category: "References",
			Name:     "references",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d reference fields name unknown entities", len(dangling)),
			Details:  strings.Join(dangling, "\n"),
			FixHint:  "Use one of string, integer, boolean or the name of a declared entity",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "References",
		Name:     "references",
		Status:   StatusPass,
		Message:  "All reference fields name known entities",
	})
}

// checkNaming warns about entities whose singular and plural forms are
// equal; template paths using both placeholders collide for them.
func (d *Doctor) checkNaming(report *Report) {
	var same []string
	for _, e := range d.model.Entities {
		if e.Singular == e.Plural {
			same = append(same, e.Name)
		}
	}

	if len(same) > 0 {
		report.AddCheck(CheckResult{
			Category: "Naming",
			Name:     "plurals",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d entities have identical singular and plural forms", len(same)),
			Details:  strings.Join(same, "\n"),
			FixHint:  "Add an irregular plural under generate.irregular in minazuki.yaml",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Naming",
		Name:     "plurals",
		Status:   StatusPass,
		Message:  "Singular and plural forms are distinct",
	})
}

// checkRuntime validates the selected runtime and its inputs.
func (d *Doctor) checkRuntime(report *Report) error {
	if d.opts.Runtime == "" {
		return nil
	}
	if !render.Registered(d.opts.Runtime) {
		report.AddCheck(CheckResult{
			Category: "Runtime",
			Name:     "registered",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Unknown runtime %q", d.opts.Runtime),
			FixHint:  fmt.Sprintf("Use one of: %s", strings.Join(render.ListRuntimes(), ", ")),
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "Runtime",
		Name:     "registered",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Runtime %q is available", d.opts.Runtime),
	})

	if d.opts.Runtime != "template" {
		return nil
	}
	return d.checkTemplates(report)
}

func (d *Doctor) checkTemplates(report *Report) error {
	info, err := os.Stat(d.opts.TemplateDir)
	if err != nil || !info.IsDir() {
		report.AddCheck(CheckResult{
			Category: "Templates",
			Name:     "template_dir",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Template directory not found at %s", d.opts.TemplateDir),
			FixHint:  "Create the directory or set generate.templates in minazuki.yaml",
		})
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(d.opts.TemplateDir), "**/*.tmpl", doublestar.WithFilesOnly())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if len(matches) == 0 {
		report.AddCheck(CheckResult{
			Category: "Templates",
			Name:     "template_dir",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("No *.tmpl files under %s", d.opts.TemplateDir),
			FixHint:  "Add templates ending in .tmpl; generate will produce no files",
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "Templates",
		Name:     "template_dir",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Found %d templates under %s", len(matches), d.opts.TemplateDir),
		Details:  strings.Join(matches, "\n"),
	})
	return nil
}
