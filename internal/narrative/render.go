package narrative

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/papapumpkin/usecase/internal/model"
)

// Renderer holds the compiled catalog and scenario-set templates. It is
// compiled once and may be shared by concurrent runs.
type Renderer struct {
	catalog     *template.Template
	scenarioSet *template.Template
}

// New loads both templates of set and compiles them.
func New(set TemplateSet) (*Renderer, error) {
	catalogText, err := set.Catalog.Load()
	if err != nil {
		return nil, err
	}
	setText, err := set.ScenarioSet.Load()
	if err != nil {
		return nil, err
	}
	return Compile(catalogText, setText)
}

// Compile parses template texts directly.
func Compile(catalogText, scenarioSetText string) (*Renderer, error) {
	cat, err := parse("catalog", catalogText)
	if err != nil {
		return nil, err
	}
	set, err := parse("scenario-set", scenarioSetText)
	if err != nil {
		return nil, err
	}
	return &Renderer{catalog: cat, scenarioSet: set}, nil
}

func parse(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("narrative: compiling %s template: %w", name, err)
	}
	return t, nil
}

// funcs are available to every template.
func funcs() template.FuncMap {
	return template.FuncMap{
		"bullets": bullets,
		"join":    strings.Join,
		"date":    func(t time.Time) string { return t.Local().Format("2006-01-02") },
		"inc":     func(i int) int { return i + 1 },
		"mdName":  func(name string) string { return model.WithExtension(name, ".md") },
	}
}

// bullets renders every item as a "* " line, even a single one.
func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "* " + item
	}
	return strings.Join(lines, "\n")
}

// RenderCatalog executes the catalog template for c.
func (r *Renderer) RenderCatalog(w io.Writer, c *model.Catalog) error {
	if err := r.catalog.Execute(w, c); err != nil {
		return fmt.Errorf("narrative: rendering catalog %q: %w", c.Title(), err)
	}
	return nil
}

// RenderScenarioSet executes the scenario-set template for s.
func (r *Renderer) RenderScenarioSet(w io.Writer, s model.ScenarioSet) error {
	if err := r.scenarioSet.Execute(w, s); err != nil {
		return fmt.Errorf("narrative: rendering scenario set %q: %w", s.Title(), err)
	}
	return nil
}

// Write renders the catalog and each scenario set into dir, naming every
// document after its source file with a .md extension. It returns the paths
// written so far even when it fails.
func (r *Renderer) Write(c *model.Catalog, dir string) ([]string, error) {
	var written []string

	path := filepath.Join(dir, model.WithExtension(c.FileName(), ".md"))
	written = append(written, path)
	if err := writeDoc(path, func(w io.Writer) error { return r.RenderCatalog(w, c) }); err != nil {
		return written, err
	}

	for _, set := range c.ScenarioSets() {
		path := filepath.Join(dir, model.WithExtension(set.FileName(), ".md"))
		written = append(written, path)
		if err := writeDoc(path, func(w io.Writer) error { return r.RenderScenarioSet(w, set) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeDoc(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("narrative: creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("narrative: closing %s: %w", path, err)
	}
	return nil
}
