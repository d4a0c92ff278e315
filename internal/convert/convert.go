// Package convert runs one translation: it validates the request, loads and
// links the source document, builds the catalog and hands it to the sink the
// operation selects.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/usecase/internal/model"
	"github.com/papapumpkin/usecase/internal/narrative"
	"github.com/papapumpkin/usecase/internal/source"
	"github.com/papapumpkin/usecase/internal/table"
)

// Operation selects the output a run produces.
type Operation int

const (
	// OpDocument renders Markdown narrative documents.
	OpDocument Operation = iota
	// OpTestSuite writes a spreadsheet test suite.
	OpTestSuite
	// OpTestSuiteCSV writes one delimited-text test table per scenario set.
	OpTestSuiteCSV
)

// String returns the operation name accepted by ParseOperation.
func (o Operation) String() string {
	switch o {
	case OpDocument:
		return "document"
	case OpTestSuite:
		return "testsuite"
	case OpTestSuiteCSV:
		return "testsuite-csv"
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// ParseOperation maps an operation name to its Operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc", "markdown":
		return OpDocument, nil
	case "testsuite", "xlsx":
		return OpTestSuite, nil
	case "testsuite-csv", "csv":
		return OpTestSuiteCSV, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Request describes one run.
type Request struct {
	Op    Operation
	Input string
	// OutputDir defaults to the directory of Input.
	OutputDir string
	// Template overrides the built-in templates: a "catalog|scenario-set"
	// pair for OpDocument, a workbook path for OpTestSuite. Ignored for CSV.
	Template     string
	ReferenceDir string
	// Delimiter for OpTestSuiteCSV; zero means ','.
	Delimiter rune
	// Renderer, when set, is used for OpDocument instead of compiling Template.
	Renderer *narrative.Renderer
	// Confined rejects scenario-set references that leave the catalog's
	// directory. Set for untrusted input.
	Confined bool
}

// Validate checks every path parameter without reading any document.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return &ParameterError{Param: "input", Err: ErrMissingInput}
	}
	if _, err := existingFile("input", r.Input); err != nil {
		return err
	}
	if r.OutputDir != "" {
		if err := existingDir("output directory", r.OutputDir); err != nil {
			return err
		}
	}
	if r.ReferenceDir != "" {
		if err := existingDir("reference directory", r.ReferenceDir); err != nil {
			return err
		}
	}

	switch r.Op {
	case OpDocument:
		if r.Renderer == nil {
			if _, err := narrative.ParseTemplateSpec(r.Template); err != nil {
				return &ParameterError{Param: "template", Value: r.Template, Err: err}
			}
		}
	case OpTestSuite:
		if r.Template != "" {
			if _, err := existingFile("template", r.Template); err != nil {
				return err
			}
		}
	case OpTestSuiteCSV:
	default:
		return &ParameterError{Param: "operation", Value: r.Op.String(), Err: ErrUnknownOperation}
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	Catalog  *model.Catalog
	Document *source.Document
	Files    []string
}

// Run validates req, loads the input and writes the selected outputs. When
// writing fails, files already written by this run are removed; removal
// errors are ignored.
func Run(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	input, _ := source.NormalizedPath(req.Input)

	sink, err := req.sink()
	if err != nil {
		return nil, err
	}

	doc, err := source.LoadFile(input, source.Options{ReferenceDir: req.ReferenceDir, Confined: req.Confined})
	if err != nil {
		return nil, err
	}
	cat, err := model.Build(doc)
	if err != nil {
		return nil, err
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	files, err := sink.Write(cat, outDir)
	if err != nil {
		removeAll(files)
		return nil, err
	}
	return &Result{Catalog: cat, Document: doc, Files: files}, nil
}

// sink picks the output strategy for the operation.
func (r Request) sink() (table.Sink, error) {
	switch r.Op {
	case OpDocument:
		if r.Renderer != nil {
			return r.Renderer, nil
		}
		set, err := narrative.ParseTemplateSpec(r.Template)
		if err != nil {
			return nil, &ParameterError{Param: "template", Value: r.Template, Err: err}
		}
		rend, err := narrative.New(set)
		if err != nil {
			return nil, err
		}
		return rend, nil
	case OpTestSuite:
		if r.Template == "" {
			return table.XLSXSink{Template: table.EmbeddedWorkbook{}}, nil
		}
		path, _ := source.NormalizedPath(r.Template)
		return table.XLSXSink{Template: table.WorkbookFile{Path: path}}, nil
	case OpTestSuiteCSV:
		return table.CSVSink{Delimiter: r.Delimiter}, nil
	}
	return nil, &ParameterError{Param: "operation", Value: r.Op.String(), Err: ErrUnknownOperation}
}

func existingFile(param, path string) (string, error) {
	if found, ok := source.NormalizedPath(path); ok {
		return found, nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", &ParameterError{Param: param, Value: path, Err: ErrNotFound}
	}
	return "", &ParameterError{Param: param, Value: path, Err: ErrNotFile}
}

func existingDir(param, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ParameterError{Param: param, Value: path, Err: ErrNotFound}
	}
	if !info.IsDir() {
		return &ParameterError{Param: param, Value: path, Err: ErrNotDir}
	}
	return nil
}

// removeAll deletes files best-effort.
func removeAll(files []string) {
	for _, f := range files {
		_ = os.Remove(f)
	}
}
