package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/usecase/internal/model"
)

// CSVSink writes one delimited-text file per scenario set. Rows follow each
// other without separator lines.
type CSVSink struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
}

func (s CSVSink) delimiter() rune {
	if s.Delimiter == 0 {
		return ','
	}
	return s.Delimiter
}

// Write creates <catalog>-TestSuite-<set>.csv in dir for every scenario set.
func (s CSVSink) Write(c *model.Catalog, dir string) ([]string, error) {
	var written []string
	for _, set := range c.ScenarioSets() {
		path := filepath.Join(dir, CSVFileName(c.Title(), set.Title()))
		written = append(written, path)
		if err := s.writeFile(path, set); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (s CSVSink) writeFile(path string, set model.ScenarioSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: creating %s: %w", path, err)
	}
	if err := s.Encode(f, set); err != nil {
		f.Close()
		return fmt.Errorf("table: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("table: closing %s: %w", path, err)
	}
	return nil
}

// Encode writes the header and every row of set to w.
func (s CSVSink) Encode(w io.Writer, set model.ScenarioSet) error {
	bw := bufio.NewWriter(w)
	s.writeLine(bw, Header())
	for _, row := range Rows(set) {
		s.writeLine(bw, row.Fields())
	}
	return bw.Flush()
}

func (s CSVSink) writeLine(w *bufio.Writer, fields []string) {
	d := s.delimiter()
	for i, field := range fields {
		if i > 0 {
			w.WriteRune(d)
		}
		w.WriteString(FormatField(field, d))
	}
	w.WriteByte('\n')
}

// FormatField quotes field only when it contains a double quote, the
// delimiter or a line break; embedded quotes are doubled. Nothing else is
// escaped.
func FormatField(field string, delimiter rune) string {
	if !strings.ContainsAny(field, "\"\r\n") && !strings.ContainsRune(field, delimiter) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
