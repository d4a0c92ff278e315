package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/papapumpkin/usecase/internal/model"
)

// XLSXSink writes one spreadsheet per catalog: a summary sheet followed by
// one sheet per scenario set, each cloned from the template's pattern sheet.
type XLSXSink struct {
	// Template defaults to EmbeddedWorkbook.
	Template WorkbookTemplate
}

// Write validates sheet titles, fills the template and saves
// <catalog>-TestSuite.xlsx in dir. Nothing is created when validation fails.
func (s XLSXSink) Write(c *model.Catalog, dir string) ([]string, error) {
	if err := CheckSheetTitles(c); err != nil {
		return nil, err
	}

	tmpl := s.Template
	if tmpl == nil {
		tmpl = EmbeddedWorkbook{}
	}
	f, err := tmpl.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := Fill(f, c); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, XLSXFileName(c.Title()))
	if err := f.SaveAs(path); err != nil {
		return []string{path}, fmt.Errorf("table: saving %s: %w", path, err)
	}
	return []string{path}, nil
}

// Fill lays the catalog out in f. The first sheet receives the catalog title
// and last-update date; the second sheet is the pattern, copied once per
// scenario set and removed at the end.
func Fill(f *excelize.File, c *model.Catalog) error {
	sheets := f.GetSheetList()
	if len(sheets) < 2 {
		return ErrBadTemplate
	}
	summary, pattern := sheets[0], sheets[1]

	for _, set := range c.ScenarioSets() {
		if strings.EqualFold(set.Title(), summary) {
			return fmt.Errorf("%w: %q is also the summary sheet name", ErrDuplicateTitle, set.Title())
		}
	}
	pattern, err := movePatternAside(f, pattern, c)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(summary, SummaryTitleCell, c.Title()+" Test Suite"); err != nil {
		return fmt.Errorf("table: writing summary: %w", err)
	}
	updated := "Last updated: " + c.LastUpdate().Local().Format("2006-01-02")
	if err := f.SetCellValue(summary, SummaryUpdatedCell, updated); err != nil {
		return fmt.Errorf("table: writing summary: %w", err)
	}

	patternIdx, err := f.GetSheetIndex(pattern)
	if err != nil {
		return fmt.Errorf("table: locating pattern sheet: %w", err)
	}
	for _, set := range c.ScenarioSets() {
		if err := fillSheet(f, patternIdx, set); err != nil {
			return fmt.Errorf("table: sheet %q: %w", set.Title(), err)
		}
	}

	if err := f.DeleteSheet(pattern); err != nil {
		return fmt.Errorf("table: removing pattern sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return nil
}

// movePatternAside renames the pattern sheet when a scenario set wants its
// name, so the copies can take it.
func movePatternAside(f *excelize.File, pattern string, c *model.Catalog) (string, error) {
	taken := func(name string) bool {
		for _, set := range c.ScenarioSets() {
			if strings.EqualFold(set.Title(), name) {
				return true
			}
		}
		return false
	}
	if !taken(pattern) {
		return pattern, nil
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("_pattern%d", i)
		if taken(name) {
			continue
		}
		if err := f.SetSheetName(pattern, name); err != nil {
			return "", fmt.Errorf("table: renaming pattern sheet: %w", err)
		}
		return name, nil
	}
}

// fillSheet copies the pattern into a new sheet named after set and writes
// its rows. The anchor row is kept pristine: before each line it is
// duplicated downward and the upper copy is filled, so every written row
// inherits the anchor's formatting. Scenarios are separated by one blank
// row, and the leftover anchor is removed at the end.
func fillSheet(f *excelize.File, patternIdx int, set model.ScenarioSet) error {
	name := set.Title()
	idx, err := f.NewSheet(name)
	if err != nil {
		return err
	}
	if err := f.CopySheet(patternIdx, idx); err != nil {
		return err
	}
	if err := f.SetCellValue(name, PatternTitleCell, set.Title()); err != nil {
		return err
	}
	if err := f.SetCellValue(name, PatternSummaryCell, set.Summary()); err != nil {
		return err
	}

	row := AnchorRow
	groups := RowsByScenario(set)
	for g, group := range groups {
		for _, r := range group {
			if err := f.DuplicateRow(name, row); err != nil {
				return err
			}
			if err := writeRow(f, name, row, r); err != nil {
				return err
			}
			row++
		}
		if g < len(groups)-1 {
			if err := f.DuplicateRow(name, row); err != nil {
				return err
			}
			if err := writeRow(f, name, row, Row{}); err != nil {
				return err
			}
			row++
		}
	}
	return f.RemoveRow(name, row)
}

// writeRow sets every column of row, blanks included, so nothing the
// template's anchor row holds survives into the output. A zero Row clears the
// line.
func writeRow(f *excelize.File, sheet string, row int, r Row) error {
	values := make([]any, Columns)
	if r != (Row{}) {
		values = r.Values()
	}
	for i, v := range values {
		if v == nil {
			v = ""
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
