package table

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Fixed cells of the workbook layout.
const (
	SummaryTitleCell   = "A1" // catalog title on the summary sheet
	SummaryUpdatedCell = "A2" // last-update date on the summary sheet
	PatternTitleCell   = "B1" // scenario-set title on each generated sheet
	PatternSummaryCell = "B2" // scenario-set summary on each generated sheet
	HeaderRow          = 5
	AnchorRow          = 6
)

const (
	defaultSummarySheet = "Summary"
	defaultPatternSheet = "Pattern"
)

// WorkbookTemplate supplies the workbook a spreadsheet test suite starts
// from. The first sheet is the summary sheet, the second the pattern sheet.
type WorkbookTemplate interface {
	Open() (*excelize.File, error)
}

// EmbeddedWorkbook is the built-in template produced by DefaultWorkbook.
type EmbeddedWorkbook struct{}

// Open builds a fresh default workbook.
func (EmbeddedWorkbook) Open() (*excelize.File, error) {
	return DefaultWorkbook()
}

// WorkbookFile is a template read from a path.
type WorkbookFile struct {
	Path string
}

// Open reads the workbook at Path.
func (t WorkbookFile) Open() (*excelize.File, error) {
	f, err := excelize.OpenFile(t.Path)
	if err != nil {
		return nil, fmt.Errorf("table: opening template %s: %w", t.Path, err)
	}
	return f, nil
}

// WorkbookBytes is a template held in memory, such as an upload.
type WorkbookBytes []byte

// Open parses the workbook bytes.
func (t WorkbookBytes) Open() (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(t))
	if err != nil {
		return nil, fmt.Errorf("table: reading template: %w", err)
	}
	return f, nil
}

// DefaultWorkbook builds the built-in template: a summary sheet and a pattern
// sheet with labels in column A, the header at HeaderRow and a styled empty
// anchor row at AnchorRow.
func DefaultWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := buildDefault(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("table: building default template: %w", err)
	}
	return f, nil
}

func buildDefault(f *excelize.File) error {
	first := f.GetSheetName(0)
	if err := f.SetSheetName(first, defaultSummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(defaultPatternSheet); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return err
	}
	if err := f.SetCellValue(defaultSummarySheet, SummaryTitleCell, "Test Suite"); err != nil {
		return err
	}
	if err := f.SetCellStyle(defaultSummarySheet, SummaryTitleCell, SummaryTitleCell, titleStyle); err != nil {
		return err
	}
	if err := f.SetCellValue(defaultSummarySheet, SummaryUpdatedCell, "Last updated:"); err != nil {
		return err
	}
	if err := f.SetColWidth(defaultSummarySheet, "A", "A", 60); err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for cell, label := range map[string]string{"A1": "Scenario set", "A2": "Summary"} {
		if err := f.SetCellValue(defaultPatternSheet, cell, label); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(defaultPatternSheet, "A1", "A2", labelStyle); err != nil {
		return err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	for i, title := range Header() {
		cell, err := excelize.CoordinatesToCellName(i+1, HeaderRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(defaultPatternSheet, cell, title); err != nil {
			return err
		}
	}
	if err := styleRow(f, defaultPatternSheet, HeaderRow, headerStyle); err != nil {
		return err
	}
	if err := styleRow(f, defaultPatternSheet, AnchorRow, bodyStyle); err != nil {
		return err
	}

	widths := []float64{24, 32, 32, 10, 36, 36, 14, 10, 20}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(defaultPatternSheet, col, col, w); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return nil
}

// styleRow applies style to the table columns of one row.
func styleRow(f *excelize.File, sheet string, row, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(Columns, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// WriteDefaultTemplate writes the built-in template as .xlsx bytes to w.
func WriteDefaultTemplate(w io.Writer) error {
	f, err := DefaultWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("table: writing default template: %w", err)
	}
	return nil
}
