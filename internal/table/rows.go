// Package table flattens scenario sets into test-case rows and serializes
// them as delimited text or as a spreadsheet test suite.
package table

import (
	"strconv"
	"strings"

	"github.com/papapumpkin/usecase/internal/model"
)

// ExecutionManual is the execution type written on every generated row.
const ExecutionManual = "Manual"

// bulletPrefix starts each item of a multi-item list cell.
const bulletPrefix = "* "

// Columns is the number of fields in a Row.
const Columns = 9

// Header returns the column titles, in Row field order.
func Header() []string {
	return []string{
		"Case name",
		"Summary",
		"Preconditions",
		"Action No.",
		"Action",
		"Expected result",
		"Execution type",
		"Result",
		"Notes",
	}
}

// Row is one test-case line. Only the first action of a scenario carries the
// case name, summary and preconditions; later actions leave them blank.
type Row struct {
	CaseName       string
	Summary        string
	Preconditions  string
	ActionNo       int
	Action         string
	ExpectedResult string
	ExecutionType  string
	Result         string
	Notes          string
}

// Fields returns the row as text, in Header order.
func (r Row) Fields() []string {
	return []string{
		r.CaseName,
		r.Summary,
		r.Preconditions,
		strconv.Itoa(r.ActionNo),
		r.Action,
		r.ExpectedResult,
		r.ExecutionType,
		r.Result,
		r.Notes,
	}
}

// Values returns the row with the action number kept numeric, for sinks that
// store typed cells.
func (r Row) Values() []any {
	return []any{
		r.CaseName,
		r.Summary,
		r.Preconditions,
		r.ActionNo,
		r.Action,
		r.ExpectedResult,
		r.ExecutionType,
		r.Result,
		r.Notes,
	}
}

// ScenarioRows lays out one scenario: one row per action, numbered from 1.
func ScenarioRows(sc model.Scenario) []Row {
	actions := sc.Actions()
	rows := make([]Row, 0, len(actions))
	for i, a := range actions {
		row := Row{
			ActionNo:       i + 1,
			Action:         a.Operation(),
			ExpectedResult: RenderList(a.Results()),
			ExecutionType:  ExecutionManual,
		}
		if i == 0 {
			row.CaseName = sc.Title()
			row.Summary = sc.Summary()
			row.Preconditions = RenderList(sc.Preconditions())
		}
		rows = append(rows, row)
	}
	return rows
}

// RowsByScenario returns the rows of each scenario of set, grouped so sinks
// can place separators between scenarios.
func RowsByScenario(set model.ScenarioSet) [][]Row {
	scenarios := set.Scenarios()
	out := make([][]Row, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, ScenarioRows(sc))
	}
	return out
}

// Rows returns every row of set in order, without separators.
func Rows(set model.ScenarioSet) []Row {
	var out []Row
	for _, group := range RowsByScenario(set) {
		out = append(out, group...)
	}
	return out
}

// RenderList renders a multi-valued field: one item as bare text, two or
// more as a bulleted block with one item per line.
func RenderList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(bulletPrefix)
		b.WriteString(item)
	}
	return b.String()
}
