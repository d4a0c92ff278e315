package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/usecase/internal/model"
	"github.com/papapumpkin/usecase/internal/source"
)

var stamp = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

const simpleSet = `ScenarioSet: Scenario set
Description: Set summary
Scenarios:
  - Title: Scenario title
    Summary: Scenario summary
    Preconditions: app is running
    Actions:
      - Operation: click button
        Results: [dialog opens]
`

const richSet = `ScenarioSet: Checkout
Description: Paying for an order
Scenarios:
  - Title: Pay by card
    Summary: Card payment succeeds
    Preconditions:
      - cart has items
      - card is valid
    Actions:
      - Operation: open checkout
        Results: checkout page shows
      - Operation: submit "pay"
        Results:
          - receipt shows
          - mail is sent
  - Title: Pay, then cancel
    Summary: Cancel after payment
    Preconditions: order is paid
    Actions:
      - Operation: cancel
        Results: refund starts
`

func buildCatalog(t *testing.T, doc string) *model.Catalog {
	t.Helper()
	d, err := source.Load(strings.NewReader(doc), "set.yaml", stamp, source.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, err := model.Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

// buildMultiCatalog writes a catalog referencing one scenario set per title.
func buildMultiCatalog(t *testing.T, titles ...string) *model.Catalog {
	t.Helper()
	dir := t.TempDir()
	var refs []string
	for i, title := range titles {
		name := fmt.Sprintf("set%d.yaml", i)
		refs = append(refs, name)
		body := strings.Replace(richSet, "ScenarioSet: Checkout", "ScenarioSet: "+title, 1)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	root := "UseCaseCatalog: Shop\nScenarioSets: [" + strings.Join(refs, ", ") + "]\n"
	rootPath := filepath.Join(dir, "shop.yaml")
	if err := os.WriteFile(rootPath, []byte(root), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := source.LoadFile(rootPath, source.Options{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	c, err := model.Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestRenderList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"empty", nil, ""},
		{"single item is bare", []string{"app is running"}, "app is running"},
		{"two items are bulleted", []string{"a", "b"}, "* a\n* b"},
		{"three items", []string{"a", "b", "c"}, "* a\n* b\n* c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RenderList(tt.items); got != tt.want {
				t.Errorf("RenderList(%q) = %q, want %q", tt.items, got, tt.want)
			}
		})
	}
}

func TestRowsLayout(t *testing.T) {
	t.Parallel()

	c := buildCatalog(t, richSet)
	set := c.ScenarioSets()[0]

	want := []Row{
		{CaseName: "Pay by card", Summary: "Card payment succeeds", Preconditions: "* cart has items\n* card is valid",
			ActionNo: 1, Action: "open checkout", ExpectedResult: "checkout page shows", ExecutionType: ExecutionManual},
		{ActionNo: 2, Action: `submit "pay"`, ExpectedResult: "* receipt shows\n* mail is sent", ExecutionType: ExecutionManual},
		{CaseName: "Pay, then cancel", Summary: "Cancel after payment", Preconditions: "order is paid",
			ActionNo: 1, Action: "cancel", ExpectedResult: "refund starts", ExecutionType: ExecutionManual},
	}
	if diff := cmp.Diff(want, Rows(set)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	groups := RowsByScenario(set)
	if len(groups) != 2 || len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Errorf("group sizes wrong: %d groups", len(groups))
	}
}

func TestRowCountEqualsActionCount(t *testing.T) {
	t.Parallel()

	c := buildMultiCatalog(t, "Alpha", "Beta", "Gamma")
	total := 0
	for _, set := range c.ScenarioSets() {
		total += len(Rows(set))
	}
	if total != c.ActionCount() {
		t.Errorf("rows = %d, actions = %d", total, c.ActionCount())
	}
}

func TestFormatField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{" leading space", " leading space"},
		{"", ""},
		{`say "hi"`, `"say ""hi"""`},
		{"a,b", `"a,b"`},
		{"line1\nline2", "\"line1\nline2\""},
		{"tab\there", "tab\there"},
	}
	for _, tt := range tests {
		if got := FormatField(tt.in, ','); got != tt.want {
			t.Errorf("FormatField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatField("a;b", ';'); got != `"a;b"` {
		t.Errorf("custom delimiter: got %q", got)
	}
}

func TestCSVSinkEndToEnd(t *testing.T) {
	t.Parallel()

	c := buildCatalog(t, simpleSet)
	dir := t.TempDir()
	files, err := CSVSink{}.Write(c, dir)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	wantPath := filepath.Join(dir, "Scenario set-TestSuite-Scenario set.csv")
	if len(files) != 1 || files[0] != wantPath {
		t.Fatalf("files = %v, want [%s]", files, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Case name,Summary,Preconditions,Action No.,Action,Expected result,Execution type,Result,Notes\n" +
		"Scenario title,Scenario summary,app is running,1,click button,dialog opens,Manual,,\n"
	if string(data) != want {
		t.Errorf("content mismatch:\ngot  %q\nwant %q", data, want)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantRecord := []string{"Scenario title", "Scenario summary", "app is running", "1", "click button", "dialog opens", "Manual", "", ""}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header plus one row", len(records))
	}
	if diff := cmp.Diff(wantRecord, records[1]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVSinkQuotesMultiline(t *testing.T) {
	t.Parallel()

	c := buildCatalog(t, richSet)
	var buf bytes.Buffer
	if err := (CSVSink{}).Encode(&buf, c.ScenarioSets()[0]); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want header plus 3 rows without separators", len(records))
	}
	if got := records[2][4]; got != `submit "pay"` {
		t.Errorf("action = %q, want quotes preserved", got)
	}
	if got := records[2][5]; got != "* receipt shows\n* mail is sent" {
		t.Errorf("expected result = %q", got)
	}
	if got := records[3][0]; got != "Pay, then cancel" {
		t.Errorf("case name = %q", got)
	}
}

func TestFileNames(t *testing.T) {
	t.Parallel()

	if got := CSVFileName("Shop", "A/B"); got != "Shop-TestSuite-A_B.csv" {
		t.Errorf("CSVFileName = %q", got)
	}
	if got := XLSXFileName(`C:\Shop`); got != "C:_Shop-TestSuite.xlsx" {
		t.Errorf("XLSXFileName = %q", got)
	}
}
