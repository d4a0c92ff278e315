package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/usecase/internal/source"
)

var stamp = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

// standalone loads a single scenario-set document from text.
func standalone(t *testing.T, doc string) (*Catalog, error) {
	t.Helper()
	d, err := source.Load(strings.NewReader(doc), "set.yaml", stamp, source.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return Build(d)
}

const fullSet = `ScenarioSet: Login
Description: Customers sign in
MainActor: Customer
SecondaryActors: Auth service
Owner: team-a
UpdateHistory:
  First draft:
    Date: 2024/01/02
    Summary:
      - created
      - reviewed
  Typos:
Scenarios:
  - Title: Basic login
    Summary: Valid credentials
    BaseScenario: none
    Priority: high
    Preconditions:
      - app is running
      - user exists
    Actions:
      - Operation: enter credentials
        Results: fields filled
      - Operation: click login
        Results:
          - dashboard shows
          - greeting shows
        Screenshot: login.png
  - Title: Locked account
    Summary: Account is locked
    Preconditions: account locked
    Actions:
      - Operation: click login
        Results: [error shown]
`

func TestBuildStandalone(t *testing.T) {
	t.Parallel()

	c, err := standalone(t, fullSet)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if c.Title() != "Login" || c.FileName() != "Login" {
		t.Errorf("title/file = %q/%q, want Login/Login", c.Title(), c.FileName())
	}
	if !c.LastUpdate().Equal(stamp) {
		t.Errorf("LastUpdate = %v, want %v", c.LastUpdate(), stamp)
	}

	sets := c.ScenarioSets()
	if len(sets) != 1 {
		t.Fatalf("got %d scenario sets, want 1", len(sets))
	}
	set := sets[0]
	if set.FileName() != "set.yaml" {
		t.Errorf("FileName = %q, want set.yaml", set.FileName())
	}
	if diff := cmp.Diff([]string{"Auth service"}, set.SecondaryActors()); diff != "" {
		t.Errorf("SecondaryActors mismatch (-want +got):\n%s", diff)
	}
	if got := set.Metadata().Get("Owner"); got != "team-a" {
		t.Errorf("metadata Owner = %v, want team-a", got)
	}

	history := set.UpdateHistory()
	if len(history) != 2 {
		t.Fatalf("got %d history entries, want 2", len(history))
	}
	if history[0].Title() != "First draft" || history[0].Date() != "2024/01/02" {
		t.Errorf("history[0] = %q %q", history[0].Title(), history[0].Date())
	}
	if diff := cmp.Diff([]string{"created", "reviewed"}, history[0].Summaries()); diff != "" {
		t.Errorf("summaries mismatch (-want +got):\n%s", diff)
	}
	if history[1].Title() != "Typos" || len(history[1].Summaries()) != 0 {
		t.Errorf("history[1] should be an empty entry titled Typos")
	}

	scenarios := set.Scenarios()
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}
	first := scenarios[0]
	if first.BaseScenario() != "none" {
		t.Errorf("BaseScenario = %q, want none", first.BaseScenario())
	}
	if diff := cmp.Diff([]string{"app is running", "user exists"}, first.Preconditions()); diff != "" {
		t.Errorf("preconditions mismatch (-want +got):\n%s", diff)
	}
	if got := first.Metadata().Keys(); len(got) != 1 || got[0] != "Priority" {
		t.Errorf("scenario metadata keys = %v, want [Priority]", got)
	}
	actions := first.Actions()
	if diff := cmp.Diff([]string{"dashboard shows", "greeting shows"}, actions[1].Results()); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if _, ok := actions[1].Metadata().Lookup("Screenshot"); !ok {
		t.Error("action metadata should keep Screenshot")
	}
	if diff := cmp.Diff([]string{"account locked"}, scenarios[1].Preconditions()); diff != "" {
		t.Errorf("scalar preconditions mismatch (-want +got):\n%s", diff)
	}

	want := Stats{ScenarioSets: 1, Scenarios: 2, Actions: 3, Results: 4}
	if diff := cmp.Diff(want, c.Stats()); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	if c.ActionCount() != 3 {
		t.Errorf("ActionCount = %d, want 3", c.ActionCount())
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	c, err := standalone(t, fullSet)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sc := c.ScenarioSets()[0].Scenarios()[0]
	pre := sc.Preconditions()
	pre[0] = "tampered"
	if sc.Preconditions()[0] != "app is running" {
		t.Error("mutating a returned slice changed the entity")
	}
}

func TestBuildCatalogMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		return path
	}
	root := write("shop.yaml", "UseCaseCatalog: Shop\nScenarioSets: [login.yaml, order.yaml]\nVersion: 2\nUpdateHistory:\n  v1:\n    Date: today\n    Summary: init\n")
	write("login.yaml", fullSet)
	write("order.yaml", strings.ReplaceAll(fullSet, "ScenarioSet: Login", "ScenarioSet: Order"))

	doc, err := source.LoadFile(root, source.Options{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	c, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Title() != "Shop" || c.FileName() != "shop.yaml" {
		t.Errorf("title/file = %q/%q, want Shop/shop.yaml", c.Title(), c.FileName())
	}
	var titles []string
	for _, s := range c.ScenarioSets() {
		titles = append(titles, s.Title())
	}
	if diff := cmp.Diff([]string{"Login", "Order"}, titles); diff != "" {
		t.Errorf("scenario set order mismatch (-want +got):\n%s", diff)
	}
	if c.Metadata().Get("Version") != "2" {
		t.Errorf("catalog metadata Version = %v, want \"2\"", c.Metadata().Get("Version"))
	}
	if len(c.UpdateHistory()) != 1 || c.UpdateHistory()[0].Date() != "today" {
		t.Errorf("catalog update history = %+v", c.UpdateHistory())
	}
}

func TestBuildValidation(t *testing.T) {
	t.Parallel()

	const head = "ScenarioSet: Login\nDescription: d\nScenarios:\n"
	tests := []struct {
		name         string
		doc          string
		wantErr      error
		wantCategory Category
		wantInMsg    []string
	}{
		{
			name:         "missing preconditions names the scenario",
			doc:          head + "  - Title: Forgot password\n    Summary: s\n    Actions:\n      - Operation: o\n        Results: r\n",
			wantErr:      ErrMissingPreconditions,
			wantCategory: CatMissingPreconditions,
			wantInMsg:    []string{"Forgot password"},
		},
		{
			name:         "null preconditions",
			doc:          head + "  - Title: T\n    Summary: s\n    Preconditions:\n    Actions:\n      - Operation: o\n        Results: r\n",
			wantErr:      ErrMissingPreconditions,
			wantCategory: CatMissingPreconditions,
		},
		{
			name:         "missing results names scenario and action",
			doc:          head + "  - Title: Pay\n    Summary: s\n    Preconditions: p\n    Actions:\n      - Operation: o\n        Results: r\n      - Operation: o2\n",
			wantErr:      ErrMissingResults,
			wantCategory: CatMissingResults,
			wantInMsg:    []string{"Pay", "action 2"},
		},
		{
			name:         "empty result list",
			doc:          head + "  - Title: Pay\n    Summary: s\n    Preconditions: p\n    Actions:\n      - Operation: o\n        Results: []\n",
			wantErr:      ErrMissingResults,
			wantCategory: CatMissingResults,
		},
		{
			name:         "blank result item",
			doc:          head + "  - Title: Pay\n    Summary: s\n    Preconditions: p\n    Actions:\n      - Operation: o\n        Results: [ok, '']\n",
			wantErr:      ErrEmptyValue,
			wantCategory: CatEmptyValue,
		},
		{
			name:         "no actions",
			doc:          head + "  - Title: Pay\n    Summary: s\n    Preconditions: p\n    Actions: []\n",
			wantErr:      ErrNoActions,
			wantCategory: CatMissingField,
		},
		{
			name:         "no scenarios",
			doc:          "ScenarioSet: Login\nDescription: d\nScenarios: []\n",
			wantErr:      ErrNoScenarios,
			wantCategory: CatMissingField,
		},
		{
			name:         "empty set title",
			doc:          "ScenarioSet: ''\nDescription: d\n",
			wantErr:      ErrEmptyValue,
			wantCategory: CatEmptyValue,
		},
		{
			name:         "missing description",
			doc:          "ScenarioSet: Login\nScenarios: []\n",
			wantErr:      ErrMissingField,
			wantCategory: CatMissingField,
			wantInMsg:    []string{"Description"},
		},
		{
			name:         "mapping where text expected",
			doc:          head + "  - Title: {a: b}\n",
			wantErr:      ErrInvalidType,
			wantCategory: CatType,
			wantInMsg:    []string{"Scenarios[1]"},
		},
		{
			name:         "nested list in preconditions",
			doc:          head + "  - Title: T\n    Summary: s\n    Preconditions: [[a]]\n    Actions: []\n",
			wantErr:      ErrInvalidType,
			wantCategory: CatType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := standalone(t, tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %T, want *ValidationError", err)
			}
			if ve.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", ve.Category, tt.wantCategory)
			}
			for _, s := range tt.wantInMsg {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q should contain %q", err, s)
				}
			}
		})
	}
}

func TestStringList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *source.Node
		want []string
	}{
		{"nil", nil, nil},
		{"null", &source.Node{Kind: source.NullNode}, nil},
		{"scalar", &source.Node{Kind: source.ScalarNode, Value: "one"}, []string{"one"}},
		{"sequence", &source.Node{Kind: source.SequenceNode, Items: []*source.Node{
			{Kind: source.ScalarNode, Value: "a"},
			{Kind: source.NullNode},
			{Kind: source.ScalarNode, Value: "b"},
		}}, []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := StringList(tt.node)
			if err != nil {
				t.Fatalf("StringList: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := StringList(&source.Node{Kind: source.MappingNode}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("mapping: got %v, want ErrInvalidType", err)
	}
}
