// Package model holds the typed, immutable use-case entities built from a
// linked source document. Every entity exposes its data through accessor
// methods; slices are copied on the way out so callers cannot mutate the tree.
package model

import (
	"slices"
	"time"
)

// Catalog is the root entity: a titled collection of scenario sets.
type Catalog struct {
	fileName      string
	title         string
	lastUpdate    time.Time
	scenarioSets  []ScenarioSet
	updateHistory []UpdateInfo
	metadata      Metadata
}

// FileName returns the source file name, or the title in standalone mode.
func (c *Catalog) FileName() string { return c.fileName }

// Title returns the catalog title.
func (c *Catalog) Title() string { return c.title }

// LastUpdate returns the newest modification time across all source files.
func (c *Catalog) LastUpdate() time.Time { return c.lastUpdate }

// ScenarioSets returns the scenario sets in reference order.
func (c *Catalog) ScenarioSets() []ScenarioSet { return slices.Clone(c.scenarioSets) }

// UpdateHistory returns the catalog-level update entries in document order.
func (c *Catalog) UpdateHistory() []UpdateInfo { return slices.Clone(c.updateHistory) }

// Metadata returns keys the builder did not recognize.
func (c *Catalog) Metadata() Metadata { return c.metadata }

// ActionCount returns the number of actions across every scenario of every set.
func (c *Catalog) ActionCount() int {
	n := 0
	for i := range c.scenarioSets {
		n += c.scenarioSets[i].ActionCount()
	}
	return n
}

// Stats summarizes the size of a catalog.
type Stats struct {
	ScenarioSets int
	Scenarios    int
	Actions      int
	Results      int
}

// Stats counts the entities in the catalog.
func (c *Catalog) Stats() Stats {
	s := Stats{ScenarioSets: len(c.scenarioSets)}
	for _, set := range c.scenarioSets {
		s.Scenarios += len(set.scenarios)
		for _, sc := range set.scenarios {
			s.Actions += len(sc.actions)
			for _, a := range sc.actions {
				s.Results += len(a.results)
			}
		}
	}
	return s
}

// ScenarioSet is a named group of scenarios backed by one source file.
type ScenarioSet struct {
	fileName        string
	title           string
	summary         string
	mainActor       string
	secondaryActors []string
	scenarios       []Scenario
	updateHistory   []UpdateInfo
	metadata        Metadata
}

// FileName returns the base name of the backing source file.
func (s ScenarioSet) FileName() string { return s.fileName }

// Title returns the scenario-set title.
func (s ScenarioSet) Title() string { return s.title }

// Summary returns the scenario-set description.
func (s ScenarioSet) Summary() string { return s.summary }

// MainActor returns the primary actor, possibly empty.
func (s ScenarioSet) MainActor() string { return s.mainActor }

// SecondaryActors returns the supporting actors in document order.
func (s ScenarioSet) SecondaryActors() []string { return slices.Clone(s.secondaryActors) }

// Scenarios returns the scenarios in document order.
func (s ScenarioSet) Scenarios() []Scenario { return slices.Clone(s.scenarios) }

// UpdateHistory returns the update entries in document order.
func (s ScenarioSet) UpdateHistory() []UpdateInfo { return slices.Clone(s.updateHistory) }

// Metadata returns keys the builder did not recognize.
func (s ScenarioSet) Metadata() Metadata { return s.metadata }

// ActionCount returns the number of actions across all scenarios of the set.
func (s ScenarioSet) ActionCount() int {
	n := 0
	for _, sc := range s.scenarios {
		n += len(sc.actions)
	}
	return n
}

// Scenario is one use-case path: preconditions followed by ordered actions.
type Scenario struct {
	title         string
	summary       string
	baseScenario  string
	preconditions []string
	actions       []Action
	metadata      Metadata
}

// Title returns the scenario title.
func (s Scenario) Title() string { return s.title }

// Summary returns the scenario summary.
func (s Scenario) Summary() string { return s.summary }

// BaseScenario returns the free-text reference to the scenario this one
// derives from, or "".
func (s Scenario) BaseScenario() string { return s.baseScenario }

// Preconditions returns the precondition lines; never empty.
func (s Scenario) Preconditions() []string { return slices.Clone(s.preconditions) }

// Actions returns the actions in execution order.
func (s Scenario) Actions() []Action { return slices.Clone(s.actions) }

// Metadata returns keys the builder did not recognize.
func (s Scenario) Metadata() Metadata { return s.metadata }

// Action is a single step and the results it should produce.
type Action struct {
	operation string
	results   []string
	metadata  Metadata
}

// Operation returns the action text.
func (a Action) Operation() string { return a.operation }

// Results returns the expected results; never empty.
func (a Action) Results() []string { return slices.Clone(a.results) }

// Metadata returns keys the builder did not recognize.
func (a Action) Metadata() Metadata { return a.metadata }

// UpdateInfo is one entry of an update history.
type UpdateInfo struct {
	title     string
	date      string
	summaries []string
}

// Title returns the update title.
func (u UpdateInfo) Title() string { return u.title }

// Date returns the date exactly as written in the source.
func (u UpdateInfo) Date() string { return u.date }

// Summaries returns the summary lines.
func (u UpdateInfo) Summaries() []string { return slices.Clone(u.summaries) }

// Metadata is an ordered list of unrecognized keys and their raw values.
// Values are strings, []any, map[string]any or nil.
type Metadata struct {
	entries []MetaEntry
}

// MetaEntry is one key/value pair of Metadata.
type MetaEntry struct {
	Key   string
	Value any
}

// Len returns the number of entries.
func (m Metadata) Len() int { return len(m.entries) }

// Keys returns the keys in document order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in document order.
func (m Metadata) Entries() []MetaEntry { return slices.Clone(m.entries) }

// Lookup returns the value for key and whether it was present.
func (m Metadata) Lookup(key string) (any, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Get returns the value for key, or nil.
func (m Metadata) Get(key string) any {
	v, _ := m.Lookup(key)
	return v
}
