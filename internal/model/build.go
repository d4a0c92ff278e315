package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/papapumpkin/usecase/internal/source"
)

// Build converts a linked document into a validated Catalog. It stops at the
// first structural problem.
func Build(doc *source.Document) (*Catalog, error) {
	c := &Catalog{lastUpdate: doc.LastUpdate}

	switch doc.Mode {
	case source.CatalogMode:
		title, err := requiredText(doc.Root, source.KeyCatalog, doc.FileName, "")
		if err != nil {
			return nil, err
		}
		history, err := buildHistory(doc.Root, doc.FileName)
		if err != nil {
			return nil, err
		}
		c.fileName = doc.FileName
		c.title = title
		c.updateHistory = history
		c.metadata = metadataOf(doc.Root, source.KeyCatalog, source.KeyScenarioSetFiles, source.KeyUpdateHistory)
	case source.StandaloneMode:
		// Title and file name are filled from the single set below.
	default:
		return nil, fmt.Errorf("model: unknown document mode %d", doc.Mode)
	}

	if len(doc.ScenarioSets) == 0 {
		return nil, &ValidationError{
			Category: CatMissingField,
			File:     doc.FileName,
			Field:    source.KeyScenarioSetFiles,
			Err:      ErrNoScenarioSets,
		}
	}

	for _, f := range doc.ScenarioSets {
		set, err := buildScenarioSet(f)
		if err != nil {
			return nil, err
		}
		c.scenarioSets = append(c.scenarioSets, set)
	}

	if doc.Mode == source.StandaloneMode {
		c.title = c.scenarioSets[0].title
		c.fileName = c.title
	}
	return c, nil
}

func buildScenarioSet(f source.File) (ScenarioSet, error) {
	root := f.Root
	if root == nil || root.Kind != source.MappingNode {
		return ScenarioSet{}, &ValidationError{Category: CatType, File: f.Name, Err: fmt.Errorf("%w: document root must be a mapping", ErrInvalidType)}
	}

	title, err := requiredText(root, source.KeyScenarioSet, f.Name, "")
	if err != nil {
		return ScenarioSet{}, err
	}
	summary, err := requiredText(root, source.KeyDescription, f.Name, "")
	if err != nil {
		return ScenarioSet{}, err
	}
	mainActor, err := optionalText(root, source.KeyMainActor, f.Name, "")
	if err != nil {
		return ScenarioSet{}, err
	}
	secondary, err := optionalList(root, source.KeySecondaryActors, f.Name, "")
	if err != nil {
		return ScenarioSet{}, err
	}
	history, err := buildHistory(root, f.Name)
	if err != nil {
		return ScenarioSet{}, err
	}

	list, ok := root.Lookup(source.KeyScenarios)
	if !ok || list.Kind == source.NullNode || (list.Kind == source.SequenceNode && len(list.Items) == 0) {
		return ScenarioSet{}, &ValidationError{Category: CatMissingField, File: f.Name, Field: source.KeyScenarios, Err: ErrNoScenarios}
	}
	if list.Kind != source.SequenceNode {
		return ScenarioSet{}, typeError(f.Name, "", source.KeyScenarios, "a list", list)
	}

	set := ScenarioSet{
		fileName:        f.Name,
		title:           title,
		summary:         summary,
		mainActor:       mainActor,
		secondaryActors: secondary,
		updateHistory:   history,
		metadata: metadataOf(root,
			source.KeyScenarioSet, source.KeyDescription, source.KeyMainActor,
			source.KeySecondaryActors, source.KeyScenarios, source.KeyUpdateHistory),
	}
	for i, item := range list.Items {
		sc, err := buildScenario(item, f.Name, i+1)
		if err != nil {
			return ScenarioSet{}, err
		}
		set.scenarios = append(set.scenarios, sc)
	}
	return set, nil
}

func buildScenario(n *source.Node, file string, index int) (Scenario, error) {
	field := fmt.Sprintf("%s[%d]", source.KeyScenarios, index)
	if n.Kind != source.MappingNode {
		return Scenario{}, typeError(file, "", field, "a mapping", n)
	}

	title, err := requiredText(n, source.KeyTitle, file, "")
	if err != nil {
		return Scenario{}, withField(err, field)
	}
	summary, err := requiredText(n, source.KeySummary, file, title)
	if err != nil {
		return Scenario{}, err
	}
	base, err := optionalText(n, source.KeyBaseScenario, file, title)
	if err != nil {
		return Scenario{}, err
	}

	pre, ok := n.Lookup(source.KeyPreconditions)
	if !ok {
		return Scenario{}, &ValidationError{Category: CatMissingPreconditions, File: file, Scenario: title, Field: source.KeyPreconditions, Err: ErrMissingPreconditions}
	}
	preconditions, err := StringList(pre)
	if err != nil {
		return Scenario{}, &ValidationError{Category: CatType, File: file, Scenario: title, Field: source.KeyPreconditions, Err: err}
	}
	if len(preconditions) == 0 {
		return Scenario{}, &ValidationError{Category: CatMissingPreconditions, File: file, Scenario: title, Field: source.KeyPreconditions, Err: ErrMissingPreconditions}
	}
	if err := nonBlank(preconditions, file, title, source.KeyPreconditions); err != nil {
		return Scenario{}, err
	}

	list, ok := n.Lookup(source.KeyActions)
	if !ok || list.Kind == source.NullNode || (list.Kind == source.SequenceNode && len(list.Items) == 0) {
		return Scenario{}, &ValidationError{Category: CatMissingField, File: file, Scenario: title, Field: source.KeyActions, Err: ErrNoActions}
	}
	if list.Kind != source.SequenceNode {
		return Scenario{}, typeError(file, title, source.KeyActions, "a list", list)
	}

	sc := Scenario{
		title:         title,
		summary:       summary,
		baseScenario:  base,
		preconditions: preconditions,
		metadata: metadataOf(n,
			source.KeyTitle, source.KeySummary, source.KeyBaseScenario,
			source.KeyPreconditions, source.KeyActions),
	}
	for i, item := range list.Items {
		a, err := buildAction(item, file, title, i+1)
		if err != nil {
			return Scenario{}, err
		}
		sc.actions = append(sc.actions, a)
	}
	return sc, nil
}

func buildAction(n *source.Node, file, scenario string, number int) (Action, error) {
	field := fmt.Sprintf("action %d", number)
	if n.Kind != source.MappingNode {
		return Action{}, typeError(file, scenario, field, "a mapping", n)
	}

	op, err := requiredText(n, source.KeyOperation, file, scenario)
	if err != nil {
		return Action{}, withField(err, field)
	}

	resultsField := field + ": " + source.KeyResults
	node, ok := n.Lookup(source.KeyResults)
	if !ok {
		return Action{}, &ValidationError{Category: CatMissingResults, File: file, Scenario: scenario, Field: resultsField, Err: ErrMissingResults}
	}
	results, err := StringList(node)
	if err != nil {
		return Action{}, &ValidationError{Category: CatType, File: file, Scenario: scenario, Field: resultsField, Err: err}
	}
	if len(results) == 0 {
		return Action{}, &ValidationError{Category: CatMissingResults, File: file, Scenario: scenario, Field: resultsField, Err: ErrMissingResults}
	}
	if err := nonBlank(results, file, scenario, resultsField); err != nil {
		return Action{}, err
	}

	return Action{
		operation: op,
		results:   results,
		metadata:  metadataOf(n, source.KeyOperation, source.KeyResults),
	}, nil
}

// buildHistory reads the optional UpdateHistory mapping of title → {Date, Summary}.
func buildHistory(root *source.Node, file string) ([]UpdateInfo, error) {
	n, ok := root.Lookup(source.KeyUpdateHistory)
	if !ok || n.Kind == source.NullNode {
		return nil, nil
	}
	if n.Kind != source.MappingNode {
		return nil, typeError(file, "", source.KeyUpdateHistory, "a mapping", n)
	}

	out := make([]UpdateInfo, 0, len(n.Pairs))
	for _, p := range n.Pairs {
		field := source.KeyUpdateHistory + "." + p.Key
		u := UpdateInfo{title: p.Key}
		switch p.Value.Kind {
		case source.NullNode:
		case source.MappingNode:
			date, err := optionalText(p.Value, source.KeyDate, file, "")
			if err != nil {
				return nil, withField(err, field)
			}
			sum, err := optionalList(p.Value, source.KeySummary, file, "")
			if err != nil {
				return nil, withField(err, field)
			}
			u.date = date
			u.summaries = sum
		default:
			return nil, typeError(file, "", field, "a mapping", p.Value)
		}
		out = append(out, u)
	}
	return out, nil
}

// StringList normalizes a field that may be written either as one string or
// as a list of strings. A scalar yields a one-element list, a null yields nil,
// and null list items become empty strings.
func StringList(n *source.Node) ([]string, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case source.NullNode:
		return nil, nil
	case source.ScalarNode:
		return []string{n.Value}, nil
	case source.SequenceNode:
		out := make([]string, 0, len(n.Items))
		for i, item := range n.Items {
			switch item.Kind {
			case source.ScalarNode:
				out = append(out, item.Value)
			case source.NullNode:
				out = append(out, "")
			default:
				return nil, fmt.Errorf("%w: item %d is a %s, want text", ErrInvalidType, i+1, item.Kind)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: got a %s, want text or a list of text", ErrInvalidType, n.Kind)
}

func requiredText(n *source.Node, key, file, scenario string) (string, error) {
	v, ok := n.Lookup(key)
	if !ok {
		return "", &ValidationError{Category: CatMissingField, File: file, Scenario: scenario, Field: key, Err: ErrMissingField}
	}
	s, err := text(v)
	if err != nil {
		return "", &ValidationError{Category: CatType, File: file, Scenario: scenario, Field: key, Err: err}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{Category: CatEmptyValue, File: file, Scenario: scenario, Field: key, Err: ErrEmptyValue}
	}
	return s, nil
}

func optionalText(n *source.Node, key, file, scenario string) (string, error) {
	v, ok := n.Lookup(key)
	if !ok {
		return "", nil
	}
	s, err := text(v)
	if err != nil {
		return "", &ValidationError{Category: CatType, File: file, Scenario: scenario, Field: key, Err: err}
	}
	return s, nil
}

func optionalList(n *source.Node, key, file, scenario string) ([]string, error) {
	v, ok := n.Lookup(key)
	if !ok {
		return nil, nil
	}
	list, err := StringList(v)
	if err != nil {
		return nil, &ValidationError{Category: CatType, File: file, Scenario: scenario, Field: key, Err: err}
	}
	return list, nil
}

func text(n *source.Node) (string, error) {
	switch n.Kind {
	case source.NullNode:
		return "", nil
	case source.ScalarNode:
		return n.Value, nil
	}
	return "", fmt.Errorf("%w: got a %s, want text", ErrInvalidType, n.Kind)
}

func nonBlank(items []string, file, scenario, field string) error {
	for i, s := range items {
		if strings.TrimSpace(s) == "" {
			return &ValidationError{
				Category: CatEmptyValue,
				File:     file,
				Scenario: scenario,
				Field:    fmt.Sprintf("%s[%d]", field, i+1),
				Err:      ErrEmptyValue,
			}
		}
	}
	return nil
}

func typeError(file, scenario, field, want string, n *source.Node) error {
	return &ValidationError{
		Category: CatType,
		File:     file,
		Scenario: scenario,
		Field:    field,
		Err:      fmt.Errorf("%w: got a %s, want %s", ErrInvalidType, n.Kind, want),
	}
}

// withField prefixes the field of a ValidationError with its enclosing path.
func withField(err error, prefix string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Field = prefix + ": " + ve.Field
	}
	return err
}

// metadataOf collects every pair of n whose key is not in known.
func metadataOf(n *source.Node, known ...string) Metadata {
	var m Metadata
	for _, p := range n.Pairs {
		if slices.Contains(known, p.Key) {
			continue
		}
		m.entries = append(m.entries, MetaEntry{Key: p.Key, Value: p.Value.Interface()})
	}
	return m
}
