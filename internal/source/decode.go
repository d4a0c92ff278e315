package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// maxAliasDepth bounds alias expansion so a self-referencing anchor cannot
	// recurse forever.
	maxAliasDepth = 64
	// aliasExpansionRatio and minExpansionBudget bound the expanded tree at
	// max(minExpansionBudget, aliasExpansionRatio * source node count).
	aliasExpansionRatio = 10
	minExpansionBudget  = 10000
)

// ErrAliasExpansion indicates that aliases expand a document far beyond its
// written size.
var ErrAliasExpansion = errors.New("alias expansion exceeds the document size limit")

// Decoder turns a raw document stream into a generic Node tree. Decoders do
// not reject duplicate keys themselves; callers run CheckDuplicateKeys on the
// result so the guarantee holds for every syntax.
type Decoder interface {
	Decode(r io.Reader) (*Node, error)
}

// DecoderFor picks a decoder from the file extension. TOML files use the TOML
// decoder; everything else is read as YAML.
func DecoderFor(fileName string) Decoder {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".toml":
		return TOMLDecoder{}
	default:
		return YAMLDecoder{}
	}
}

// YAMLDecoder decodes YAML through the yaml.v3 node API, which preserves key
// order, positions, and repeated keys.
type YAMLDecoder struct{}

// Decode parses the first YAML document in r. An empty stream yields a null node.
func (YAMLDecoder) Decode(r io.Reader) (*Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Node{Kind: NullNode}, nil
		}
		return nil, err
	}
	budget := max(minExpansionBudget, aliasExpansionRatio*countYAML(&doc))
	return (&yamlConverter{budget: budget}).convert(&doc, 0)
}

// countYAML counts the nodes as written, without following aliases.
func countYAML(n *yaml.Node) int {
	total := 1
	for _, c := range n.Content {
		total += countYAML(c)
	}
	return total
}

// yamlConverter copies a yaml.v3 tree into Nodes, expanding aliases. Every
// produced node is charged against budget.
type yamlConverter struct {
	budget int
}

func (c *yamlConverter) convert(n *yaml.Node, depth int) (*Node, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("line %d: alias nesting exceeds %d levels", n.Line, maxAliasDepth)
	}
	c.budget--
	if c.budget < 0 {
		return nil, fmt.Errorf("line %d: %w", n.Line, ErrAliasExpansion)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Node{Kind: NullNode, Line: n.Line, Column: n.Column}, nil
		}
		return c.convert(n.Content[0], depth)

	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias %q", n.Line, n.Value)
		}
		return c.convert(n.Alias, depth+1)

	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return &Node{Kind: NullNode, Line: n.Line, Column: n.Column}, nil
		}
		return &Node{Kind: ScalarNode, Value: n.Value, Line: n.Line, Column: n.Column}, nil

	case yaml.SequenceNode:
		out := &Node{Kind: SequenceNode, Line: n.Line, Column: n.Column, Items: make([]*Node, 0, len(n.Content))}
		for _, child := range n.Content {
			item, err := c.convert(child, depth)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, item)
		}
		return out, nil

	case yaml.MappingNode:
		out := &Node{Kind: MappingNode, Line: n.Line, Column: n.Column, Pairs: make([]Pair, 0, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			for k.Kind == yaml.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			v, err := c.convert(n.Content[i+1], depth)
			if err != nil {
				return nil, err
			}
			out.Pairs = append(out.Pairs, Pair{Key: k.Value, Value: v, Line: k.Line, Column: k.Column})
		}
		return out, nil
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

// TOMLDecoder decodes TOML documents. TOML tables carry no key order, so
// mapping pairs are sorted by key; positions are not available. go-toml
// rejects redefined keys while parsing.
type TOMLDecoder struct{}

// Decode parses a whole TOML document from r.
func (TOMLDecoder) Decode(r io.Reader) (*Node, error) {
	var m map[string]any
	if err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return fromValue(m), nil
}

func fromValue(v any) *Node {
	switch t := v.(type) {
	case nil:
		return &Node{Kind: NullNode}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &Node{Kind: MappingNode, Pairs: make([]Pair, 0, len(keys))}
		for _, k := range keys {
			out.Pairs = append(out.Pairs, Pair{Key: k, Value: fromValue(t[k])})
		}
		return out
	case []any:
		out := &Node{Kind: SequenceNode, Items: make([]*Node, 0, len(t))}
		for _, item := range t {
			out.Items = append(out.Items, fromValue(item))
		}
		return out
	case string:
		return &Node{Kind: ScalarNode, Value: t}
	case bool:
		return &Node{Kind: ScalarNode, Value: strconv.FormatBool(t)}
	case int64:
		return &Node{Kind: ScalarNode, Value: strconv.FormatInt(t, 10)}
	case float64:
		return &Node{Kind: ScalarNode, Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case time.Time:
		return &Node{Kind: ScalarNode, Value: t.Format(time.RFC3339)}
	case fmt.Stringer:
		return &Node{Kind: ScalarNode, Value: t.String()}
	}
	return &Node{Kind: ScalarNode, Value: fmt.Sprint(v)}
}
