package source

// Kind identifies the shape of a decoded Node.
type Kind int

const (
	NullNode     Kind = iota // explicit null or empty value
	ScalarNode               // string, number, bool, date
	SequenceNode             // ordered list
	MappingNode              // ordered key/value pairs
)

// String returns a short lowercase name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case NullNode:
		return "null"
	case ScalarNode:
		return "scalar"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	}
	return "unknown"
}

// Pair is one key/value entry of a mapping node. Line and Column locate the
// key in its source file; both are zero when the decoder has no positions.
type Pair struct {
	Key    string
	Value  *Node
	Line   int
	Column int
}

// Node is the decoder-independent document tree. Mappings keep every pair in
// document order, including repeated keys, so that CheckDuplicateKeys can
// reject them after decoding.
type Node struct {
	Kind   Kind
	Value  string
	Items  []*Node
	Pairs  []Pair
	Line   int
	Column int
}

// Lookup returns the value of the first pair with the given key.
func (n *Node) Lookup(key string) (*Node, bool) {
	if n == nil || n.Kind != MappingNode {
		return nil, false
	}
	for _, p := range n.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether the mapping contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Lookup(key)
	return ok
}

// Interface converts the node into plain Go values: scalars become strings,
// sequences []any, mappings map[string]any and nulls nil. It is used to hand
// unrecognized fields to consumers as opaque metadata.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ScalarNode:
		return n.Value
	case SequenceNode:
		out := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			out = append(out, item.Interface())
		}
		return out
	case MappingNode:
		out := make(map[string]any, len(n.Pairs))
		for _, p := range n.Pairs {
			out[p.Key] = p.Value.Interface()
		}
		return out
	}
	return nil
}
