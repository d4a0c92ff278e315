package source

// CheckDuplicateKeys walks every mapping in n and fails on the first key that
// repeats within the same mapping. It runs on the decoded tree, so the check
// does not depend on which decoder produced it.
func CheckDuplicateKeys(file string, n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case MappingNode:
		seen := make(map[string]struct{}, len(n.Pairs))
		for _, p := range n.Pairs {
			if _, dup := seen[p.Key]; dup {
				return &DuplicateKeyError{File: file, Key: p.Key, Line: p.Line, Column: p.Column}
			}
			seen[p.Key] = struct{}{}
			if err := CheckDuplicateKeys(file, p.Value); err != nil {
				return err
			}
		}
	case SequenceNode:
		for _, item := range n.Items {
			if err := CheckDuplicateKeys(file, item); err != nil {
				return err
			}
		}
	}
	return nil
}
