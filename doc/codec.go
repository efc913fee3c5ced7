package doc

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// Decode reads canonical JSON tree. Result is checked for structural problems,
// attribute kinds are left to schema normalization.
func Decode(r io.Reader) (*Node, error) {
	var root Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("unable to decode document tree: %w", err)
	}
	if err := Validate(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Encode writes canonical JSON tree.
func Encode(w io.Writer, root *Node) error {
	if err := Validate(root); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("unable to encode document tree: %w", err)
	}
	return nil
}

// Validate checks tree invariants: single document root, no cycles, every node
// owned by exactly one parent, text and marks only on leaves. All problems are
// reported at once.
func Validate(root *Node) (err error) {
	if root == nil {
		return fmt.Errorf("document tree is empty")
	}
	if root.Type != TypeDoc {
		err = multierr.Append(err, fmt.Errorf("root node must be %q, got %q", TypeDoc, root.Type))
	}

	seen := make(map[*Node]struct{})
	var check func(n *Node, path string)
	check = func(n *Node, path string) {
		if n == nil {
			err = multierr.Append(err, fmt.Errorf("%s: nil node", path))
			return
		}
		if _, dup := seen[n]; dup {
			err = multierr.Append(err, fmt.Errorf("%s: node %q is shared or cyclic", path, n.Type))
			return
		}
		seen[n] = struct{}{}
		if n.Type == "" {
			err = multierr.Append(err, fmt.Errorf("%s: node without type", path))
		}
		if len(n.Children) > 0 && len(n.Marks) > 0 {
			err = multierr.Append(err, fmt.Errorf("%s: marks on non-leaf node %q", path, n.Type))
		}
		if n.Type == TypeDoc && path != "doc" {
			err = multierr.Append(err, fmt.Errorf("%s: nested document node", path))
		}
		for i, c := range n.Children {
			check(c, fmt.Sprintf("%s/%d", path, i))
		}
	}
	check(root, "doc")
	return err
}
