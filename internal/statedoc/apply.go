package statedoc

import (
	"fmt"
)

// Apply mutates doc in place according to the patch. A nil error means the
// patch was applied. A non-nil error means the patch was skipped: the
// document is left as it was and the error carries the skip reason. Apply
// never panics on malformed or out-of-order patches; a stream that
// references a branch the document does not have is simply dropped
// patch by patch.
//
// Add and replace create missing intermediate containers, choosing a list
// when the following token is numeric (or "-") and a map otherwise. Remove
// never creates anything.
func Apply(doc Document, p Patch) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	if len(p.Path) == 0 {
		return fmt.Errorf("root path not supported")
	}

	create := p.Op == OpAdd || p.Op == OpReplace

	parent, setParent, err := navigate(doc, p.Path, create)
	if err != nil {
		return err
	}

	last := p.Path[len(p.Path)-1]
	switch p.Op {
	case OpRemove:
		return removeAt(parent, setParent, last)
	case OpAdd:
		return addAt(parent, setParent, last, p.Value)
	case OpReplace:
		return replaceAt(parent, setParent, last, p.Value)
	default:
		return fmt.Errorf("unsupported op: %s", p.Op)
	}
}

// navigate walks every token except the last and returns the container that
// holds the final token, plus a setter that writes a replacement container
// back into its own parent (needed when a list grows and reallocates).
func navigate(doc Document, path Pointer, create bool) (any, func(any), error) {
	var cur any = doc
	set := func(any) {} // the root map never needs writing back

	for i := 0; i < len(path)-1; i++ {
		token := path[i]
		next := path[i+1]

		switch c := cur.(type) {
		case map[string]any:
			child, ok := c[token]
			if !ok || child == nil {
				if !create {
					return nil, nil, fmt.Errorf("missing key %q", token)
				}
				child = newContainer(next)
				c[token] = child
			}
			key := token
			parent := c
			set = func(v any) { parent[key] = v }
			cur = child

		case []any:
			if token == "-" {
				return nil, nil, fmt.Errorf("%q only allowed as final add token", token)
			}
			idx, ok := index(token)
			if !ok {
				return nil, nil, fmt.Errorf("expected list index, got %q", token)
			}
			if idx >= len(c) {
				if !create {
					return nil, nil, fmt.Errorf("index %d out of range", idx)
				}
				for len(c) <= idx {
					c = append(c, nil)
				}
				set(c)
			}
			if c[idx] == nil {
				if !create {
					return nil, nil, fmt.Errorf("missing element at index %d", idx)
				}
				c[idx] = newContainer(next)
			}
			parent := c
			pos := idx
			set = func(v any) { parent[pos] = v }
			cur = c[idx]

		default:
			return nil, nil, fmt.Errorf("cannot traverse %T at %q", cur, token)
		}
	}

	return cur, set, nil
}

// newContainer picks the container kind for a created intermediate based on
// the token that will address into it.
func newContainer(nextToken string) any {
	if isIndexLike(nextToken) {
		return []any{}
	}
	return map[string]any{}
}

func addAt(parent any, setParent func(any), token string, value any) error {
	switch c := parent.(type) {
	case map[string]any:
		c[token] = value
		return nil
	case []any:
		if token == "-" {
			setParent(append(c, value))
			return nil
		}
		idx, ok := index(token)
		if !ok {
			return fmt.Errorf("invalid index token %q", token)
		}
		if idx <= len(c) {
			c = append(c, nil)
			copy(c[idx+1:], c[idx:])
			c[idx] = value
			setParent(c)
			return nil
		}
		// Beyond the tail: pad with nulls, then append.
		for len(c) < idx {
			c = append(c, nil)
		}
		setParent(append(c, value))
		return nil
	default:
		return fmt.Errorf("cannot add into %T", parent)
	}
}

func replaceAt(parent any, setParent func(any), token string, value any) error {
	switch c := parent.(type) {
	case map[string]any:
		c[token] = value
		return nil
	case []any:
		idx, ok := index(token)
		if !ok {
			return fmt.Errorf("invalid index token %q", token)
		}
		if idx < len(c) {
			c[idx] = value
			return nil
		}
		for len(c) < idx {
			c = append(c, nil)
		}
		setParent(append(c, value))
		return nil
	default:
		return fmt.Errorf("cannot replace in %T", parent)
	}
}

func removeAt(parent any, setParent func(any), token string) error {
	switch c := parent.(type) {
	case map[string]any:
		if _, ok := c[token]; !ok {
			return fmt.Errorf("key %q not found", token)
		}
		delete(c, token)
		return nil
	case []any:
		if token == "-" {
			if len(c) == 0 {
				return fmt.Errorf("list empty")
			}
			setParent(c[:len(c)-1])
			return nil
		}
		idx, ok := index(token)
		if !ok {
			return fmt.Errorf("invalid index token %q", token)
		}
		if idx >= len(c) {
			return fmt.Errorf("index %d out of range", idx)
		}
		setParent(append(c[:idx], c[idx+1:]...))
		return nil
	default:
		return fmt.Errorf("cannot remove from %T", parent)
	}
}

// Get reads the value at path without mutating the document. The second
// return is false when the path does not resolve.
func Get(doc Document, path Pointer) (any, bool) {
	var cur any = doc
	for _, token := range path {
		switch c := cur.(type) {
		case map[string]any:
			child, ok := c[token]
			if !ok {
				return nil, false
			}
			cur = child
		case []any:
			idx, ok := index(token)
			if !ok || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
