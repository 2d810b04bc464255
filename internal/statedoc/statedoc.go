package statedoc

import (
	"fmt"
	"strings"
)

// Document is the JSON-shaped mutable tree mirrored from the game server.
// Values are the usual encoding/json decode shapes: map[string]any, []any,
// string, float64, bool, nil.
type Document = map[string]any

// Op identifies a patch operation.
type Op int

const (
	OpAdd Op = iota
	OpReplace
	OpRemove
)

func (o *Op) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "add":
		*o = OpAdd
	case "replace":
		*o = OpReplace
	case "remove":
		*o = OpRemove
	default:
		return fmt.Errorf("unknown patch op: %s", text)
	}
	return nil
}

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpReplace:
		return "replace"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Patch is a single add/replace/remove operation against a Document.
// It is consumed by Apply and not retained.
type Patch struct {
	Op    Op
	Path  Pointer
	Value any
}

// Clone deep-copies a JSON-shaped value so callers can hand out snapshots
// without sharing container memory.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// CloneDocument is Clone specialized to a document root.
func CloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	return Clone(doc).(map[string]any)
}
