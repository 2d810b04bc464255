// Package rules compiles the small boolean expressions users write over
// mutation tags ("frozen && (gold || !wet)") into reusable predicates.
package rules

import (
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TagSet is a normalized (lowercase) set of mutation tags.
type TagSet map[string]struct{}

// Predicate evaluates a compiled expression against a tag set.
type Predicate func(TagSet) bool

var identPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Reserved words the expression language keeps for itself; everything else
// scanned out of the source is treated as a tag identifier.
var reservedWords = map[string]bool{
	"true": true, "false": true, "nil": true,
	"and": true, "or": true, "not": true, "in": true,
	"let": true, "if": true, "else": true,
}

// Compile turns an expression into a predicate. Identifiers are
// case-insensitive tag names; supported operators are &&, || and ! with
// parentheses. An empty or unparseable expression compiles to a predicate
// that always returns false — selection rules fail closed rather than
// harvesting or selling everything on a typo.
func Compile(src string) Predicate {
	lowered := strings.ToLower(strings.TrimSpace(src))
	if lowered == "" {
		return never
	}

	idents := referencedIdents(lowered)
	program, err := expr.Compile(lowered, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return never
	}

	return func(tags TagSet) bool {
		env := make(map[string]any, len(idents))
		for _, id := range idents {
			_, ok := tags[id]
			env[id] = ok
		}
		return run(program, env)
	}
}

func run(program *vm.Program, env map[string]any) bool {
	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

func never(TagSet) bool { return false }

func referencedIdents(lowered string) []string {
	raw := identPattern.FindAllString(lowered, -1)
	seen := make(map[string]bool, len(raw))
	idents := raw[:0]
	for _, id := range raw {
		if reservedWords[id] || seen[id] {
			continue
		}
		seen[id] = true
		idents = append(idents, id)
	}
	return idents
}

// NormalizeTags folds the shapes mutation tags arrive in — a list of
// strings, or a map of flag names to truthy values — into a lowercase set.
func NormalizeTags(v any) TagSet {
	tags := make(TagSet)
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			addTag(tags, s)
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				addTag(tags, s)
			}
		}
	case map[string]any:
		for k, e := range t {
			if truthy(e) {
				addTag(tags, k)
			}
		}
	case map[string]bool:
		for k, on := range t {
			if on {
				addTag(tags, k)
			}
		}
	case TagSet:
		for k := range t {
			addTag(tags, k)
		}
	}
	return tags
}

func addTag(tags TagSet, s string) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" {
		tags[s] = struct{}{}
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}
