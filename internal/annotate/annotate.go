// ABOUTME: Walks decoded gateway JSON and adds explanations next to MSU error codes.
// ABOUTME: Only adds "<key>_explanation" siblings; existing keys and values are left alone.

// Package annotate enriches decoded JSON values with error-code explanations.
package annotate

import (
	"reflect"
	"regexp"
)

// ExplanationSuffix is appended to a key to name its explanation sibling.
const ExplanationSuffix = "_explanation"

// codePattern matches an MSU error code anywhere in a string.
var codePattern = regexp.MustCompile(`ERR\d{5}`)

// Lookup resolves an error code to its explanation.
type Lookup interface {
	Lookup(code string) (string, bool)
}

// Annotator adds explanation keys to decoded JSON values.
type Annotator struct {
	table Lookup
}

// New returns an Annotator backed by the given table.
func New(table Lookup) *Annotator {
	return &Annotator{table: table}
}

// Annotate walks v depth-first and, for every object key whose string value
// contains an error code known to the table, adds "<key>_explanation" with
// "<code>: <explanation>". Objects are modified in place and v is returned.
//
// v is expected to be a value produced by encoding/json: map[string]any,
// []any, or a scalar. Shared sub-structures are visited once, so reference
// cycles terminate too, although decoded JSON never contains them.
func (a *Annotator) Annotate(v any) any {
	w := walker{table: a.table, seen: make(map[uintptr]struct{})}
	w.walk(v)
	return v
}

// FindCode returns the first error code contained in s.
func FindCode(s string) (string, bool) {
	code := codePattern.FindString(s)
	return code, code != ""
}

type walker struct {
	table Lookup
	seen  map[uintptr]struct{}
}

func (w *walker) walk(v any) {
	switch node := v.(type) {
	case map[string]any:
		if !w.visit(node) {
			return
		}
		w.object(node)
	case []any:
		if len(node) > 0 && !w.visit(node) {
			return
		}
		for _, elem := range node {
			w.walk(elem)
		}
	}
}

// visit records a container and reports whether it is new.
func (w *walker) visit(container any) bool {
	ptr := reflect.ValueOf(container).Pointer()
	if _, ok := w.seen[ptr]; ok {
		return false
	}
	w.seen[ptr] = struct{}{}
	return true
}

func (w *walker) object(obj map[string]any) {
	// Snapshot keys so explanations added below are not scanned themselves.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	for _, key := range keys {
		switch value := obj[key].(type) {
		case string:
			w.explain(obj, key, value)
		case map[string]any, []any:
			w.walk(value)
		}
	}
}

func (w *walker) explain(obj map[string]any, key, value string) {
	code, ok := FindCode(value)
	if !ok {
		return
	}
	text, ok := w.table.Lookup(code)
	if !ok {
		return
	}
	target := key + ExplanationSuffix
	if _, exists := obj[target]; exists {
		return
	}
	obj[target] = code + ": " + text
}
