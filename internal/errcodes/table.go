// ABOUTME: Read-only lookup table from MSU error codes to explanations.
// ABOUTME: A placeholder table is embedded from codes.yaml; LoadFile reads a real one.

package errcodes

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed codes.yaml
var defaultCodes []byte

// codeFormat is the shape every table key must have.
var codeFormat = regexp.MustCompile(`^ERR\d{5}$`)

// Table maps error codes to human-readable explanations.
type Table struct {
	entries map[string]string
}

// New builds a table from the given entries. The map is copied.
func New(entries map[string]string) (*Table, error) {
	t := &Table{entries: make(map[string]string, len(entries))}
	for code, text := range entries {
		if !codeFormat.MatchString(code) {
			return nil, fmt.Errorf("invalid error code %q: want ERR followed by five digits", code)
		}
		t.entries[code] = text
	}
	return t, nil
}

// Parse builds a table from a YAML document of code: explanation pairs.
func Parse(data []byte) (*Table, error) {
	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing error codes: %w", err)
	}
	return New(entries)
}

// LoadFile reads a table from a YAML file in the same format as the
// built-in one.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading error codes: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the placeholder table compiled into the binary.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultCodes)
		if err != nil {
			// codes.yaml ships with the binary, a bad file is a build defect
			panic("errcodes: " + err.Error())
		}
		defaultTable = t
	})
	return defaultTable
}

// Lookup returns the explanation for code, if the table has one.
func (t *Table) Lookup(code string) (string, bool) {
	text, ok := t.entries[code]
	return text, ok
}

// Len returns the number of codes in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Codes returns all codes in ascending order.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
