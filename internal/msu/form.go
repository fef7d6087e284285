// ABOUTME: Ordered key/value form used as the MSU request body.
// ABOUTME: Keeps insertion order on the wire, unlike url.Values which sorts keys.

package msu

import (
	"net/url"
	"strings"
)

// Field is one key/value pair of a Form.
type Field struct {
	Key   string
	Value string
}

// Form is an ordered list of wire fields.
type Form []Field

// Add appends a field.
func (f *Form) Add(key, value string) {
	*f = append(*f, Field{Key: key, Value: value})
}

// AddIfSet appends a field only when value is non-empty.
func (f *Form) AddIfSet(key, value string) {
	if value != "" {
		f.Add(key, value)
	}
}

// Get returns the value of the first field named key.
func (f Form) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Keys returns field names in wire order.
func (f Form) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

// Encode serializes the form as application/x-www-form-urlencoded.
func (f Form) Encode() string {
	var b strings.Builder
	for i, field := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(field.Value))
	}
	return b.String()
}
