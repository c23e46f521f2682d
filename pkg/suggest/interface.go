// Package suggest is the core of category and topic completion: a patricia-trie
// prefix index, a short-prefix completion cache and the per-field Matcher that
// ties them together behind a read/write lock.
package suggest

import (
	"context"
	"fmt"
)

// Index answers "which known words start with this prefix".
type Index interface {
	// Insert adds a word. Inserting a word twice is a no-op.
	Insert(word string)

	// Query returns every word starting with prefix, in no particular order.
	// An empty prefix yields no words.
	Query(prefix string) []string

	// Len reports the number of distinct words held.
	Len() int
}

// Loader fetches the source strings for one field, usually a distinct-values
// query against the store.
type Loader func(ctx context.Context) ([]string, error)

// Field names an independently indexed attribute class.
type Field string

const (
	FieldCategory Field = "category"
	FieldTopic    Field = "topic"
)

// Fields lists every field the service maintains, in a stable order.
var Fields = []Field{FieldCategory, FieldTopic}

func (f Field) String() string { return string(f) }

// ParseField maps a user-supplied name onto a known Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}
