package suggest

import (
	"github.com/newsinsight/newsserve/internal/utils"
)

// BuildFunc turns source strings into a freshly populated Index.
type BuildFunc func(words []string) Index

// Build is the default BuildFunc. It collapses duplicates and blank entries
// and always returns a new trie, so the caller can swap it in wholesale.
func Build(words []string) Index {
	t := NewTrie()
	for _, w := range utils.DedupeWords(words) {
		t.Insert(w)
	}
	return t
}
