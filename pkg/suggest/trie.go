package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Trie is the patricia-backed Index. Inserts must complete before the trie is
// published; after that any number of goroutines may Query it concurrently.
type Trie struct {
	trie  *patricia.Trie
	words int
}

func NewTrie() *Trie {
	return &Trie{trie: patricia.NewTrie()}
}

func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}
	if t.trie.Insert(patricia.Prefix(word), struct{}{}) {
		t.words++
	}
}

func (t *Trie) Query(prefix string) []string {
	if prefix == "" {
		return []string{}
	}

	matches := []string{}
	err := t.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		matches = append(matches, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree for %q: %v", prefix, err)
		return []string{}
	}
	return matches
}

func (t *Trie) Len() int {
	return t.words
}
