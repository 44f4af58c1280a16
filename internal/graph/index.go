package graph

import (
	"regexp"
	"strings"

	"mosdacbot/internal/domain"
)

// Index searches a Store. It holds no state of its own.
type Index struct {
	store *Store
}

// NewIndex creates a search index over the store
func NewIndex(store *Store) *Index {
	return &Index{store: store}
}

// Search returns nodes whose label or type name contains term,
// case-insensitively, in catalog order. A blank term returns the whole catalog.
func (ix *Index) Search(term string) []domain.Node {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return ix.store.Nodes()
	}

	out := make([]domain.Node, 0)
	for _, n := range ix.store.nodes {
		if matches(n, needle) {
			out = append(out, n.Clone())
		}
	}
	return out
}

// SearchTerms splits a free-text query into key terms and returns the union
// of their matches, deduplicated, in catalog order.
func (ix *Index) SearchTerms(query string) []domain.Node {
	terms := KeyTerms(query)
	if len(terms) == 0 {
		return []domain.Node{}
	}

	out := make([]domain.Node, 0)
	for _, n := range ix.store.nodes {
		for _, term := range terms {
			if matches(n, term) {
				out = append(out, n.Clone())
				break
			}
		}
	}
	return out
}

func matches(n domain.Node, needle string) bool {
	return strings.Contains(strings.ToLower(n.Label), needle) ||
		strings.Contains(strings.ToLower(string(n.Type)), needle)
}

var wordPattern = regexp.MustCompile(`\w+`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"what": true, "how": true, "where": true, "when": true, "why": true,
}

// KeyTerms lowercases the query, splits it into words and drops stop words
// and words of two characters or fewer.
func KeyTerms(query string) []string {
	words := wordPattern.FindAllString(strings.ToLower(query), -1)
	out := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) <= 2 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
