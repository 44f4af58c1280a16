package nlp

import (
	"strings"

	"mosdacbot/internal/domain"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Extractor finds catalog entity labels mentioned in free text.
//
// Every node label, plus any curated aliases, becomes a pattern in one
// automaton. Matching is overlapping so a label nested in a longer one is
// still reported.
type Extractor struct {
	ac       ahocorasick.AhoCorasick
	patterns int

	// pattern index -> node positions in catalog order
	owners [][]int
	// node position -> label
	labels []string
}

// NewExtractor builds an extractor over the nodes, which must be in catalog order
func NewExtractor(nodes []domain.Node) *Extractor {
	e := &Extractor{
		labels: make([]string, len(nodes)),
	}

	patternIndex := make(map[string]int)
	var patterns []string

	for pos, n := range nodes {
		e.labels[pos] = n.Label

		surfaces := append([]string{n.Label}, n.Aliases()...)
		for _, surface := range surfaces {
			key := strings.ToLower(strings.TrimSpace(surface))
			if key == "" {
				continue
			}
			if idx, ok := patternIndex[key]; ok {
				e.owners[idx] = appendUnique(e.owners[idx], pos)
				continue
			}
			patternIndex[key] = len(patterns)
			patterns = append(patterns, key)
			e.owners = append(e.owners, []int{pos})
		}
	}

	e.patterns = len(patterns)
	if e.patterns > 0 {
		builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
			AsciiCaseInsensitive: false,
			MatchOnlyWholeWords:  false,
			MatchKind:            ahocorasick.StandardMatch,
			DFA:                  false,
		})
		e.ac = builder.Build(patterns)
	}

	return e
}

// Extract returns the distinct labels of every node mentioned in text,
// in catalog order.
func (e *Extractor) Extract(text string) []string {
	out := make([]string, 0)
	if e.patterns == 0 || text == "" {
		return out
	}

	hit := make([]bool, len(e.labels))
	iter := e.ac.IterOverlapping(strings.ToLower(text))
	for {
		m := iter.Next()
		if m == nil {
			break
		}
		for _, pos := range e.owners[m.Pattern()] {
			hit[pos] = true
		}
	}

	seen := make(map[string]bool)
	for pos, ok := range hit {
		if !ok {
			continue
		}
		label := e.labels[pos]
		if seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// Patterns returns the number of distinct surface forms
func (e *Extractor) Patterns() int {
	return e.patterns
}

func appendUnique(slice []int, v int) []int {
	for _, s := range slice {
		if s == v {
			return slice
		}
	}
	return append(slice, v)
}
