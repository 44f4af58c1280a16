// Package nlp turns free-text help-desk queries into an intent and the
// catalog entities they mention.
//
// Classifier evaluates an ordered rule list: the first rule with a keyword
// contained in the lowercased query wins. Extractor finds catalog labels in
// the query with a single Aho-Corasick pass. Both are pure lookups over data
// fixed at construction and are safe for concurrent use.
package nlp

import (
	"strings"

	"mosdacbot/internal/domain"
)

// Classifier maps query text to an intent
type Classifier struct {
	rules    []domain.Rule
	fallback domain.Rule
}

// NewClassifier builds a classifier from a validated rule set
func NewClassifier(rs RuleSet) (*Classifier, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{
		rules:    make([]domain.Rule, 0, len(rs.Rules)),
		fallback: rs.Fallback,
	}
	for _, r := range rs.Rules {
		compiled := r
		compiled.Keywords = make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			compiled.Keywords = append(compiled.Keywords, strings.ToLower(strings.TrimSpace(kw)))
		}
		c.rules = append(c.rules, compiled)
	}
	return c, nil
}

// DefaultClassifier builds a classifier from the built-in rules
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRuleSet())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the first matching rule's intent, or the fallback.
// Entities are left empty; the caller fills them from an Extractor.
func (c *Classifier) Classify(text string) domain.ClassificationResult {
	normalized := strings.ToLower(text)

	for _, r := range c.rules {
		if containsAny(normalized, r.Keywords) {
			return result(r)
		}
	}
	return result(c.fallback)
}

// Match returns the name of the rule that fires for text, or "" for the fallback
func (c *Classifier) Match(text string) string {
	normalized := strings.ToLower(text)
	for _, r := range c.rules {
		if containsAny(normalized, r.Keywords) {
			return r.Name
		}
	}
	return ""
}

// Rules returns the rules in evaluation order
func (c *Classifier) Rules() []domain.Rule {
	return append([]domain.Rule(nil), c.rules...)
}

// Fallback returns the no-match result rule
func (c *Classifier) Fallback() domain.Rule {
	return c.fallback
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func result(r domain.Rule) domain.ClassificationResult {
	return domain.ClassificationResult{
		Intent:     r.Intent,
		Confidence: r.Confidence,
		Entities:   []string{},
		TemplateID: r.Template,
	}
}
