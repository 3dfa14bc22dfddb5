package classify

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"skknicheck/internal/records"
	"skknicheck/internal/search"
)

// Rule maps a pattern over the upper-cased result text to a status.
type Rule struct {
	Pattern *regexp.Regexp
	Status  records.Status
}

// DefaultRules is the canonical precedence. The negated phrase must be
// checked before the bare active phrase, since "TIDAK BERLAKU" contains
// "BERLAKU".
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: regexp.MustCompile(`\bDICABUT\b`), Status: records.StatusDicabut},
		{Pattern: regexp.MustCompile(`\bTIDAK\s*BERLAKU\b`), Status: records.StatusDicabut},
		{Pattern: regexp.MustCompile(`\bBERLAKU\b`), Status: records.StatusBerlaku},
	}
}

// Classifier evaluates an ordered rule list. The zero value has no rules and
// classifies everything as not found.
type Classifier struct {
	rules []Rule
}

// New builds a classifier over rules, evaluated in the given order.
func New(rules ...Rule) Classifier {
	cp := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Pattern == nil {
			continue
		}
		cp = append(cp, rule)
	}
	return Classifier{rules: cp}
}

// Default returns a classifier using DefaultRules.
func Default() Classifier {
	return New(DefaultRules()...)
}

// Rules returns a copy of the rule list in evaluation order.
func (c Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify joins every result title and snippet and classifies the text.
func (c Classifier) Classify(results []search.Result) records.Status {
	return c.ClassifyText(Blob(results))
}

// ClassifyText returns the status of the first matching rule, or not found.
func (c Classifier) ClassifyText(text string) records.Status {
	upper := Normalize(text)
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(upper) {
			return rule.Status
		}
	}
	return records.StatusNotFound
}

// Normalize upper-cases text with Indonesian casing rules. A Caser is
// stateful, so a fresh one is built per call.
func Normalize(text string) string {
	return cases.Upper(language.Indonesian).String(text)
}

// Blob concatenates result titles and snippets separated by spaces.
func Blob(results []search.Result) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, res.Title+" "+res.Snippet)
	}
	return strings.Join(parts, " ")
}
