package lemma

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
)

type substitution struct {
	suffix      string
	replacement string
}

// detachment rules per category, tried in order
var substitutions = map[Category][]substitution{
	Noun: {
		{"s", ""},
		{"ses", "s"},
		{"xes", "x"},
		{"zes", "z"},
		{"ches", "ch"},
		{"shes", "sh"},
		{"men", "man"},
		{"ies", "y"},
	},
	Verb: {
		{"s", ""},
		{"ies", "y"},
		{"es", "e"},
		{"es", ""},
		{"ed", "e"},
		{"ed", ""},
		{"ing", "e"},
		{"ing", ""},
	},
	Adjective: {
		{"er", ""},
		{"est", ""},
		{"er", "e"},
		{"est", "e"},
	},
	Adverb: nil,
}

// maxRuleDepth bounds repeated rule application for words that no
// single detachment reduces to a known form.
const maxRuleDepth = 4

// Morphy lemmatizes with the WordNet morphy procedure: irregular forms
// come from the exception table, regular ones by stripping a suffix and
// checking the candidate against the lexicon. Among several candidates
// the shortest wins; with none the word is returned unchanged.
//
// Lookups are case-sensitive against a lowercase lexicon, so a
// capitalized word is only reduced when it is already a base form.
type Morphy struct {
	lex *Lexicon
}

// NewMorphy creates a lemmatizer backed by lex.
func NewMorphy(lex *Lexicon) *Morphy {
	return &Morphy{lex: lex}
}

// Lemmatize implements Lemmatizer.
func (m *Morphy) Lemmatize(word string, cat Category) (string, error) {
	if !cat.Valid() {
		return "", fmt.Errorf("lemma: %v: %w", cat, internalerr.ErrInvalidInput)
	}
	if word == "" {
		return "", nil
	}

	candidates := m.candidates(word, cat)
	if len(candidates) == 0 {
		return word, nil
	}
	return shortest(candidates), nil
}

func (m *Morphy) candidates(word string, cat Category) []string {
	if base, ok := m.lex.Exception(cat, word); ok {
		return m.known(cat, word, base)
	}

	forms := applyRules(cat, []string{word})
	if found := m.known(cat, append([]string{word}, forms...)...); len(found) > 0 {
		return found
	}

	for depth := 0; depth < maxRuleDepth && len(forms) > 0; depth++ {
		forms = applyRules(cat, forms)
		if found := m.known(cat, forms...); len(found) > 0 {
			return found
		}
	}
	return nil
}

// known keeps the forms present in the lexicon, in order, without duplicates.
func (m *Morphy) known(cat Category, forms ...string) []string {
	var result []string
	for _, f := range forms {
		if m.lex.Has(cat, f) {
			result = append(result, f)
		}
	}
	return dedupe(result)
}

func applyRules(cat Category, forms []string) []string {
	var result []string
	for _, form := range forms {
		for _, sub := range substitutions[cat] {
			if strings.HasSuffix(form, sub.suffix) {
				result = append(result, strings.TrimSuffix(form, sub.suffix)+sub.replacement)
			}
		}
	}
	return result
}

func dedupe(forms []string) []string {
	seen := make(map[string]bool, len(forms))
	result := forms[:0]
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			result = append(result, f)
		}
	}
	return result
}

// shortest returns the first of the shortest forms.
func shortest(forms []string) string {
	best := forms[0]
	for _, f := range forms[1:] {
		if utf8.RuneCountInString(f) < utf8.RuneCountInString(best) {
			best = f
		}
	}
	return best
}
