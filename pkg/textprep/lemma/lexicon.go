package lemma

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon stores the base forms known for each category and the
// irregular inflections that the detachment rules cannot reach:
// - Words: lemmas per category (cat, go, good, quickly)
// - Exceptions: inflected form -> lemma per category (mice -> mouse, went -> go)
//
// A Lexicon is read-only once loaded and may be shared by any number of
// concurrent lemmatizers.
type Lexicon struct {
	words      map[Category]map[string]struct{}
	exceptions map[Category]map[string]string
}

//go:embed lexicon.yaml
var defaultLexicon []byte

// NewLexicon creates an empty lexicon.
func NewLexicon() *Lexicon {
	lex := &Lexicon{
		words:      make(map[Category]map[string]struct{}, len(Categories)),
		exceptions: make(map[Category]map[string]string, len(Categories)),
	}
	for _, c := range Categories {
		lex.words[c] = make(map[string]struct{})
		lex.exceptions[c] = make(map[string]string)
	}
	return lex
}

// lexiconFile is the YAML layout of a lexicon file:
//
//	nouns: [cat, dog, mouse]
//	verbs: [go, eat]
//	adjectives: [good]
//	adverbs: [well]
//	exceptions:
//	  noun: {mice: mouse}
//	  verb: {went: go}
type lexiconFile struct {
	Nouns      []string                     `yaml:"nouns"`
	Verbs      []string                     `yaml:"verbs"`
	Adjectives []string                     `yaml:"adjectives"`
	Adverbs    []string                     `yaml:"adverbs"`
	Exceptions map[string]map[string]string `yaml:"exceptions"`
}

// Default returns the lexicon embedded in the package.
func Default() *Lexicon {
	lex, err := ParseYAML(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("lemma: embedded lexicon: %v", err))
	}
	return lex
}

// LoadFromYAML loads a lexicon from a YAML file.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ParseYAML decodes a lexicon from YAML bytes.
func ParseYAML(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	lex := NewLexicon()
	lex.AddWords(Noun, f.Nouns...)
	lex.AddWords(Verb, f.Verbs...)
	lex.AddWords(Adjective, f.Adjectives...)
	lex.AddWords(Adverb, f.Adverbs...)

	for name, table := range f.Exceptions {
		cat, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		for form, base := range table {
			lex.AddException(cat, form, base)
		}
	}
	return lex, nil
}

// AddWords registers base forms for a category. Words are lowercased.
func (l *Lexicon) AddWords(cat Category, words ...string) {
	set, ok := l.words[cat]
	if !ok {
		return
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
}

// AddException registers an irregular form and its lemma.
func (l *Lexicon) AddException(cat Category, form, base string) {
	table, ok := l.exceptions[cat]
	if !ok {
		return
	}
	form = strings.ToLower(strings.TrimSpace(form))
	base = strings.ToLower(strings.TrimSpace(base))
	if form == "" || base == "" {
		return
	}
	table[form] = base
}

// Has reports whether word is a known base form for the category.
func (l *Lexicon) Has(cat Category, word string) bool {
	_, ok := l.words[cat][word]
	return ok
}

// Exception returns the lemma registered for an irregular form.
func (l *Lexicon) Exception(cat Category, form string) (string, bool) {
	base, ok := l.exceptions[cat][form]
	return base, ok
}

// Words returns the base forms of a category in sorted order.
func (l *Lexicon) Words(cat Category) []string {
	result := make([]string, 0, len(l.words[cat]))
	for w := range l.words[cat] {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// Exceptions returns a copy of the exception table of a category.
func (l *Lexicon) Exceptions(cat Category) map[string]string {
	result := make(map[string]string, len(l.exceptions[cat]))
	for form, base := range l.exceptions[cat] {
		result[form] = base
	}
	return result
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	var s LexiconStats
	for _, c := range Categories {
		s.Words += len(l.words[c])
		s.Exceptions += len(l.exceptions[c])
	}
	return s
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	Words      int // Base forms across all categories
	Exceptions int // Irregular forms across all categories
}
