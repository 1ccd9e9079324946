// Package lemma reduces inflected words to their dictionary base form
// according to their part of speech.
package lemma

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
)

// Category is the coarse part of speech a lemma is looked up under.
// Values follow the WordNet synset type codes.
type Category byte

const (
	Noun      Category = 'n'
	Verb      Category = 'v'
	Adjective Category = 'a'
	Adverb    Category = 'r'
)

// Categories lists every category in a fixed order.
var Categories = []Category{Noun, Verb, Adjective, Adverb}

func (c Category) String() string {
	switch c {
	case Noun:
		return "noun"
	case Verb:
		return "verb"
	case Adjective:
		return "adj"
	case Adverb:
		return "adv"
	default:
		return fmt.Sprintf("Category(%q)", rune(c))
	}
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case Noun, Verb, Adjective, Adverb:
		return true
	}
	return false
}

// ParseCategory parses the names produced by String as well as the
// single-letter codes.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun", "n":
		return Noun, nil
	case "verb", "v":
		return Verb, nil
	case "adj", "adjective", "a", "j":
		return Adjective, nil
	case "adv", "adverb", "r":
		return Adverb, nil
	}
	return 0, fmt.Errorf("lemma: unknown category %q: %w", s, internalerr.ErrInvalidInput)
}

// posMap maps the first letter of a Penn Treebank tag to a category.
var posMap = map[rune]Category{
	'N': Noun,
	'V': Verb,
	'J': Adjective,
	'R': Adverb,
}

// CategoryForTag maps a POS tag ("NNS", "VBD", "JJ", "RB", ...) to a
// category using its first letter, case-insensitively.
// Unknown and empty tags map to Noun.
func CategoryForTag(tag string) Category {
	r, _ := utf8.DecodeRuneInString(tag)
	if c, ok := posMap[unicode.ToUpper(r)]; ok {
		return c
	}
	return Noun
}

// Lemmatizer returns the base form of word for the given category.
// A word it cannot reduce is returned unchanged.
type Lemmatizer interface {
	Lemmatize(word string, cat Category) (string, error)
}
