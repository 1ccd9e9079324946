// Package postag assigns Penn Treebank part-of-speech tags to tokens.
package postag

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Tagged is a token with its POS tag.
type Tagged struct {
	Text string
	Tag  string
}

// Tagger assigns exactly one tag to each token, in order.
type Tagger interface {
	Tag(tokens []string) ([]Tagged, error)
}

// closedClass holds function words whose tag does not depend on context.
var closedClass = map[string]string{
	// determiners
	"a": "DT", "an": "DT", "the": "DT", "this": "DT", "that": "DT", "these": "DT",
	"those": "DT", "each": "DT", "every": "DT", "some": "DT", "any": "DT", "no": "DT",
	"all": "DT", "both": "DT", "another": "DT", "either": "DT", "neither": "DT",
	// pronouns
	"i": "PRP", "me": "PRP", "you": "PRP", "he": "PRP", "him": "PRP", "she": "PRP",
	"her": "PRP$", "it": "PRP", "we": "PRP", "us": "PRP", "they": "PRP", "them": "PRP",
	"myself": "PRP", "yourself": "PRP", "himself": "PRP", "herself": "PRP",
	"itself": "PRP", "ourselves": "PRP", "themselves": "PRP",
	"my": "PRP$", "your": "PRP$", "his": "PRP$", "its": "PRP$", "our": "PRP$",
	"their": "PRP$",
	"who": "WP", "whom": "WP", "what": "WP", "which": "WDT", "whose": "WP$",
	"when": "WRB", "where": "WRB", "why": "WRB", "how": "WRB",
	// prepositions and subordinators
	"of": "IN", "in": "IN", "on": "IN", "at": "IN", "by": "IN", "for": "IN",
	"with": "IN", "from": "IN", "about": "IN", "into": "IN", "over": "IN",
	"under": "IN", "after": "IN", "before": "IN", "between": "IN", "through": "IN",
	"during": "IN", "without": "IN", "against": "IN", "because": "IN", "if": "IN",
	"while": "IN", "than": "IN", "like": "IN", "until": "IN", "since": "IN",
	"though": "IN", "although": "IN", "as": "IN",
	"to": "TO",
	// conjunctions
	"and": "CC", "or": "CC", "but": "CC", "nor": "CC", "yet": "CC",
	// modals
	"can": "MD", "could": "MD", "will": "MD", "would": "MD", "shall": "MD",
	"should": "MD", "may": "MD", "might": "MD", "must": "MD", "ca": "MD", "wo": "MD",
	// auxiliaries
	"am": "VBP", "is": "VBZ", "are": "VBP", "was": "VBD", "were": "VBD", "be": "VB",
	"been": "VBN", "being": "VBG", "have": "VBP", "has": "VBZ", "had": "VBD",
	"do": "VBP", "does": "VBZ", "did": "VBD", "done": "VBN",
	// particles and adverbs
	"not": "RB", "n't": "RB", "very": "RB", "too": "RB", "also": "RB", "so": "RB",
	"just": "RB", "never": "RB", "always": "RB", "often": "RB", "really": "RB",
	"quite": "RB", "well": "RB", "again": "RB", "here": "RB", "there": "EX",
	"then": "RB", "now": "RB", "only": "RB", "even": "RB", "still": "RB",
	"'s": "POS", "'re": "VBP", "'m": "VBP", "'ve": "VBP", "'ll": "MD", "'d": "MD",
	// number words
	"zero": "CD", "one": "CD", "two": "CD", "three": "CD", "four": "CD", "five": "CD",
	"six": "CD", "seven": "CD", "eight": "CD", "nine": "CD", "ten": "CD",
	"eleven": "CD", "twelve": "CD", "thirteen": "CD", "fourteen": "CD",
	"fifteen": "CD", "sixteen": "CD", "seventeen": "CD", "eighteen": "CD",
	"nineteen": "CD", "twenty": "CD", "thirty": "CD", "forty": "CD", "fifty": "CD",
	"sixty": "CD", "seventy": "CD", "eighty": "CD", "ninety": "CD", "hundred": "CD",
	"thousand": "CD", "million": "CD", "billion": "CD", "trillion": "CD",
}

// suffixRules are tried in order on words missing from the lexicon.
var suffixRules = []struct {
	suffix string
	tag    string
}{
	{"ness", "NN"},
	{"ment", "NN"},
	{"tion", "NN"},
	{"sion", "NN"},
	{"ity", "NN"},
	{"ship", "NN"},
	{"ly", "RB"},
	{"ing", "VBG"},
	{"ed", "VBD"},
	{"ous", "JJ"},
	{"ful", "JJ"},
	{"ive", "JJ"},
	{"able", "JJ"},
	{"ible", "JJ"},
	{"less", "JJ"},
	{"ic", "JJ"},
	{"al", "JJ"},
	{"est", "JJS"},
	{"ss", "NN"},
	{"us", "NN"},
	{"s", "NNS"},
}

// Lexicon is a lexicon-and-suffix tagger. Known words take their lexicon
// tag; unknown words are tagged from their shape and suffix; anything
// else is a singular noun. A word following "to" or a modal is retagged
// as a base-form verb when the lexicon does not pin it.
//
// A Lexicon tagger is read-only after construction and safe for
// concurrent use.
type Lexicon struct {
	words map[string]string
}

// NewLexicon creates a tagger with the built-in closed-class lexicon
// extended by extra (word -> tag). Extra entries win.
func NewLexicon(extra map[string]string) *Lexicon {
	words := make(map[string]string, len(closedClass)+len(extra))
	for w, tag := range closedClass {
		words[w] = tag
	}
	for w, tag := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		tag = strings.ToUpper(strings.TrimSpace(tag))
		if w != "" && tag != "" {
			words[w] = tag
		}
	}
	return &Lexicon{words: words}
}

// taggerFile is the YAML layout of a tagger lexicon file:
//
//	words:
//	  food: NN
//	  love: VB
type taggerFile struct {
	Words map[string]string `yaml:"words"`
}

// LoadYAML creates a tagger whose lexicon is extended from a YAML file.
func LoadYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f taggerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tagger lexicon %s: %w", path, err)
	}
	return NewLexicon(f.Words), nil
}

// Tag implements Tagger. It never fails.
func (t *Lexicon) Tag(tokens []string) ([]Tagged, error) {
	tagged := make([]Tagged, len(tokens))
	for i, tok := range tokens {
		tag, pinned := t.lookup(tok, i)
		if !pinned && i > 0 && takesBaseVerb(tagged[i-1].Tag) && isVerbLike(tag) {
			tag = "VB"
		}
		tagged[i] = Tagged{Text: tok, Tag: tag}
	}
	return tagged, nil
}

// lookup returns the context-free tag of a token and whether it came
// from the lexicon.
func (t *Lexicon) lookup(tok string, pos int) (string, bool) {
	lower := strings.ToLower(tok)
	if tag, ok := t.words[lower]; ok {
		return tag, true
	}

	r, _ := utf8.DecodeRuneInString(tok)
	switch {
	case tok == "":
		return "NN", false
	case isNumeric(tok):
		return "CD", false
	case !unicode.IsLetter(r) && !unicode.IsDigit(r):
		return punctTag(tok), false
	case pos > 0 && unicode.IsUpper(r):
		return "NNP", false
	}

	for _, rule := range suffixRules {
		if strings.HasSuffix(lower, rule.suffix) && utf8.RuneCountInString(lower) > utf8.RuneCountInString(rule.suffix)+1 {
			return rule.tag, false
		}
	}
	return "NN", false
}

// takesBaseVerb reports whether a tag is followed by a bare infinitive.
func takesBaseVerb(tag string) bool {
	return tag == "TO" || tag == "MD"
}

func isVerbLike(tag string) bool {
	return tag == "NN" || strings.HasPrefix(tag, "VB")
}

func isNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}

func punctTag(tok string) string {
	switch tok {
	case ".", "!", "?":
		return "."
	case ",":
		return ","
	case ":", ";", "...", "-", "--":
		return ":"
	case "(", "[", "{":
		return "("
	case ")", "]", "}":
		return ")"
	case "\"", "``", "''":
		return "''"
	case "$":
		return "$"
	case "#":
		return "#"
	}
	return "SYM"
}
