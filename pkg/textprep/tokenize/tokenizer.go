// Package tokenize splits text into ordered word tokens.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits text into an ordered sequence of tokens.
// Implementations must be deterministic: equal input yields equal output.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// Func adapts a plain function to the Tokenizer interface.
type Func func(text string) ([]string, error)

// Tokenize implements Tokenizer.
func (f Func) Tokenize(text string) ([]string, error) { return f(text) }

// English is a rule-based tokenizer following Penn Treebank conventions:
// whitespace separates tokens, punctuation is split off words, and the
// common English clitics ("n't", "'s", "'re", ...) become their own tokens.
// Hyphenated words and numbers with internal separators ("3.14", "1,000")
// stay whole. English is stateless and safe for concurrent use.
type English struct{}

// NewEnglish creates an English tokenizer.
func NewEnglish() *English {
	return &English{}
}

// Tokenize implements Tokenizer. It never fails.
func (t *English) Tokenize(text string) ([]string, error) {
	var tokens []string
	for _, field := range strings.Fields(text) {
		tokens = append(tokens, t.splitField(field)...)
	}
	return tokens, nil
}

// splitField walks one whitespace-free field and emits word and
// punctuation tokens in order.
func (t *English) splitField(field string) []string {
	var tokens []string
	runes := []rune(field)

	for i := 0; i < len(runes); {
		r := runes[i]

		if isWordRune(r) {
			start := i
			i++
			for i < len(runes) {
				if isWordRune(runes[i]) {
					i++
					continue
				}
				if i+1 < len(runes) && joins(runes[i-1], runes[i], runes[i+1]) {
					i += 2
					continue
				}
				break
			}
			tokens = append(tokens, splitClitic(string(runes[start:i]))...)
			continue
		}

		// Runs of dots or dashes ("...", "--") stay together.
		if r == '.' || r == '-' {
			start := i
			for i < len(runes) && runes[i] == r {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
			continue
		}

		tokens = append(tokens, string(r))
		i++
	}

	return tokens
}

// joins reports whether sep, sitting between prev and next, belongs to the
// surrounding word.
func joins(prev, sep, next rune) bool {
	switch sep {
	case '-':
		return isWordRune(prev) && isWordRune(next)
	case '.', ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	case '\'', '’':
		return unicode.IsLetter(prev) && unicode.IsLetter(next)
	}
	return false
}

var clitics = []string{"'s", "'re", "'ve", "'ll", "'d", "'m"}

// splitClitic separates a trailing English clitic from a word:
// "don't" -> "do" "n't", "cat's" -> "cat" "'s".
func splitClitic(word string) []string {
	lower := strings.ToLower(strings.ReplaceAll(word, "’", "'"))
	if strings.HasSuffix(lower, "n't") && utf8.RuneCountInString(lower) > 3 {
		return splitAtRuneFromEnd(word, 3)
	}
	for _, c := range clitics {
		if strings.HasSuffix(lower, c) && utf8.RuneCountInString(lower) > len(c) {
			return splitAtRuneFromEnd(word, len(c))
		}
	}
	return []string{word}
}

// splitAtRuneFromEnd splits word so that the second part holds its last n runes.
func splitAtRuneFromEnd(word string, n int) []string {
	runes := []rune(word)
	cut := len(runes) - n
	return []string{string(runes[:cut]), string(runes[cut:])}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Join rejoins tokens with single spaces.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
