// Package numword spells out integer digit strings as English words.
package numword

import (
	"fmt"
	"strings"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
)

// Converter turns a string of ASCII digits into English words.
type Converter interface {
	Words(digits string) (string, error)
}

var units = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = [...]string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

var scales = [...]string{
	"", "thousand", "million", "billion", "trillion", "quadrillion", "quintillion",
	"sextillion", "septillion", "octillion", "nonillion", "decillion",
}

// maxDigits is the longest number read as a whole; longer strings are
// read digit by digit.
const maxDigits = len(scales) * 3

// Inflect reads numbers the way English prose does:
// 123 -> "one hundred and twenty-three",
// 1234 -> "one thousand, two hundred and thirty-four".
type Inflect struct {
	and        bool
	hyphen     bool
	groupComma bool
}

// Option configures an Inflect converter.
type Option func(*Inflect)

// WithAnd toggles "and" after hundreds and before a trailing small group.
func WithAnd(on bool) Option {
	return func(c *Inflect) { c.and = on }
}

// WithHyphen toggles the hyphen in compound tens ("twenty-three").
func WithHyphen(on bool) Option {
	return func(c *Inflect) { c.hyphen = on }
}

// WithGroupComma toggles the comma between thousand groups.
func WithGroupComma(on bool) Option {
	return func(c *Inflect) { c.groupComma = on }
}

// NewInflect creates a converter. All options default to on.
func NewInflect(opts ...Option) *Inflect {
	c := &Inflect{and: true, hyphen: true, groupComma: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Words implements Converter.
func (c *Inflect) Words(digits string) (string, error) {
	if !IsDigits(digits) {
		return "", fmt.Errorf("numword: %q is not a digit string: %w", digits, internalerr.ErrInvalidInput)
	}

	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return units[0], nil
	}
	if len(trimmed) > maxDigits {
		return c.digitByDigit(trimmed), nil
	}

	// Split into groups of three from the right; groups[0] is the units group.
	var groups []int
	for end := len(trimmed); end > 0; end -= 3 {
		start := end - 3
		if start < 0 {
			start = 0
		}
		n := 0
		for _, d := range trimmed[start:end] {
			n = n*10 + int(d-'0')
		}
		groups = append(groups, n)
	}

	var parts []string
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i] == 0 {
			continue
		}
		words := c.hundreds(groups[i])
		if scales[i] != "" {
			words += " " + scales[i]
		}
		parts = append(parts, words)
	}

	sep := " "
	if c.groupComma {
		sep = ", "
	}

	// "one thousand and one": a trailing group below one hundred joins with "and".
	if c.and && len(parts) > 1 && groups[0] > 0 && groups[0] < 100 {
		head := strings.Join(parts[:len(parts)-1], sep)
		return head + " and " + parts[len(parts)-1], nil
	}
	return strings.Join(parts, sep), nil
}

// hundreds spells 1..999.
func (c *Inflect) hundreds(n int) string {
	h, rest := n/100, n%100
	switch {
	case h == 0:
		return c.tens(rest)
	case rest == 0:
		return units[h] + " hundred"
	case c.and:
		return units[h] + " hundred and " + c.tens(rest)
	default:
		return units[h] + " hundred " + c.tens(rest)
	}
}

// tens spells 1..99.
func (c *Inflect) tens(n int) string {
	if n < 20 {
		return units[n]
	}
	t, u := n/10, n%10
	if u == 0 {
		return tens[t]
	}
	if c.hyphen {
		return tens[t] + "-" + units[u]
	}
	return tens[t] + " " + units[u]
}

func (c *Inflect) digitByDigit(digits string) string {
	words := make([]string, len(digits))
	for i := 0; i < len(digits); i++ {
		words[i] = units[digits[i]-'0']
	}
	return strings.Join(words, " ")
}
