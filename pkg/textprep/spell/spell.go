// Package spell suggests dictionary corrections for misspelled words using
// the symmetric delete algorithm.
package spell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Verbosity controls how many suggestions Lookup returns.
type Verbosity int

const (
	// Top returns the single best suggestion.
	Top Verbosity = iota
	// Closest returns every suggestion at the smallest edit distance found.
	Closest
	// All returns every suggestion within the edit distance bound.
	All
)

func (v Verbosity) String() string {
	switch v {
	case Top:
		return "top"
	case Closest:
		return "closest"
	case All:
		return "all"
	default:
		return "Verbosity(" + strconv.Itoa(int(v)) + ")"
	}
}

// Suggestion is a candidate correction.
type Suggestion struct {
	Term     string
	Distance int   // edit distance from the input
	Count    int64 // corpus frequency of Term
}

// Dictionary looks up corrections for a single word, best first.
// A word with no candidate yields an empty result.
type Dictionary interface {
	Lookup(term string, v Verbosity, maxEditDistance int) []Suggestion
}

// Ranker orders suggestions; negative when a ranks before b.
type Ranker func(a, b Suggestion) int

// DefaultRanker prefers the smaller edit distance, then the more frequent
// term, then lexical order.
func DefaultRanker(a, b Suggestion) int {
	if a.Distance != b.Distance {
		return a.Distance - b.Distance
	}
	if a.Count != b.Count {
		if a.Count > b.Count {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Term, b.Term)
}

const (
	defaultMaxEditDistance = 2
	defaultPrefixLength    = 7
)

// SymSpell is a frequency dictionary indexed by deletions of each term's
// prefix. It is read-only once loaded and safe for concurrent lookups.
type SymSpell struct {
	maxEditDistance int
	prefixLength    int
	minTermLength   int
	ranker          Ranker

	words   map[string]int64
	deletes map[string][]string
}

// Option configures a SymSpell dictionary.
type Option func(*SymSpell)

// WithMaxEditDistance sets the largest distance the index supports.
func WithMaxEditDistance(d int) Option {
	return func(s *SymSpell) {
		if d >= 0 {
			s.maxEditDistance = d
		}
	}
}

// WithPrefixLength sets how many leading runes of each term are indexed.
func WithPrefixLength(n int) Option {
	return func(s *SymSpell) {
		if n > 0 {
			s.prefixLength = n
		}
	}
}

// WithMinTermLength makes terms shorter than n runes bypass correction.
func WithMinTermLength(n int) Option {
	return func(s *SymSpell) { s.minTermLength = n }
}

// WithRanker replaces the suggestion ordering.
func WithRanker(r Ranker) Option {
	return func(s *SymSpell) {
		if r != nil {
			s.ranker = r
		}
	}
}

// NewSymSpell creates an empty dictionary.
func NewSymSpell(opts ...Option) *SymSpell {
	s := &SymSpell{
		maxEditDistance: defaultMaxEditDistance,
		prefixLength:    defaultPrefixLength,
		minTermLength:   1,
		ranker:          DefaultRanker,
		words:           make(map[string]int64),
		deletes:         make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prefixLength <= s.maxEditDistance {
		s.prefixLength = s.maxEditDistance + 1
	}
	return s
}

// MaxEditDistance returns the largest distance the index supports.
func (s *SymSpell) MaxEditDistance() int {
	return s.maxEditDistance
}

// Len returns the number of distinct terms.
func (s *SymSpell) Len() int {
	return len(s.words)
}

// ValidTerm reports whether term can be a dictionary entry: a single
// non-empty word with no inner whitespace. Surrounding space is ignored.
func ValidTerm(term string) bool {
	term = strings.TrimSpace(term)
	return term != "" && !strings.ContainsFunc(term, unicode.IsSpace)
}

// Add inserts a term or increases its count. Terms are lowercased.
// Invalid terms (see ValidTerm) and non-positive counts are ignored.
func (s *SymSpell) Add(term string, count int64) {
	if !ValidTerm(term) || count <= 0 {
		return
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if _, exists := s.words[term]; exists {
		s.words[term] += count
		return
	}
	s.words[term] = count

	keys := make(map[string]struct{})
	prefix := runePrefix(term, s.prefixLength)
	keys[prefix] = struct{}{}
	collectDeletes(prefix, s.maxEditDistance, keys)
	for k := range keys {
		s.deletes[k] = append(s.deletes[k], term)
	}
}

// Terms returns every term with its count, sorted by term.
func (s *SymSpell) Terms() []Suggestion {
	result := make([]Suggestion, 0, len(s.words))
	for w, c := range s.words {
		result = append(result, Suggestion{Term: w, Count: c})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Term < result[j].Term })
	return result
}

// LoadFrequencyFile loads a SymSpell frequency dictionary from disk.
func LoadFrequencyFile(path string, opts ...Option) (*SymSpell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := NewSymSpell(opts...)
	if err := s.LoadFrequency(f); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// LoadFrequency reads "term count" lines. Blank lines and lines starting
// with '#' are skipped; a line without a count adds the term once.
func (s *SymSpell) LoadFrequency(r io.Reader) error {
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		count := int64(1)
		if len(fields) > 1 {
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: bad count %q: %w", lineNo, fields[1], err)
			}
			count = n
		}
		s.Add(fields[0], count)
	}
	return scan.Err()
}

// Lookup implements Dictionary. maxEditDistance is capped at the index
// distance. An exact hit is returned with the caller's spelling.
func (s *SymSpell) Lookup(term string, v Verbosity, maxEditDistance int) []Suggestion {
	if maxEditDistance > s.maxEditDistance {
		maxEditDistance = s.maxEditDistance
	}
	if maxEditDistance < 0 || s.skip(term) {
		return nil
	}

	input := strings.ToLower(term)
	var suggestions []Suggestion
	if count, ok := s.words[input]; ok {
		suggestions = append(suggestions, Suggestion{Term: term, Distance: 0, Count: count})
		if v != All {
			return suggestions
		}
	}

	inputLen := utf8.RuneCountInString(input)
	prefix := runePrefix(input, s.prefixLength)
	prefixLen := utf8.RuneCountInString(prefix)

	seenCandidates := map[string]struct{}{prefix: {}}
	seenTerms := map[string]struct{}{input: {}}
	queue := []string{prefix}

	for len(queue) > 0 {
		candidate := queue[0]
		queue = queue[1:]
		candidateLen := utf8.RuneCountInString(candidate)

		for _, word := range s.deletes[candidate] {
			if _, seen := seenTerms[word]; seen {
				continue
			}
			seenTerms[word] = struct{}{}

			if abs(utf8.RuneCountInString(word)-inputLen) > maxEditDistance {
				continue
			}
			d := levenshtein.ComputeDistance(input, word)
			if d <= maxEditDistance {
				suggestions = append(suggestions, Suggestion{Term: word, Distance: d, Count: s.words[word]})
			}
		}

		if prefixLen-candidateLen < maxEditDistance {
			for _, del := range singleDeletes(candidate) {
				if _, seen := seenCandidates[del]; !seen {
					seenCandidates[del] = struct{}{}
					queue = append(queue, del)
				}
			}
		}
	}

	return s.trim(suggestions, v)
}

// skip reports terms that are never corrected.
func (s *SymSpell) skip(term string) bool {
	if term == "" || utf8.RuneCountInString(term) < s.minTermLength {
		return true
	}
	for _, r := range term {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func (s *SymSpell) trim(suggestions []Suggestion, v Verbosity) []Suggestion {
	if len(suggestions) == 0 {
		return nil
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return s.ranker(suggestions[i], suggestions[j]) < 0
	})

	switch v {
	case Top:
		return suggestions[:1]
	case Closest:
		best := suggestions[0].Distance
		n := 0
		for n < len(suggestions) && suggestions[n].Distance == best {
			n++
		}
		return suggestions[:n]
	}
	return suggestions
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func singleDeletes(word string) []string {
	runes := []rune(word)
	if len(runes) == 0 {
		return nil
	}
	result := make([]string, 0, len(runes))
	for i := range runes {
		result = append(result, string(runes[:i])+string(runes[i+1:]))
	}
	return result
}

func collectDeletes(word string, depth int, into map[string]struct{}) {
	if depth == 0 {
		return
	}
	for _, del := range singleDeletes(word) {
		if _, seen := into[del]; seen {
			continue
		}
		into[del] = struct{}{}
		collectDeletes(del, depth-1, into)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
