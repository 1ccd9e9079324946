// Package stopwords provides stopword membership tests for token filtering.
package stopwords

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"
	"gopkg.in/yaml.v3"
)

// Source answers stopword membership for a lowercase word.
type Source interface {
	IsStop(word string) bool
}

//go:embed english.txt
var englishList string

// Set is a stopword set. Entries are stored lowercase.
// Add and Remove are for load time; a Set that is shared by running
// pipelines must not be mutated.
type Set struct {
	stops map[string]struct{}
}

// NewSet creates a set from the given words.
func NewSet(words []string) *Set {
	stops := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stops[w] = struct{}{}
		}
	}
	return &Set{stops: stops}
}

// English returns the standard English stopword list (the NLTK corpus).
func English() *Set {
	return NewSet(strings.Split(englishList, "\n"))
}

// IsStop checks if a word is a stopword. The caller lowercases.
func (s *Set) IsStop(word string) bool {
	_, ok := s.stops[word]
	return ok
}

// Add adds a word to the set
func (s *Set) Add(word string) {
	s.stops[strings.ToLower(word)] = struct{}{}
}

// Remove removes a word from the set
func (s *Set) Remove(word string) {
	delete(s.stops, strings.ToLower(word))
}

// Len returns the number of stopwords.
func (s *Set) Len() int {
	return len(s.stops)
}

// All returns all stopwords in sorted order.
func (s *Set) All() []string {
	result := make([]string, 0, len(s.stops))
	for w := range s.stops {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// stoplistFile is the YAML layout of a stoplist file:
//
//	terms:
//	  - the
//	  - a
type stoplistFile struct {
	Terms []string `yaml:"terms"`
}

// LoadYAML loads a stopword set from a YAML stoplist file.
func LoadYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl stoplistFile
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
	}
	return NewSet(sl.Terms), nil
}

// Snowball is the stopword list shipped with the Snowball English stemmer.
type Snowball struct{}

// IsStop implements Source.
func (Snowball) IsStop(word string) bool {
	return english.IsStopWord(word)
}
