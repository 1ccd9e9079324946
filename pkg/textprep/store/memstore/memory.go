package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu         sync.RWMutex
	words      map[lemma.Category]map[string]struct{}
	exceptions map[lemma.Category]map[string]string
	stops      map[string]struct{}
	spell      map[string]int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		words:      make(map[lemma.Category]map[string]struct{}),
		exceptions: make(map[lemma.Category]map[string]string),
		stops:      make(map[string]struct{}),
		spell:      make(map[string]int64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertLemmaWords adds lexicon words for a category.
func (s *Store) UpsertLemmaWords(ctx context.Context, cat lemma.Category, words []string) error {
	if !cat.Valid() {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.words[cat]
	if set == nil {
		set = make(map[string]struct{})
		s.words[cat] = set
	}
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return nil
}

// UpsertLemmaException adds or replaces an irregular form.
func (s *Store) UpsertLemmaException(ctx context.Context, cat lemma.Category, form, base string) error {
	form = strings.ToLower(strings.TrimSpace(form))
	base = strings.ToLower(strings.TrimSpace(base))
	if !cat.Valid() || form == "" || base == "" {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.exceptions[cat]
	if m == nil {
		m = make(map[string]string)
		s.exceptions[cat] = m
	}
	m[form] = base
	return nil
}

// Lexicon builds a lemmatizer lexicon from the stored rows.
func (s *Store) Lexicon(ctx context.Context) (*lemma.Lexicon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lex := lemma.NewLexicon()
	for cat, set := range s.words {
		words := make([]string, 0, len(set))
		for w := range set {
			words = append(words, w)
		}
		lex.AddWords(cat, words...)
	}
	for cat, m := range s.exceptions {
		for form, base := range m {
			lex.AddException(cat, form, base)
		}
	}
	return lex, nil
}

// ReplaceStopwords swaps the whole stopword set.
func (s *Store) ReplaceStopwords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops = make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			s.stops[w] = struct{}{}
		}
	}
	return nil
}

// Stopwords returns the stored stopword set.
func (s *Store) Stopwords(ctx context.Context) (*stopwords.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := make([]string, 0, len(s.stops))
	for w := range s.stops {
		words = append(words, w)
	}
	return stopwords.NewSet(words), nil
}

// UpsertSpellTerms adds or replaces frequency entries.
func (s *Store) UpsertSpellTerms(ctx context.Context, terms []store.SpellTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range terms {
		term := strings.ToLower(strings.TrimSpace(t.Term))
		if !spell.ValidTerm(term) || t.Count <= 0 {
			return internalerr.ErrInvalidInput
		}
		s.spell[term] = t.Count
	}
	return nil
}

// SpellDictionary indexes the stored terms into a new SymSpell.
func (s *Store) SpellDictionary(ctx context.Context, opts ...spell.Option) (*spell.SymSpell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dict := spell.NewSymSpell(opts...)
	for term, count := range s.spell {
		dict.Add(term, count)
	}
	return dict, nil
}

// Stats implements store.Store.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st store.Stats
	for _, set := range s.words {
		st.LemmaWords += len(set)
	}
	for _, m := range s.exceptions {
		st.LemmaExceptions += len(m)
	}
	st.Stopwords = len(s.stops)
	st.SpellTerms = len(s.spell)
	return st, nil
}
