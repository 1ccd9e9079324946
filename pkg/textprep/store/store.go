package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
)

// Store persists the lexical resources the pipeline loads at startup.
type Store interface {
	Close() error

	// Lemmatizer lexicon
	UpsertLemmaWords(ctx context.Context, cat lemma.Category, words []string) error
	UpsertLemmaException(ctx context.Context, cat lemma.Category, form, base string) error
	Lexicon(ctx context.Context) (*lemma.Lexicon, error)

	// Stopwords
	ReplaceStopwords(ctx context.Context, words []string) error
	Stopwords(ctx context.Context) (*stopwords.Set, error)

	// Spelling frequency dictionary
	UpsertSpellTerms(ctx context.Context, terms []SpellTerm) error
	SpellDictionary(ctx context.Context, opts ...spell.Option) (*spell.SymSpell, error)

	Stats(ctx context.Context) (Stats, error)
}

// SpellTerm is one frequency dictionary entry. Upserting a term that
// already exists replaces its count.
type SpellTerm struct {
	Term  string
	Count int64
}

// Stats counts the rows held for each resource.
type Stats struct {
	LemmaWords      int
	LemmaExceptions int
	Stopwords       int
	SpellTerms      int
}

// ImportLexicon copies every word and exception of lex into st.
func ImportLexicon(ctx context.Context, st Store, lex *lemma.Lexicon) error {
	for _, cat := range lemma.Categories {
		if words := lex.Words(cat); len(words) > 0 {
			if err := st.UpsertLemmaWords(ctx, cat, words); err != nil {
				return fmt.Errorf("import %s words: %w", cat, err)
			}
		}

		exc := lex.Exceptions(cat)
		forms := make([]string, 0, len(exc))
		for form := range exc {
			forms = append(forms, form)
		}
		sort.Strings(forms)
		for _, form := range forms {
			if err := st.UpsertLemmaException(ctx, cat, form, exc[form]); err != nil {
				return fmt.Errorf("import %s exception %q: %w", cat, form, err)
			}
		}
	}
	return nil
}

// ImportSpellDictionary copies every term of dict into st.
func ImportSpellDictionary(ctx context.Context, st Store, dict *spell.SymSpell) error {
	entries := dict.Terms()
	terms := make([]SpellTerm, len(entries))
	for i, e := range entries {
		terms[i] = SpellTerm{Term: e.Term, Count: e.Count}
	}
	return st.UpsertSpellTerms(ctx, terms)
}
