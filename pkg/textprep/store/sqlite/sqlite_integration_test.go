package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/store"
)

func openTestStore(t *testing.T) (store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "resources.db")
	st, err := OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, dbPath
}

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 4 { // lemma_words, lemma_exceptions, stopwords, spell_terms
		t.Errorf("Expected 4 tables, got %d", count)
	}
}

func TestSQLiteLexicon(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	if err := st.UpsertLemmaWords(ctx, lemma.Noun, []string{"Cat", "dog", "dog"}); err != nil {
		t.Fatalf("UpsertLemmaWords: %v", err)
	}
	if err := st.UpsertLemmaWords(ctx, lemma.Verb, []string{"be"}); err != nil {
		t.Fatalf("UpsertLemmaWords: %v", err)
	}
	if err := st.UpsertLemmaException(ctx, lemma.Verb, "was", "be"); err != nil {
		t.Fatalf("UpsertLemmaException: %v", err)
	}
	if err := st.UpsertLemmaException(ctx, lemma.Verb, "was", "be"); err != nil {
		t.Fatalf("UpsertLemmaException again: %v", err)
	}

	lex, err := st.Lexicon(ctx)
	if err != nil {
		t.Fatalf("Lexicon: %v", err)
	}
	if got := lex.Words(lemma.Noun); len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
		t.Errorf("noun words = %v, want [cat dog]", got)
	}

	m := lemma.NewMorphy(lex)
	if got, _ := m.Lemmatize("was", lemma.Verb); got != "be" {
		t.Errorf("Lemmatize(was) = %q, want be", got)
	}
	if got, _ := m.Lemmatize("dogs", lemma.Noun); got != "dog" {
		t.Errorf("Lemmatize(dogs) = %q, want dog", got)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.LemmaWords != 3 || stats.LemmaExceptions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSQLiteRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	if err := st.UpsertLemmaWords(ctx, lemma.Category('z'), []string{"x"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("invalid category: got %v", err)
	}
	if err := st.UpsertLemmaException(ctx, lemma.Noun, "geese", ""); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty lemma: got %v", err)
	}
	err := st.UpsertSpellTerms(ctx, []store.SpellTerm{{Term: "ok", Count: 3}, {Term: "bad", Count: -1}})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("negative count: got %v", err)
	}
	err = st.UpsertSpellTerms(ctx, []store.SpellTerm{{Term: "ice cream", Count: 3}})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("multi-word term: got %v", err)
	}
	stats, _ := st.Stats(ctx)
	if stats.SpellTerms != 0 {
		t.Errorf("failed batch must roll back, got %d terms", stats.SpellTerms)
	}
}

func TestSQLiteStopwords(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	if err := st.ReplaceStopwords(ctx, stopwords.English().All()); err != nil {
		t.Fatalf("ReplaceStopwords: %v", err)
	}
	set, err := st.Stopwords(ctx)
	if err != nil {
		t.Fatalf("Stopwords: %v", err)
	}
	if set.Len() != stopwords.English().Len() {
		t.Errorf("Len = %d, want %d", set.Len(), stopwords.English().Len())
	}

	if err := st.ReplaceStopwords(ctx, []string{"Foo", "bar"}); err != nil {
		t.Fatalf("ReplaceStopwords: %v", err)
	}
	set, _ = st.Stopwords(ctx)
	if set.IsStop("the") || !set.IsStop("foo") || set.Len() != 2 {
		t.Errorf("unexpected stopwords after replace: %v", set.All())
	}
}

func TestSQLiteSpellDictionary(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	src := spell.NewSymSpell()
	src.Add("hello", 100)
	src.Add("help", 40)
	src.Add("world", 80)
	if err := store.ImportSpellDictionary(ctx, st, src); err != nil {
		t.Fatalf("ImportSpellDictionary: %v", err)
	}

	dict, err := st.SpellDictionary(ctx)
	if err != nil {
		t.Fatalf("SpellDictionary: %v", err)
	}
	if dict.Len() != 3 {
		t.Fatalf("Len = %d, want 3", dict.Len())
	}
	got := dict.Lookup("helo", spell.Top, 2)
	if len(got) != 1 || got[0].Term != "hello" {
		t.Errorf("Lookup(helo) = %+v, want hello", got)
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.ImportLexicon(ctx, st, lemma.Default()); err != nil {
		t.Fatalf("ImportLexicon: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	lex, err := st.Lexicon(ctx)
	if err != nil {
		t.Fatalf("Lexicon: %v", err)
	}
	want := lemma.Default().Stats()
	if got := lex.Stats(); got != want {
		t.Errorf("stats after reopen = %+v, want %+v", got, want)
	}
}

func TestSQLiteConcurrentReads(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)
	if err := st.ReplaceStopwords(ctx, []string{"a", "an", "the"}); err != nil {
		t.Fatalf("ReplaceStopwords: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := st.Stopwords(ctx)
			if err != nil {
				errs <- err
				return
			}
			if set.Len() != 3 {
				errs <- errors.New("short stopword set")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
