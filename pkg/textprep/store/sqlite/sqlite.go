package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates
// the resource tables when missing.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS lemma_words (
	word TEXT NOT NULL,
	category TEXT NOT NULL,
	PRIMARY KEY(word, category)
);

CREATE TABLE IF NOT EXISTS lemma_exceptions (
	word TEXT NOT NULL,
	category TEXT NOT NULL,
	lemma TEXT NOT NULL,
	PRIMARY KEY(word, category)
);

CREATE TABLE IF NOT EXISTS stopwords (
	word TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS spell_terms (
	term TEXT PRIMARY KEY,
	count INTEGER NOT NULL CHECK(count > 0)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertLemmaWords adds lexicon words for a category in one transaction.
func (s *sqliteStore) UpsertLemmaWords(ctx context.Context, cat lemma.Category, words []string) error {
	if !cat.Valid() {
		return fmt.Errorf("category %q: %w", cat, internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO lemma_words (word, category) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, w, string(cat)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertLemmaException adds or replaces an irregular form.
func (s *sqliteStore) UpsertLemmaException(ctx context.Context, cat lemma.Category, form, base string) error {
	form = strings.ToLower(strings.TrimSpace(form))
	base = strings.ToLower(strings.TrimSpace(base))
	if !cat.Valid() || form == "" || base == "" {
		return fmt.Errorf("exception %q -> %q (%q): %w", form, base, cat, internalerr.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO lemma_exceptions (word, category, lemma) VALUES (?, ?, ?)
ON CONFLICT(word, category) DO UPDATE SET lemma=excluded.lemma;
`, form, string(cat), base)
	return err
}

// Lexicon builds a lemmatizer lexicon from the stored rows.
func (s *sqliteStore) Lexicon(ctx context.Context) (*lemma.Lexicon, error) {
	lex := lemma.NewLexicon()

	rows, err := s.db.QueryContext(ctx, `SELECT word, category FROM lemma_words`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var word, cat string
		if err := rows.Scan(&word, &cat); err != nil {
			return nil, err
		}
		c, err := lemma.ParseCategory(cat)
		if err != nil {
			return nil, fmt.Errorf("lemma_words %q: %w", word, err)
		}
		lex.AddWords(c, word)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	excRows, err := s.db.QueryContext(ctx, `SELECT word, category, lemma FROM lemma_exceptions`)
	if err != nil {
		return nil, err
	}
	defer excRows.Close()
	for excRows.Next() {
		var word, cat, base string
		if err := excRows.Scan(&word, &cat, &base); err != nil {
			return nil, err
		}
		c, err := lemma.ParseCategory(cat)
		if err != nil {
			return nil, fmt.Errorf("lemma_exceptions %q: %w", word, err)
		}
		lex.AddException(c, word, base)
	}
	return lex, excRows.Err()
}

// ReplaceStopwords replaces the stopword set in a single transaction.
func (s *sqliteStore) ReplaceStopwords(ctx context.Context, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stopwords`); err != nil {
		return err
	}

	if len(words) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stopwords (word) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, w); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Stopwords returns the stored stopword set.
func (s *sqliteStore) Stopwords(ctx context.Context) (*stopwords.Set, error) {
	words, err := s.loadStringColumn(ctx, `SELECT word FROM stopwords ORDER BY word`)
	if err != nil {
		return nil, err
	}
	return stopwords.NewSet(words), nil
}

// UpsertSpellTerms adds or replaces frequency entries in one transaction.
func (s *sqliteStore) UpsertSpellTerms(ctx context.Context, terms []store.SpellTerm) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO spell_terms (term, count) VALUES (?, ?)
ON CONFLICT(term) DO UPDATE SET count=excluded.count;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range terms {
		term := strings.ToLower(strings.TrimSpace(t.Term))
		if !spell.ValidTerm(term) || t.Count <= 0 {
			return fmt.Errorf("spell term %q count %d: %w", t.Term, t.Count, internalerr.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx, term, t.Count); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SpellDictionary indexes the stored terms into a new SymSpell.
func (s *sqliteStore) SpellDictionary(ctx context.Context, opts ...spell.Option) (*spell.SymSpell, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term, count FROM spell_terms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dict := spell.NewSymSpell(opts...)
	for rows.Next() {
		var term string
		var count int64
		if err := rows.Scan(&term, &count); err != nil {
			return nil, err
		}
		dict.Add(term, count)
	}
	return dict, rows.Err()
}

// Stats counts the rows of each resource table.
func (s *sqliteStore) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	counts := []struct {
		table string
		into  *int
	}{
		{"lemma_words", &st.LemmaWords},
		{"lemma_exceptions", &st.LemmaExceptions},
		{"stopwords", &st.Stopwords},
		{"spell_terms", &st.SpellTerms},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.into); err != nil {
			return store.Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return st, nil
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
