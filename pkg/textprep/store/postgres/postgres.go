// Package postgres implements the resource store on PostgreSQL, for
// deployments where many workers share one set of resources.
package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/store"
)

// insertChunk bounds the rows per INSERT to stay under the bind limit.
const insertChunk = 1000

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type pgStore struct {
	pool *pgxpool.Pool
}

// Open connects, migrates and returns a store. Close releases the pool.
func Open(ctx context.Context, cfg Config) (store.Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &pgStore{pool: pool}, nil
}

// New wraps an existing, migrated pool. Close does not close the pool.
func New(pool *pgxpool.Pool) store.Store {
	return &borrowedStore{pgStore{pool: pool}}
}

type borrowedStore struct{ pgStore }

func (*borrowedStore) Close() error { return nil }

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *pgStore) UpsertLemmaWords(ctx context.Context, cat lemma.Category, words []string) error {
	if !cat.Valid() {
		return fmt.Errorf("category %q: %w", cat, internalerr.ErrInvalidInput)
	}
	clean := cleanWords(words)

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for start := 0; start < len(clean); start += insertChunk {
			end := min(start+insertChunk, len(clean))
			ins := psql.Insert("lemma_words").Columns("word", "category")
			for _, w := range clean[start:end] {
				ins = ins.Values(w, string(cat))
			}
			if err := exec(ctx, tx, ins.Suffix("ON CONFLICT DO NOTHING")); err != nil {
				return fmt.Errorf("insert lemma words: %w", err)
			}
		}
		return nil
	})
}

func (s *pgStore) UpsertLemmaException(ctx context.Context, cat lemma.Category, form, base string) error {
	form = strings.ToLower(strings.TrimSpace(form))
	base = strings.ToLower(strings.TrimSpace(base))
	if !cat.Valid() || form == "" || base == "" {
		return fmt.Errorf("exception %q -> %q (%q): %w", form, base, cat, internalerr.ErrInvalidInput)
	}

	ins := psql.Insert("lemma_exceptions").
		Columns("word", "category", "lemma").
		Values(form, string(cat), base).
		Suffix("ON CONFLICT (word, category) DO UPDATE SET lemma = EXCLUDED.lemma")
	if err := exec(ctx, s.pool, ins); err != nil {
		return fmt.Errorf("upsert lemma exception: %w", err)
	}
	return nil
}

func (s *pgStore) Lexicon(ctx context.Context) (*lemma.Lexicon, error) {
	lex := lemma.NewLexicon()

	err := queryEach(ctx, s.pool, psql.Select("word", "category").From("lemma_words"),
		func(rows pgx.Rows) error {
			var word, cat string
			if err := rows.Scan(&word, &cat); err != nil {
				return err
			}
			c, err := lemma.ParseCategory(cat)
			if err != nil {
				return fmt.Errorf("lemma_words %q: %w", word, err)
			}
			lex.AddWords(c, word)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = queryEach(ctx, s.pool, psql.Select("word", "category", "lemma").From("lemma_exceptions"),
		func(rows pgx.Rows) error {
			var word, cat, base string
			if err := rows.Scan(&word, &cat, &base); err != nil {
				return err
			}
			c, err := lemma.ParseCategory(cat)
			if err != nil {
				return fmt.Errorf("lemma_exceptions %q: %w", word, err)
			}
			lex.AddException(c, word, base)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return lex, nil
}

func (s *pgStore) ReplaceStopwords(ctx context.Context, words []string) error {
	clean := cleanWords(words)

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := exec(ctx, tx, psql.Delete("stopwords")); err != nil {
			return fmt.Errorf("clear stopwords: %w", err)
		}
		for start := 0; start < len(clean); start += insertChunk {
			end := min(start+insertChunk, len(clean))
			ins := psql.Insert("stopwords").Columns("word")
			for _, w := range clean[start:end] {
				ins = ins.Values(w)
			}
			if err := exec(ctx, tx, ins.Suffix("ON CONFLICT DO NOTHING")); err != nil {
				return fmt.Errorf("insert stopwords: %w", err)
			}
		}
		return nil
	})
}

func (s *pgStore) Stopwords(ctx context.Context) (*stopwords.Set, error) {
	var words []string
	err := queryEach(ctx, s.pool, psql.Select("word").From("stopwords").OrderBy("word"),
		func(rows pgx.Rows) error {
			var w string
			if err := rows.Scan(&w); err != nil {
				return err
			}
			words = append(words, w)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return stopwords.NewSet(words), nil
}

func (s *pgStore) UpsertSpellTerms(ctx context.Context, terms []store.SpellTerm) error {
	latest := make(map[string]int64, len(terms))
	order := make([]string, 0, len(terms))
	for _, t := range terms {
		term := strings.ToLower(strings.TrimSpace(t.Term))
		if !spell.ValidTerm(term) || t.Count <= 0 {
			return fmt.Errorf("spell term %q count %d: %w", t.Term, t.Count, internalerr.ErrInvalidInput)
		}
		if _, seen := latest[term]; !seen {
			order = append(order, term)
		}
		latest[term] = t.Count
	}

	// A single INSERT may not touch the same key twice, hence the dedupe.
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for start := 0; start < len(order); start += insertChunk {
			end := min(start+insertChunk, len(order))
			ins := psql.Insert("spell_terms").Columns("term", "count")
			for _, term := range order[start:end] {
				ins = ins.Values(term, latest[term])
			}
			ins = ins.Suffix("ON CONFLICT (term) DO UPDATE SET count = EXCLUDED.count")
			if err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("upsert spell terms: %w", err)
			}
		}
		return nil
	})
}

func (s *pgStore) SpellDictionary(ctx context.Context, opts ...spell.Option) (*spell.SymSpell, error) {
	dict := spell.NewSymSpell(opts...)
	err := queryEach(ctx, s.pool, psql.Select("term", "count").From("spell_terms"),
		func(rows pgx.Rows) error {
			var term string
			var count int64
			if err := rows.Scan(&term, &count); err != nil {
				return err
			}
			dict.Add(term, count)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return dict, nil
}

func (s *pgStore) Stats(ctx context.Context) (store.Stats, error) {
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
		query, args, err := psql.Select("count(*)").From(c.table).ToSql()
		if err != nil {
			return store.Stats{}, err
		}
		if err := s.pool.QueryRow(ctx, query, args...).Scan(c.into); err != nil {
			return store.Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return st, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func exec(ctx context.Context, q querier, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, query, args...)
	return err
}

func queryEach(ctx context.Context, q querier, b sq.Sqlizer, fn func(pgx.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func cleanWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
