package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/textprep/internal/logging"
	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/numword"
	"github.com/cognicore/textprep/pkg/textprep/pipeline"
	"github.com/cognicore/textprep/pkg/textprep/postag"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/store"
	"github.com/cognicore/textprep/pkg/textprep/store/postgres"
	"github.com/cognicore/textprep/pkg/textprep/store/sqlite"
	"github.com/cognicore/textprep/pkg/textprep/tokenize"
)

// Loader loads all resource files and constructs pipeline resources.
// For each resource a file path wins over the store, and the store wins
// over the embedded default when it holds rows for that resource.
type Loader struct {
	LexiconPath    string
	TaggerPath     string
	StoplistPath   string
	StopwordSource string // "nltk" (default) or "snowball"
	SpellDictPath  string
	StorePath      string // SQLite file
	StoreDSN       string // PostgreSQL DSN
	StoreMaxConns  int32

	MaxEditDistance   int
	SpellPrefixLength int
	LoadSpelling      bool

	// Store overrides StorePath when set; the caller keeps ownership.
	Store store.Store
}

// Load reads all resources. Any failure is reported as a resource error.
func (l *Loader) Load(ctx context.Context) (pipeline.Resources, error) {
	st, closeStore, err := l.openStore(ctx)
	if err != nil {
		return pipeline.Resources{}, err
	}
	defer closeStore()

	var stats store.Stats
	if st != nil {
		if stats, err = st.Stats(ctx); err != nil {
			return pipeline.Resources{}, internalerr.Resource("store", "stats", err)
		}
	}

	res := pipeline.Resources{
		Tokenizer: tokenize.NewEnglish(),
		Numbers:   numword.NewInflect(),
	}

	// Lexicon
	var lex *lemma.Lexicon
	switch {
	case l.LexiconPath != "":
		lex, err = lemma.LoadFromYAML(l.LexiconPath)
	case st != nil && stats.LemmaWords > 0:
		lex, err = st.Lexicon(ctx)
	default:
		lex = lemma.Default()
	}
	if err != nil {
		return pipeline.Resources{}, internalerr.Resource("lexicon", "load", err)
	}
	res.Lemmatizer = lemma.NewMorphy(lex)

	// Tagger
	if l.TaggerPath != "" {
		tagger, err := postag.LoadYAML(l.TaggerPath)
		if err != nil {
			return pipeline.Resources{}, internalerr.Resource("tagger", "load", err)
		}
		res.Tagger = tagger
	} else {
		res.Tagger = postag.NewLexicon(nil)
	}

	// Stopwords
	switch {
	case l.StoplistPath != "":
		set, err := stopwords.LoadYAML(l.StoplistPath)
		if err != nil {
			return pipeline.Resources{}, internalerr.Resource("stopwords", "load", err)
		}
		res.Stopwords = set
	case st != nil && stats.Stopwords > 0:
		set, err := st.Stopwords(ctx)
		if err != nil {
			return pipeline.Resources{}, internalerr.Resource("stopwords", "load", err)
		}
		res.Stopwords = set
	case strings.EqualFold(l.StopwordSource, "snowball"):
		res.Stopwords = stopwords.Snowball{}
	default:
		res.Stopwords = stopwords.English()
	}

	// Spelling dictionary, only when asked for or explicitly configured
	if l.LoadSpelling || l.SpellDictPath != "" {
		dict, err := l.loadSpelling(ctx, st, stats)
		if err != nil {
			return pipeline.Resources{}, err
		}
		res.Speller = dict
	}

	return res, nil
}

func (l *Loader) loadSpelling(ctx context.Context, st store.Store, stats store.Stats) (*spell.SymSpell, error) {
	opts := l.spellOptions()
	switch {
	case l.SpellDictPath != "":
		dict, err := spell.LoadFrequencyFile(l.SpellDictPath, opts...)
		if err != nil {
			return nil, internalerr.Resource("speller", "load", err)
		}
		return dict, nil
	case st != nil && stats.SpellTerms > 0:
		dict, err := st.SpellDictionary(ctx, opts...)
		if err != nil {
			return nil, internalerr.Resource("speller", "load", err)
		}
		return dict, nil
	}
	return nil, internalerr.Missing("speller")
}

func (l *Loader) spellOptions() []spell.Option {
	var opts []spell.Option
	if l.MaxEditDistance > 0 {
		opts = append(opts, spell.WithMaxEditDistance(l.MaxEditDistance))
	}
	if l.SpellPrefixLength > 0 {
		opts = append(opts, spell.WithPrefixLength(l.SpellPrefixLength))
	}
	return opts
}

func (l *Loader) openStore(ctx context.Context) (store.Store, func(), error) {
	if l.Store != nil {
		return l.Store, func() {}, nil
	}

	var (
		st  store.Store
		err error
	)
	switch {
	case l.StoreDSN != "":
		st, err = postgres.Open(ctx, postgres.Config{DSN: l.StoreDSN, MaxConns: l.StoreMaxConns})
	case l.StorePath != "":
		st, err = sqlite.OpenSQLite(ctx, l.StorePath)
	default:
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, internalerr.Resource("store", "open", err)
	}
	return st, func() { st.Close() }, nil
}

// NewPipeline loads resources for cfg and builds a pipeline.
func NewPipeline(ctx context.Context, cfg *Config, log logging.Logger) (*pipeline.Pipeline, error) {
	res, err := cfg.Loader().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	return pipeline.New(res, cfg.PipelineOptions(log)...)
}
