// Package pipeline runs the text preprocessing stages in order:
// normalize → expand numbers → (correct spelling) → lemmatize and filter.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textprep/internal/logging"
	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/normalize"
	"github.com/cognicore/textprep/pkg/textprep/numword"
	"github.com/cognicore/textprep/pkg/textprep/postag"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/tokenize"
)

// Stage names a pipeline step.
type Stage string

const (
	StageNormalize       Stage = "normalize"
	StageExpandNumbers   Stage = "expand_numbers"
	StageCorrectSpelling Stage = "correct_spelling"
	StageLemmatize       Stage = "lemmatize_filter"
)

// Resources are the lexical resources the stages consume. They are
// read-only once loaded and may be shared by many pipelines.
type Resources struct {
	Tokenizer  tokenize.Tokenizer
	Tagger     postag.Tagger
	Lemmatizer lemma.Lemmatizer
	Stopwords  stopwords.Source
	Numbers    numword.Converter
	Speller    spell.Dictionary // only needed with spelling correction
}

// Options configures a pipeline.
type Options struct {
	EnableSpellCorrection bool
	MaxEditDistance       int
	Timeout               time.Duration // per Preprocess call; zero means none
	ComposeUnicode        bool          // NFC-compose before normalizing
	Logger                logging.Logger
}

// Option configures a pipeline.
type Option func(*Options)

// WithSpellCorrection toggles the spelling correction stage.
func WithSpellCorrection(on bool) Option {
	return func(o *Options) { o.EnableSpellCorrection = on }
}

// WithMaxEditDistance bounds the spelling dictionary search.
func WithMaxEditDistance(d int) Option {
	return func(o *Options) { o.MaxEditDistance = d }
}

// WithTimeout bounds each Preprocess call.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithUnicodeComposition NFC-composes text before the normalize stage so
// decomposed accents survive punctuation stripping. Off by default.
func WithUnicodeComposition(on bool) Option {
	return func(o *Options) { o.ComposeUnicode = on }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// DefaultOptions returns the default options: spelling correction off,
// edit distance 2, no timeout.
func DefaultOptions() Options {
	return Options{
		MaxEditDistance: 2,
		Logger:          logging.Nop{},
	}
}

// Pipeline preprocesses text. It holds no per-run state, so one Pipeline
// may serve any number of concurrent callers.
type Pipeline struct {
	res    Resources
	opts   Options
	stages []Stage
}

// New creates a pipeline. Missing resources are reported here rather
// than on first use.
func New(res Resources, opts ...Option) (*Pipeline, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxEditDistance < 0 {
		return nil, fmt.Errorf("pipeline: max edit distance %d: %w", o.MaxEditDistance, internalerr.ErrInvalidConfig)
	}
	if o.Timeout < 0 {
		return nil, fmt.Errorf("pipeline: timeout %v: %w", o.Timeout, internalerr.ErrInvalidConfig)
	}
	if err := res.validate(o.EnableSpellCorrection); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	stages := []Stage{StageNormalize, StageExpandNumbers}
	if o.EnableSpellCorrection {
		stages = append(stages, StageCorrectSpelling)
	}
	stages = append(stages, StageLemmatize)

	return &Pipeline{res: res, opts: o, stages: stages}, nil
}

func (r Resources) validate(spelling bool) error {
	switch {
	case r.Tokenizer == nil:
		return internalerr.Missing("tokenizer")
	case r.Tagger == nil:
		return internalerr.Missing("tagger")
	case r.Lemmatizer == nil:
		return internalerr.Missing("lemmatizer")
	case r.Stopwords == nil:
		return internalerr.Missing("stopwords")
	case r.Numbers == nil:
		return internalerr.Missing("numbers")
	case spelling && r.Speller == nil:
		return internalerr.Missing("speller")
	}
	return nil
}

// Stages returns the active stages in run order.
func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Options returns the resolved options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Preprocess runs every active stage over text. It returns the fully
// processed string or an error, never partial output.
func (p *Pipeline) Preprocess(ctx context.Context, text string) (string, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	runID := ulid.Make().String()
	start := time.Now()

	out := text
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("pipeline: before %s: %w", st, err)
		}

		var err error
		out, err = p.RunStage(ctx, st, out)
		if err != nil {
			p.opts.Logger.Warn("preprocess failed", "run_id", runID, "stage", string(st), "error", err.Error())
			return "", fmt.Errorf("pipeline: %s: %w", st, err)
		}
	}

	p.opts.Logger.Debug("preprocessed",
		"run_id", runID,
		"in_bytes", len(text),
		"out_bytes", len(out),
		"elapsed", time.Since(start).String(),
	)
	return out, nil
}

// RunStage runs a single stage, whether or not it is active.
func (p *Pipeline) RunStage(ctx context.Context, st Stage, text string) (string, error) {
	switch st {
	case StageNormalize:
		if p.opts.ComposeUnicode {
			text = normalize.Compose(text)
		}
		return Normalize(text), nil
	case StageExpandNumbers:
		return p.ExpandNumbers(ctx, text)
	case StageCorrectSpelling:
		return p.CorrectSpelling(ctx, text)
	case StageLemmatize:
		return p.LemmatizeAndFilter(ctx, text)
	}
	return "", fmt.Errorf("unknown stage %q: %w", st, internalerr.ErrInvalidInput)
}

// call runs fn, giving up when ctx ends first. Without a deadline or
// cancellation fn runs inline. Stages use it once per call, around the
// whole stage body.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if ctx.Done() == nil {
		return fn()
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
