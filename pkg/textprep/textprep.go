// Package textprep normalizes English text for downstream matching:
// punctuation is stripped, numbers are spelled out, spelling is optionally
// corrected, stopwords are dropped and the remaining words are lemmatized.
//
// Most callers only need Preprocess. Use package pipeline directly to
// supply custom resources or options.
package textprep

import (
	"context"
	"sync"

	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/numword"
	"github.com/cognicore/textprep/pkg/textprep/pipeline"
	"github.com/cognicore/textprep/pkg/textprep/postag"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/tokenize"
)

var (
	defaultOnce     sync.Once
	defaultPipeline *pipeline.Pipeline
	defaultErr      error
)

// DefaultResources returns the embedded resources: English tokenizer,
// lexicon tagger, Morphy lemmatizer over the embedded lexicon, NLTK
// stopwords and the inflect-style number speller.
func DefaultResources() pipeline.Resources {
	return pipeline.Resources{
		Tokenizer:  tokenize.NewEnglish(),
		Tagger:     postag.NewLexicon(nil),
		Lemmatizer: lemma.NewMorphy(lemma.Default()),
		Stopwords:  stopwords.English(),
		Numbers:    numword.NewInflect(),
	}
}

// Default returns a shared pipeline over the embedded resources, built on
// first use. Spelling correction is off.
func Default() (*pipeline.Pipeline, error) {
	defaultOnce.Do(func() {
		defaultPipeline, defaultErr = pipeline.New(DefaultResources())
	})
	return defaultPipeline, defaultErr
}

// Preprocess runs the default pipeline over text.
func Preprocess(text string) (string, error) {
	return PreprocessContext(context.Background(), text)
}

// PreprocessContext is Preprocess with a caller-supplied context.
func PreprocessContext(ctx context.Context, text string) (string, error) {
	p, err := Default()
	if err != nil {
		return "", err
	}
	return p.Preprocess(ctx, text)
}
