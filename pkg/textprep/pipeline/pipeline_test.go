package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/numword"
	"github.com/cognicore/textprep/pkg/textprep/postag"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/tokenize"
)

func defaultResources() Resources {
	return Resources{
		Tokenizer:  tokenize.NewEnglish(),
		Tagger:     postag.NewLexicon(nil),
		Lemmatizer: lemma.NewMorphy(lemma.Default()),
		Stopwords:  stopwords.English(),
		Numbers:    numword.NewInflect(),
	}
}

func newPipeline(t *testing.T, res Resources, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(res, opts...)
	require.NoError(t, err)
	return p
}

func TestPreprocess(t *testing.T) {
	p := newPipeline(t, defaultResources())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"stopwords dropped", "this is my example text", "example text"},
		{"numbers and ampersand", "I have 2 cats & 3 dogs", "two cat three dog"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
		{"only stopwords", "it is what it is", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Preprocess(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreprocessIdempotentOnOutput(t *testing.T) {
	p := newPipeline(t, defaultResources())
	ctx := context.Background()

	once, err := p.Preprocess(ctx, "I have 2 cats & 3 dogs")
	require.NoError(t, err)
	twice, err := p.Preprocess(ctx, once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestPreprocessOutputShape(t *testing.T) {
	p := newPipeline(t, defaultResources())

	inputs := []string{
		"Hello, World! It's 2024 & the year of 12 dogs.",
		"  spaced   out\ttext\n",
		"R&D costs $1,000,000 (approx.)",
	}
	for _, in := range inputs {
		out, err := p.Preprocess(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(out), out, "no leading or trailing space: %q", out)
		assert.NotContains(t, out, "  ")
		assert.NotContains(t, out, "&")
		for _, tok := range strings.Fields(out) {
			assert.False(t, numword.IsDigits(tok), "digit token %q survived", tok)
		}
	}
}

func TestStages(t *testing.T) {
	p := newPipeline(t, defaultResources())
	assert.Equal(t, []Stage{StageNormalize, StageExpandNumbers, StageLemmatize}, p.Stages())

	res := defaultResources()
	res.Speller = spell.NewSymSpell()
	p = newPipeline(t, res, WithSpellCorrection(true))
	assert.Equal(t, []Stage{StageNormalize, StageExpandNumbers, StageCorrectSpelling, StageLemmatize}, p.Stages())

	stages := p.Stages()
	stages[0] = "mutated"
	assert.Equal(t, StageNormalize, p.Stages()[0])
}

func TestExpandNumbers(t *testing.T) {
	p := newPipeline(t, defaultResources())

	got, err := p.ExpandNumbers(context.Background(), "I have 2 cats and 3 dogs")
	require.NoError(t, err)
	assert.Equal(t, "I have two cats and three dogs", got)

	got, err = p.ExpandNumbers(context.Background(), "room 101")
	require.NoError(t, err)
	assert.Equal(t, "room one hundred and one", got)
}

func spellResources() Resources {
	dict := spell.NewSymSpell()
	dict.Add("i", 100)
	dict.Add("have", 100)
	dict.Add("two", 50)
	dict.Add("cat", 60)
	dict.Add("cats", 40)
	res := defaultResources()
	res.Speller = dict
	return res
}

func TestCorrectSpelling(t *testing.T) {
	p := newPipeline(t, spellResources(), WithSpellCorrection(true))

	got, err := p.CorrectSpelling(context.Background(), "I havv two catts zzzzzzzz")
	require.NoError(t, err)
	assert.Equal(t, "I have two cats zzzzzzzz", got)
	assert.Len(t, strings.Fields(got), 5, "token count must not change")

	out, err := p.Preprocess(context.Background(), "I havv 2 catts")
	require.NoError(t, err)
	assert.Equal(t, "two cat", out)
}

func TestSpellingDisabledByDefault(t *testing.T) {
	p := newPipeline(t, spellResources())

	out, err := p.Preprocess(context.Background(), "I havv 2 catts")
	require.NoError(t, err)
	assert.Equal(t, "havv two catts", out)
}

func TestNewMissingResources(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Resources)
		opts     []Option
		resource string
	}{
		{"tokenizer", func(r *Resources) { r.Tokenizer = nil }, nil, "tokenizer"},
		{"tagger", func(r *Resources) { r.Tagger = nil }, nil, "tagger"},
		{"lemmatizer", func(r *Resources) { r.Lemmatizer = nil }, nil, "lemmatizer"},
		{"stopwords", func(r *Resources) { r.Stopwords = nil }, nil, "stopwords"},
		{"numbers", func(r *Resources) { r.Numbers = nil }, nil, "numbers"},
		{"speller", func(r *Resources) {}, []Option{WithSpellCorrection(true)}, "speller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := defaultResources()
			tt.mutate(&res)
			p, err := New(res, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, internalerr.ErrResourceUnavailable)
			assert.Contains(t, err.Error(), tt.resource)
		})
	}
}

func TestNewInvalidOptions(t *testing.T) {
	_, err := New(defaultResources(), WithMaxEditDistance(-1))
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(defaultResources(), WithTimeout(-time.Second))
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

type failingTagger struct{ err error }

func (f failingTagger) Tag([]string) ([]postag.Tagged, error) { return nil, f.err }

type shortTagger struct{}

func (shortTagger) Tag(tokens []string) ([]postag.Tagged, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	return []postag.Tagged{{Text: tokens[0], Tag: "NN"}}, nil
}

type slowTagger struct {
	delay time.Duration
	next  postag.Tagger
}

func (s slowTagger) Tag(tokens []string) ([]postag.Tagged, error) {
	time.Sleep(s.delay)
	return s.next.Tag(tokens)
}

func TestPreprocessResourceFailure(t *testing.T) {
	res := defaultResources()
	res.Tagger = failingTagger{err: errors.New("model not loaded")}
	p := newPipeline(t, res)

	out, err := p.Preprocess(context.Background(), "some text")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, internalerr.ErrResourceUnavailable)
	assert.Contains(t, err.Error(), "model not loaded")
	assert.Contains(t, err.Error(), string(StageLemmatize))
}

func TestPreprocessTaggerCountMismatch(t *testing.T) {
	res := defaultResources()
	res.Tagger = shortTagger{}
	p := newPipeline(t, res)

	_, err := p.Preprocess(context.Background(), "two dogs")
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrResourceUnavailable)
}

func TestPreprocessFailingTokenizer(t *testing.T) {
	res := defaultResources()
	res.Tokenizer = tokenize.Func(func(string) ([]string, error) {
		return nil, errors.New("broken")
	})
	p := newPipeline(t, res)

	_, err := p.Preprocess(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrResourceUnavailable)
	assert.Contains(t, err.Error(), string(StageExpandNumbers))
}

func TestPreprocessTimeout(t *testing.T) {
	res := defaultResources()
	res.Tagger = slowTagger{delay: 500 * time.Millisecond, next: postag.NewLexicon(nil)}
	p := newPipeline(t, res, WithTimeout(20*time.Millisecond))

	start := time.Now()
	out, err := p.Preprocess(context.Background(), "slow text")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, internalerr.ErrResourceUnavailable)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestPreprocessCanceledContext(t *testing.T) {
	p := newPipeline(t, defaultResources())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Preprocess(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunStageUnknown(t *testing.T) {
	p := newPipeline(t, defaultResources())
	_, err := p.RunStage(context.Background(), "bogus", "x")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestPreprocessConcurrent(t *testing.T) {
	p := newPipeline(t, defaultResources())
	want, err := p.Preprocess(context.Background(), "I have 2 cats & 3 dogs")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Preprocess(context.Background(), "I have 2 cats & 3 dogs")
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- errors.New("mismatch: " + got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

type phraseDictionary map[string]string

func (d phraseDictionary) Lookup(term string, _ spell.Verbosity, _ int) []spell.Suggestion {
	if fix, ok := d[term]; ok {
		return []spell.Suggestion{{Term: fix, Distance: 1, Count: 1}}
	}
	return nil
}

func TestCorrectSpellingKeepsSingleTokens(t *testing.T) {
	res := defaultResources()
	res.Speller = phraseDictionary{"icecream": "ice cream", "grate": "great", "dont": "don't"}
	p := newPipeline(t, res, WithSpellCorrection(true))

	got, err := p.CorrectSpelling(context.Background(), "grate icecream dont")
	require.NoError(t, err)
	assert.Equal(t, "great icecream dont", got)
	assert.Len(t, strings.Fields(got), 3)
}

type emptyLemmatizer struct{}

func (emptyLemmatizer) Lemmatize(string, lemma.Category) (string, error) { return "", nil }

func TestLemmatizeKeepsTokenOnEmptyLemma(t *testing.T) {
	res := defaultResources()
	res.Lemmatizer = emptyLemmatizer{}
	p := newPipeline(t, res)

	got, err := p.LemmatizeAndFilter(context.Background(), "the example texts")
	require.NoError(t, err)
	assert.Equal(t, "example texts", got)
}

func TestNormalizeStageComposition(t *testing.T) {
	ctx := context.Background()

	plain := newPipeline(t, defaultResources())
	got, err := plain.RunStage(ctx, StageNormalize, "cafe\u0301 & bar")
	require.NoError(t, err)
	assert.Equal(t, "cafe and bar", got)

	composed := newPipeline(t, defaultResources(), WithUnicodeComposition(true))
	got, err = composed.RunStage(ctx, StageNormalize, "cafe\u0301 & bar")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9 and bar", got)
}

type cancelingLemmatizer struct {
	cancel context.CancelFunc
}

func (c cancelingLemmatizer) Lemmatize(word string, _ lemma.Category) (string, error) {
	c.cancel()
	return word, nil
}

func TestLemmatizeStopsBetweenTokensOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := defaultResources()
	res.Lemmatizer = cancelingLemmatizer{cancel: cancel}
	p := newPipeline(t, res)

	_, err := p.LemmatizeAndFilter(ctx, "apple banana cherry date")
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, internalerr.ErrResourceUnavailable))
}

func TestCancelableContextSameOutput(t *testing.T) {
	p := newPipeline(t, defaultResources())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got, err := p.Preprocess(ctx, "I have 2 cats & 3 dogs")
	require.NoError(t, err)
	assert.Equal(t, "two cat three dog", got)
}
