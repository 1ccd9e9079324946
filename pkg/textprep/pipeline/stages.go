package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/normalize"
	"github.com/cognicore/textprep/pkg/textprep/numword"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/tokenize"
)

// Normalize replaces "&" with "and" and strips punctuation.
func Normalize(text string) string {
	return normalize.Normalize(text)
}

// ExpandNumbers rewrites every all-digit token as English words and
// rejoins the tokens with single spaces.
func (p *Pipeline) ExpandNumbers(ctx context.Context, text string) (string, error) {
	return call(ctx, func() (string, error) { return p.expandNumbers(ctx, text) })
}

func (p *Pipeline) expandNumbers(ctx context.Context, text string) (string, error) {
	tokens, err := p.tokenize(text)
	if err != nil {
		return "", err
	}

	for i, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !numword.IsDigits(tok) {
			continue
		}
		words, err := p.res.Numbers.Words(tok)
		if err != nil {
			return "", resourceErr("numbers", "words", err)
		}
		tokens[i] = words
	}
	return tokenize.Join(tokens), nil
}

// CorrectSpelling replaces each token by its closest dictionary match.
// A token without a match is kept, and so is one whose match would not
// stay a single token, so the token count never changes.
func (p *Pipeline) CorrectSpelling(ctx context.Context, text string) (string, error) {
	if p.res.Speller == nil {
		return "", internalerr.Missing("speller")
	}
	return call(ctx, func() (string, error) { return p.correctSpelling(ctx, text) })
}

func (p *Pipeline) correctSpelling(ctx context.Context, text string) (string, error) {
	tokens, err := p.tokenize(text)
	if err != nil {
		return "", err
	}

	for i, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		suggestions := p.res.Speller.Lookup(tok, spell.Closest, p.opts.MaxEditDistance)
		if len(suggestions) == 0 || suggestions[0].Term == tok {
			continue
		}
		single, err := p.tokenize(suggestions[0].Term)
		if err != nil {
			return "", err
		}
		if len(single) == 1 {
			tokens[i] = single[0]
		}
	}
	return tokenize.Join(tokens), nil
}

// LemmatizeAndFilter tags each token, drops stopwords (tested on the
// lowercase surface form) and replaces the rest by their lemma. A token
// whose lemma comes back empty is kept as is.
func (p *Pipeline) LemmatizeAndFilter(ctx context.Context, text string) (string, error) {
	return call(ctx, func() (string, error) { return p.lemmatizeAndFilter(ctx, text) })
}

func (p *Pipeline) lemmatizeAndFilter(ctx context.Context, text string) (string, error) {
	tokens, err := p.tokenize(text)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", nil
	}

	tagged, err := p.res.Tagger.Tag(tokens)
	if err != nil {
		return "", resourceErr("tagger", "tag", err)
	}
	if len(tagged) != len(tokens) {
		return "", resourceErr("tagger", "tag",
			fmt.Errorf("got %d tags for %d tokens", len(tagged), len(tokens)))
	}

	lemmas := make([]string, 0, len(tagged))
	for _, tt := range tagged {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if p.res.Stopwords.IsStop(strings.ToLower(tt.Text)) {
			continue
		}
		lem, err := p.res.Lemmatizer.Lemmatize(tt.Text, lemma.CategoryForTag(tt.Tag))
		if err != nil {
			return "", resourceErr("lemmatizer", "lemmatize", err)
		}
		if lem == "" {
			lem = tt.Text
		}
		lemmas = append(lemmas, lem)
	}
	return tokenize.Join(lemmas), nil
}

func (p *Pipeline) tokenize(text string) ([]string, error) {
	tokens, err := p.res.Tokenizer.Tokenize(text)
	if err != nil {
		return nil, resourceErr("tokenizer", "tokenize", err)
	}
	return tokens, nil
}

// resourceErr wraps a resource failure. Context expiry is passed through
// unchanged so callers can tell a timeout from a broken resource.
func resourceErr(resource, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return internalerr.Resource(resource, op, err)
}
