package lemma

import (
	"errors"
	"testing"

	"github.com/cognicore/textprep/pkg/textprep/internalerr"
)

func TestCategoryForTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Category
	}{
		{"NN", Noun},
		{"NNS", Noun},
		{"NNP", Noun},
		{"VB", Verb},
		{"VBD", Verb},
		{"vbg", Verb},
		{"JJ", Adjective},
		{"JJR", Adjective},
		{"RB", Adverb},
		{"RBS", Adverb},
		{"PRP", Noun},
		{"DT", Noun},
		{"CD", Noun},
		{",", Noun},
		{"", Noun},
	}

	for _, tt := range tests {
		if got := CategoryForTag(tt.tag); got != tt.want {
			t.Errorf("CategoryForTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), got, c)
		}
	}

	if c, _ := ParseCategory("J"); c != Adjective {
		t.Errorf("ParseCategory(\"J\") = %v, want adj", c)
	}
	if _, err := ParseCategory("pronoun"); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCategoryString(t *testing.T) {
	if Noun.String() != "noun" || Adverb.String() != "adv" {
		t.Error("unexpected category names")
	}
	if Category('x').Valid() {
		t.Error("'x' should not be a valid category")
	}
}
