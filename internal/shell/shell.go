// Package shell is an interactive prompt that preprocesses each line typed.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/cognicore/textprep/pkg/textprep/pipeline"
)

var commands = []prompt.Suggest{
	{Text: ":stages", Description: "list the active stages"},
	{Text: ":trace", Description: "toggle per-stage output"},
	{Text: "quit", Description: "leave the shell"},
}

// Handler runs the shell over a pipeline.
type Handler struct {
	Pipeline *pipeline.Pipeline
	Out      io.Writer
	trace    bool
}

// NewHandler creates a shell handler.
func NewHandler(p *pipeline.Pipeline, out io.Writer) *Handler {
	return &Handler{Pipeline: p, Out: out}
}

// Run reads lines until "quit", "exit" or the context ends.
func (h *Handler) Run(ctx context.Context) error {
	fmt.Fprintln(h.Out, "type text to preprocess, :stages, :trace, quit")

	history := []string{}
	for ctx.Err() == nil {
		in := prompt.Input("textprep> ", h.completer,
			prompt.OptionTitle("textprep shell"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
		)

		if h.Exec(ctx, in) {
			return nil
		}
		if strings.TrimSpace(in) != "" {
			history = append(history, in)
		}
	}
	return ctx.Err()
}

// Exec handles one input line and reports whether the shell should exit.
// Pipeline errors are printed, not returned, so the session continues.
func (h *Handler) Exec(ctx context.Context, in string) bool {
	line := strings.TrimSpace(in)
	switch line {
	case "":
		return false
	case "quit", "exit":
		return true
	case ":stages":
		for _, st := range h.Pipeline.Stages() {
			fmt.Fprintln(h.Out, st)
		}
		return false
	case ":trace":
		h.trace = !h.trace
		fmt.Fprintf(h.Out, "trace %t\n", h.trace)
		return false
	}

	if !h.trace {
		out, err := h.Pipeline.Preprocess(ctx, in)
		if err != nil {
			fmt.Fprintf(h.Out, "error: %v\n", err)
			return false
		}
		fmt.Fprintln(h.Out, out)
		return false
	}

	text := in
	for _, st := range h.Pipeline.Stages() {
		var err error
		text, err = h.Pipeline.RunStage(ctx, st, text)
		if err != nil {
			fmt.Fprintf(h.Out, "error: %s: %v\n", st, err)
			return false
		}
		fmt.Fprintf(h.Out, "%-16s %s\n", st, text)
	}
	return false
}

func (h *Handler) completer(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" || (word[0] != ':' && !strings.HasPrefix("quit", word)) {
		return nil
	}
	return prompt.FilterHasPrefix(commands, word, true)
}
