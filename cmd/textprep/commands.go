package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/cognicore/textprep/internal/docs"
	"github.com/cognicore/textprep/internal/logging"
	"github.com/cognicore/textprep/internal/shell"
	"github.com/cognicore/textprep/pkg/textprep/config"
	"github.com/cognicore/textprep/pkg/textprep/lemma"
	"github.com/cognicore/textprep/pkg/textprep/pipeline"
	"github.com/cognicore/textprep/pkg/textprep/spell"
	"github.com/cognicore/textprep/pkg/textprep/stopwords"
	"github.com/cognicore/textprep/pkg/textprep/store"
	"github.com/cognicore/textprep/pkg/textprep/store/postgres"
	"github.com/cognicore/textprep/pkg/textprep/store/sqlite"
)

// withPipeline loads config, logger and pipeline for an action.
func withPipeline(c *cli.Context, ui UI, fn func(p *pipeline.Pipeline, cfg *config.Config, log logging.Logger) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, ui)
	if err != nil {
		return err
	}
	defer log.Close()

	p, err := config.NewPipeline(c.Context, cfg, log)
	if err != nil {
		return err
	}
	return fn(p, cfg, log)
}

func runCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "preprocess the given texts, or stdin one line at a time",
		ArgsUsage: "[TEXT...]",
		Flags:     spellFlags(),
		Action: func(c *cli.Context) error {
			return withPipeline(c, ui, func(p *pipeline.Pipeline, _ *config.Config, _ logging.Logger) error {
				texts := c.Args().Slice()
				if len(texts) == 0 {
					items, err := docs.ReadAllLines(ui.In)
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
					texts = docs.Texts(items)
				}

				for _, text := range texts {
					out, err := p.Preprocess(c.Context, text)
					if err != nil {
						return err
					}
					fmt.Fprintln(ui.Out, out)
				}
				return nil
			})
		},
	}
}

func batchCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "preprocess a file of documents concurrently",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input file", Required: true},
			&cli.StringFlag{Name: "format", Usage: "jsonl, lines or html", Value: string(docs.FormatJSONL)},
			&cli.StringFlag{Name: "out", Usage: "output JSONL file (default stdout)"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent workers (default from config, then GOMAXPROCS)"},
			&cli.BoolFlag{Name: "progress", Usage: "show a progress bar on stderr"},
		}, spellFlags()...),
		Action: func(c *cli.Context) error {
			format, err := docs.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}

			return withPipeline(c, ui, func(p *pipeline.Pipeline, cfg *config.Config, log logging.Logger) error {
				items, err := docs.Load(c.String("in"), format, log)
				if err != nil {
					return err
				}

				workers := cfg.Pipeline.Workers
				if c.IsSet("workers") {
					workers = c.Int("workers")
				}

				outputs, err := processWithProgress(c.Context, p, docs.Texts(items), workers, c.Bool("progress"), ui)
				if err != nil {
					return err
				}

				results := make([]docs.Result, len(items))
				for i, it := range items {
					results[i] = docs.Result{ID: it.ID, Output: outputs[i]}
				}

				w := ui.Out
				if path := c.String("out"); path != "" {
					f, err := os.Create(path)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := docs.WriteJSONL(w, results); err != nil {
					return err
				}

				log.Info("batch complete", "in", c.String("in"), "documents", len(results))
				return nil
			})
		},
	}
}

// processWithProgress runs the batch in chunks so a progress bar can
// advance between them.
func processWithProgress(ctx context.Context, p *pipeline.Pipeline, texts []string, workers int, progress bool, ui UI) ([]string, error) {
	if !progress || len(texts) == 0 {
		return p.ProcessBatch(ctx, texts, workers)
	}

	prog := uiprogress.New()
	prog.SetOut(ui.Err)
	prog.Start()
	defer prog.Stop()

	bar := prog.AddBar(len(texts))
	bar.AppendCompleted()
	bar.PrependElapsed()

	chunk := 256
	if workers > 0 && workers*16 > chunk {
		chunk = workers * 16
	}

	out := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += chunk {
		end := min(start+chunk, len(texts))
		part, err := p.ProcessBatch(ctx, texts[start:end], workers)
		if err != nil {
			return nil, fmt.Errorf("documents %d-%d: %w", start, end-1, err)
		}
		out = append(out, part...)
		if err := bar.Set(end); err != nil {
			return nil, fmt.Errorf("progress: %w", err)
		}
	}
	return out, nil
}

func importCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "load resource files into the resource store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite resource store"},
			&cli.StringFlag{Name: "dsn", Usage: "PostgreSQL resource store DSN"},
			&cli.StringFlag{Name: "lexicon", Usage: "lemmatizer lexicon YAML"},
			&cli.StringFlag{Name: "stoplist", Usage: "stoplist YAML (terms: [...])"},
			&cli.StringFlag{Name: "spell-dict", Usage: "frequency dictionary file"},
			&cli.BoolFlag{Name: "defaults", Usage: "import the embedded lexicon and stopwords"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			st, target, err := openImportStore(c)
			if err != nil {
				return err
			}
			defer st.Close()

			if c.Bool("defaults") {
				if err := store.ImportLexicon(ctx, st, lemma.Default()); err != nil {
					return err
				}
				if err := st.ReplaceStopwords(ctx, stopwords.English().All()); err != nil {
					return err
				}
			}
			if path := c.String("lexicon"); path != "" {
				lex, err := lemma.LoadFromYAML(path)
				if err != nil {
					return err
				}
				if err := store.ImportLexicon(ctx, st, lex); err != nil {
					return err
				}
			}
			if path := c.String("stoplist"); path != "" {
				set, err := stopwords.LoadYAML(path)
				if err != nil {
					return err
				}
				if err := st.ReplaceStopwords(ctx, set.All()); err != nil {
					return err
				}
			}
			if path := c.String("spell-dict"); path != "" {
				dict, err := spell.LoadFrequencyFile(path)
				if err != nil {
					return err
				}
				if err := store.ImportSpellDictionary(ctx, st, dict); err != nil {
					return err
				}
			}

			stats, err := st.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(ui.Out, "%s: %d lemma words, %d exceptions, %d stopwords, %d spelling terms\n",
				target, stats.LemmaWords, stats.LemmaExceptions, stats.Stopwords, stats.SpellTerms)
			return nil
		},
	}
}

// openImportStore opens the store named by exactly one of --db and --dsn.
func openImportStore(c *cli.Context) (store.Store, string, error) {
	db, dsn := c.String("db"), c.String("dsn")
	switch {
	case db != "" && dsn != "":
		return nil, "", fmt.Errorf("--db and --dsn are mutually exclusive")
	case db != "":
		st, err := sqlite.OpenSQLite(c.Context, db)
		return st, db, err
	case dsn != "":
		st, err := postgres.Open(c.Context, postgres.Config{DSN: dsn})
		return st, "postgres", err
	}
	return nil, "", fmt.Errorf("one of --db or --dsn is required")
}

func stagesCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "stages",
		Usage: "print the active pipeline stages",
		Flags: spellFlags(),
		Action: func(c *cli.Context) error {
			return withPipeline(c, ui, func(p *pipeline.Pipeline, _ *config.Config, _ logging.Logger) error {
				names := make([]string, 0, len(p.Stages()))
				for _, st := range p.Stages() {
					names = append(names, string(st))
				}
				fmt.Fprintln(ui.Out, strings.Join(names, " -> "))
				return nil
			})
		},
	}
}

func shellCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "preprocess lines typed at an interactive prompt",
		Flags: spellFlags(),
		Action: func(c *cli.Context) error {
			return withPipeline(c, ui, func(p *pipeline.Pipeline, _ *config.Config, _ logging.Logger) error {
				return shell.NewHandler(p, ui.Out).Run(c.Context)
			})
		},
	}
}
