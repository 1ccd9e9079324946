package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/cognicore/textprep/internal/logging"
	"github.com/cognicore/textprep/pkg/textprep/config"
)

// UI contains the input and output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(ui).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(ui.Err, "textprep: %v\n", err)
		os.Exit(1)
	}
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "textprep",
		Usage:     "normalize English text: strip punctuation, spell numbers, drop stopwords, lemmatize",
		Reader:    ui.In,
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{"TEXTPREP_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite resource store (overrides config)",
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "PostgreSQL resource store DSN (overrides config)",
			},
		},
		Commands: []*cli.Command{
			runCommand(ui),
			batchCommand(ui),
			importCommand(ui),
			stagesCommand(ui),
			shellCommand(ui),
		},
	}
}

// spellFlags are shared by the commands that build a pipeline.
func spellFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "spell", Usage: "enable spelling correction"},
		&cli.StringFlag{Name: "spell-dict", Usage: "frequency dictionary file (term count per line)"},
	}
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if db := c.String("db"); db != "" {
		cfg.Store.Path, cfg.Store.DSN = db, ""
	}
	if dsn := c.String("dsn"); dsn != "" {
		cfg.Store.Path, cfg.Store.DSN = "", dsn
	}
	if c.IsSet("spell-dict") {
		cfg.Resources.SpellDict = c.String("spell-dict")
	}
	if c.IsSet("spell") {
		cfg.Pipeline.EnableSpellCorrection = c.Bool("spell")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, ui UI) (logging.Logger, error) {
	lc := cfg.LoggingConfig()
	lc.Output = ui.Err
	return logging.New(lc)
}
