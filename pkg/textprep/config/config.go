package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cognicore/textprep/internal/logging"
	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/pipeline"
)

// DefaultPath is read when TEXTPREP_CONFIG is unset.
const DefaultPath = "./textprep.yaml"

// Config is the root configuration.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Resources ResourcesConfig `yaml:"resources"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
}

// PipelineConfig holds pipeline behaviour.
type PipelineConfig struct {
	EnableSpellCorrection bool          `yaml:"enable_spell_correction" env:"TEXTPREP_SPELL"             env-default:"false"`
	MaxEditDistance       int           `yaml:"max_edit_distance"       env:"TEXTPREP_MAX_EDIT_DISTANCE" env-default:"2"`
	Timeout               time.Duration `yaml:"timeout"                 env:"TEXTPREP_TIMEOUT"           env-default:"0s"`
	Workers               int           `yaml:"workers"                 env:"TEXTPREP_WORKERS"           env-default:"0"`
	ComposeUnicode        bool          `yaml:"compose_unicode"         env:"TEXTPREP_COMPOSE_UNICODE"   env-default:"false"`
}

// ResourcesConfig points at resource files. Empty paths fall back to the
// store, then to the embedded defaults.
type ResourcesConfig struct {
	Lexicon           string `yaml:"lexicon"             env:"TEXTPREP_LEXICON"`
	Tagger            string `yaml:"tagger"              env:"TEXTPREP_TAGGER"`
	Stoplist          string `yaml:"stoplist"            env:"TEXTPREP_STOPLIST"`
	Stopwords         string `yaml:"stopwords"           env:"TEXTPREP_STOPWORDS"           env-default:"nltk"`
	SpellDict         string `yaml:"spell_dict"          env:"TEXTPREP_SPELL_DICT"`
	SpellPrefixLength int    `yaml:"spell_prefix_length" env:"TEXTPREP_SPELL_PREFIX_LENGTH" env-default:"7"`
}

// StoreConfig locates the resource store: a SQLite file or a PostgreSQL
// DSN, at most one of them.
type StoreConfig struct {
	Path     string `yaml:"path"      env:"TEXTPREP_DB"`
	DSN      string `yaml:"dsn"       env:"TEXTPREP_DATABASE_DSN"`
	MaxConns int32  `yaml:"max_conns" env:"TEXTPREP_DATABASE_MAX_CONNS" env-default:"4"`
}

// HasStore reports whether a resource store is configured.
func (s StoreConfig) HasStore() bool {
	return s.Path != "" || s.DSN != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"TEXTPREP_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"TEXTPREP_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file path comes from TEXTPREP_CONFIG (fallback DefaultPath). A
// missing default file is not an error; a missing explicit one is.
func Load() (*Config, error) {
	path := os.Getenv("TEXTPREP_CONFIG")
	if path == "" {
		return loadFrom(DefaultPath, false)
	}
	return loadFrom(path, true)
}

// LoadFile reads configuration from path, which must exist.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path, true)
}

func loadFrom(path string, explicit bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	return &Config{
		Pipeline:  PipelineConfig{MaxEditDistance: 2},
		Resources: ResourcesConfig{Stopwords: "nltk", SpellPrefixLength: 7},
		Store:     StoreConfig{MaxConns: 4},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the loaded values. Load calls it automatically.
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.MaxEditDistance < 0 {
		return fmt.Errorf("pipeline.max_edit_distance must be >= 0 (got %d): %w", p.MaxEditDistance, internalerr.ErrInvalidConfig)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("pipeline.timeout must be >= 0 (got %v): %w", p.Timeout, internalerr.ErrInvalidConfig)
	}
	if p.Workers < 0 {
		return fmt.Errorf("pipeline.workers must be >= 0 (got %d): %w", p.Workers, internalerr.ErrInvalidConfig)
	}
	if p.EnableSpellCorrection && c.Resources.SpellDict == "" && !c.Store.HasStore() {
		return fmt.Errorf("pipeline.enable_spell_correction needs resources.spell_dict or a store: %w", internalerr.ErrInvalidConfig)
	}
	if c.Store.Path != "" && c.Store.DSN != "" {
		return fmt.Errorf("store.path and store.dsn are mutually exclusive: %w", internalerr.ErrInvalidConfig)
	}
	if c.Store.MaxConns < 0 {
		return fmt.Errorf("store.max_conns must be >= 0 (got %d): %w", c.Store.MaxConns, internalerr.ErrInvalidConfig)
	}

	switch strings.ToLower(c.Resources.Stopwords) {
	case "nltk", "snowball":
	default:
		return fmt.Errorf("resources.stopwords must be nltk or snowball (got %q): %w", c.Resources.Stopwords, internalerr.ErrInvalidConfig)
	}
	if c.Resources.SpellPrefixLength < 1 {
		return fmt.Errorf("resources.spell_prefix_length must be >= 1 (got %d): %w", c.Resources.SpellPrefixLength, internalerr.ErrInvalidConfig)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q): %w", c.Log.Format, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Loader returns a resource loader for this configuration.
func (c *Config) Loader() *Loader {
	return &Loader{
		LexiconPath:       c.Resources.Lexicon,
		TaggerPath:        c.Resources.Tagger,
		StoplistPath:      c.Resources.Stoplist,
		StopwordSource:    c.Resources.Stopwords,
		SpellDictPath:     c.Resources.SpellDict,
		StorePath:         c.Store.Path,
		StoreDSN:          c.Store.DSN,
		StoreMaxConns:     c.Store.MaxConns,
		MaxEditDistance:   c.Pipeline.MaxEditDistance,
		SpellPrefixLength: c.Resources.SpellPrefixLength,
		LoadSpelling:      c.Pipeline.EnableSpellCorrection,
	}
}

// PipelineOptions converts the pipeline section into pipeline options.
func (c *Config) PipelineOptions(log logging.Logger) []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithSpellCorrection(c.Pipeline.EnableSpellCorrection),
		pipeline.WithMaxEditDistance(c.Pipeline.MaxEditDistance),
		pipeline.WithTimeout(c.Pipeline.Timeout),
		pipeline.WithUnicodeComposition(c.Pipeline.ComposeUnicode),
		pipeline.WithLogger(log),
	}
}

// LoggingConfig converts the log section into a logging config.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
