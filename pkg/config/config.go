// Package config loads interviewer settings from a YAML file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/evaluation"
	"github.com/snow-ghost/interviewer/interview"
	"github.com/snow-ghost/interviewer/kb"
	kbfs "github.com/snow-ghost/interviewer/kb/fs"
	"github.com/snow-ghost/interviewer/llm"
	"github.com/snow-ghost/interviewer/pkg/httpserver"
	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/pkg/profiles"
	"github.com/snow-ghost/interviewer/pkg/providers"
	"github.com/snow-ghost/interviewer/pkg/store"
	"github.com/snow-ghost/interviewer/pkg/tracing"
	"github.com/snow-ghost/interviewer/transport/telegram"
	"github.com/snow-ghost/interviewer/vectordb"
)

// EnvPrefix prefixes every bound environment variable.
const EnvPrefix = "INTERVIEWER"

type Config struct {
	Server     httpserver.Config `mapstructure:"server"`
	Log        logging.Config    `mapstructure:"log"`
	Tracing    tracing.Config    `mapstructure:"tracing"`
	Interview  interview.Config  `mapstructure:"interview"`
	Bank       BankConfig        `mapstructure:"bank"`
	Store      store.Config      `mapstructure:"store"`
	LLM        llm.Config        `mapstructure:"llm"`
	Embeddings embeddings.Config `mapstructure:"embeddings"`
	Relevance  RelevanceConfig   `mapstructure:"relevance"`
	Evaluation evaluation.Config `mapstructure:"evaluation"`
	Telegram   telegram.Config   `mapstructure:"telegram"`
	Profiles   ProfilesConfig    `mapstructure:"profiles"`
}

// BankConfig points at a question bank file. An empty path uses the built-in bank.
type BankConfig struct {
	Path string `mapstructure:"path"`
}

// RelevanceConfig turns on embedding-based question ranking.
type RelevanceConfig struct {
	Enabled     bool            `mapstructure:"enabled"`
	Concurrency int             `mapstructure:"concurrency"`
	Vectors     vectordb.Config `mapstructure:"vectors"`
}

type ProfilesConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default returns a configuration that runs fully offline.
func Default() Config {
	return Config{
		Server: httpserver.DefaultConfig(),
		Log:    logging.DefaultConfig(),
		Tracing: tracing.Config{
			ServiceName:    "interviewer",
			ServiceVersion: "dev",
			JaegerEndpoint: "http://localhost:14268/api/traces",
			Environment:    "development",
		},
		Interview:  interview.DefaultConfig(),
		Store:      store.DefaultConfig(),
		LLM:        llm.DefaultConfig(),
		Embeddings: embeddings.DefaultConfig(),
		Relevance: RelevanceConfig{
			Concurrency: 8,
			Vectors:     vectordb.DefaultConfig(),
		},
		Evaluation: evaluation.DefaultConfig(),
		Telegram:   telegram.DefaultConfig(),
		Profiles:   ProfilesConfig{Dir: "profiles"},
	}
}

// envBindings maps config keys to extra environment variable names checked
// after the prefixed one.
var envBindings = map[string][]string{
	"server.addr":             nil,
	"log.level":               nil,
	"log.format":              nil,
	"tracing.enabled":         nil,
	"tracing.jaeger_endpoint": nil,
	"bank.path":               nil,
	"store.driver":            nil,
	"store.dsn":               {"DATABASE_URL"},
	"llm.provider":            nil,
	"llm.model":               nil,
	"llm.api_key":             {"OPENAI_API_KEY", "GEMINI_API_KEY"},
	"llm.base_url":            nil,
	"embeddings.provider":     nil,
	"embeddings.api_key":      {"OPENAI_API_KEY"},
	"relevance.enabled":       nil,
	"telegram.token":          {"TELEGRAM_BOT_TOKEN"},
	"profiles.dir":            nil,
}

// Load reads path (optional) over Default, then applies environment
// overrides. Variables from envFiles are loaded first; with no envFiles a
// .env file in the working directory is used when present.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	replacer := strings.NewReplacer(".", "_")
	for key, extra := range envBindings {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))}, extra...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if !providers.Supported(c.LLM.Provider) {
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported (one of %s)",
			c.LLM.Provider, strings.Join(providers.GetSupportedProviders(), ", ")))
	}
	if err := c.Interview.Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("interview: %w", err))
	}
	if c.Interview.MaxUtteranceLength <= 0 {
		errs = append(errs, errors.New("interview.max_utterance_length must be positive"))
	}
	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if c.Relevance.Enabled {
		switch c.Embeddings.Provider {
		case "", "mock", "openai":
		default:
			errs = append(errs, fmt.Errorf("embeddings.provider %q is not supported", c.Embeddings.Provider))
		}
	}
	if c.Evaluation.Workers <= 0 || c.Evaluation.QueueSize <= 0 {
		errs = append(errs, errors.New("evaluation.workers and evaluation.queue_size must be positive"))
	}
	if si := c.Evaluation.SweepInterval; si < 0 || (si > 0 && si < time.Second) {
		errs = append(errs, errors.New("evaluation.sweep_interval must be zero or at least 1s"))
	}

	return errors.Join(errs...)
}

// LoadBank returns the configured question bank.
func (c Config) LoadBank() (*kb.Bank, error) {
	if c.Bank.Path == "" {
		return kb.Default(), nil
	}
	return kbfs.Load(c.Bank.Path)
}

// LoadProfiles returns the candidate profiles in Profiles.Dir, or none when
// the directory does not exist.
func (c Config) LoadProfiles() (map[string]core.CandidateProfile, error) {
	if c.Profiles.Dir == "" {
		return map[string]core.CandidateProfile{}, nil
	}
	if _, err := os.Stat(c.Profiles.Dir); errors.Is(err, os.ErrNotExist) {
		return map[string]core.CandidateProfile{}, nil
	}
	return profiles.LoadDir(c.Profiles.Dir)
}
