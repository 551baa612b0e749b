package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/interviewer/kb"
	kbfs "github.com/snow-ghost/interviewer/kb/fs"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 4, cfg.Interview.ProjectExchanges)
	assert.Equal(t, 5, cfg.Interview.FactualQuestions)
	assert.False(t, cfg.Relevance.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "interviewer.yaml", `
server:
  addr: ":9090"
  write_timeout: 90s
interview:
  project_exchanges: 2
  factual_questions: 3
store:
  driver: sqlite3
  dsn: file.db
llm:
  provider: openai
  model: gpt-4o
  persona:
    name: Sam
evaluation:
  workers: 3
`)
	t.Setenv("INTERVIEWER_LOG_LEVEL", "debug")
	t.Setenv("INTERVIEWER_LLM_API_KEY", "sk-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("INTERVIEWER_RELEVANCE_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2, cfg.Interview.ProjectExchanges)
	assert.Equal(t, 3, cfg.Interview.FactualQuestions)
	assert.Equal(t, 4000, cfg.Interview.MaxUtteranceLength)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "Sam", cfg.LLM.Persona.Name)
	assert.Equal(t, 3, cfg.Evaluation.Workers)
	assert.Equal(t, 64, cfg.Evaluation.QueueSize)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.True(t, cfg.Relevance.Enabled)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "test.env", "INTERVIEWER_PROFILES_DIR=/srv/profiles\n")
	t.Cleanup(func() { os.Unsetenv("INTERVIEWER_PROFILES_DIR") })

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "/srv/profiles", cfg.Profiles.Dir)

	_, err = Load("", filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "llm:\n  provider: claude-on-a-toaster\n")
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"zero thresholds", func(c *Config) { c.Interview.FactualQuestions = 0 }, "interview"},
		{"utterance limit", func(c *Config) { c.Interview.MaxUtteranceLength = 0 }, "max_utterance_length"},
		{"sqlite without dsn", func(c *Config) { c.Store.Driver = "sqlite3" }, "dsn"},
		{"unknown embeddings", func(c *Config) {
			c.Relevance.Enabled = true
			c.Embeddings.Provider = "cohere"
		}, "embeddings.provider"},
		{"no workers", func(c *Config) { c.Evaluation.Workers = 0 }, "evaluation.workers"},
		{"tiny sweep", func(c *Config) { c.Evaluation.SweepInterval = time.Millisecond }, "sweep_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	require.NoError(t, Default().Validate())
}

func TestLoadBankAndProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	bank, err := cfg.LoadBank()
	require.NoError(t, err)
	assert.Equal(t, kb.Default().Len(), bank.Len())

	data, err := kbfs.MarshalYAML(kb.MustNew([]kb.Topic{{Name: "Only", Questions: []string{"Why?"}}}))
	require.NoError(t, err)
	cfg.Bank.Path = writeFile(t, dir, "bank.yaml", string(data))
	bank, err = cfg.LoadBank()
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, bank.Topics())

	cfg.Profiles.Dir = filepath.Join(dir, "nowhere")
	set, err := cfg.LoadProfiles()
	require.NoError(t, err)
	assert.Empty(t, set)

	profilesDir := filepath.Join(dir, "profiles")
	require.NoError(t, os.Mkdir(profilesDir, 0o755))
	writeFile(t, profilesDir, "ada.yaml", "name: Ada Lovelace\n")
	cfg.Profiles.Dir = profilesDir
	set, err = cfg.LoadProfiles()
	require.NoError(t, err)
	assert.Contains(t, set, "ada")
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "interviewer.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.True(t, cfg.Relevance.Enabled)
	assert.Equal(t, time.Minute, cfg.Evaluation.SweepInterval)
	assert.Equal(t, 60, cfg.LLM.Capabilities["grade_answer"].RequestsPerMinute)
}
