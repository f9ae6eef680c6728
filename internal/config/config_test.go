package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultToolCommand, cfg.Tool.Command)
	assert.Equal(t, DefaultRulesArgs, cfg.Tool.RulesArgs)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultParallelExperiments, cfg.ParallelExperiments)
	assert.Empty(t, cfg.WorkDir)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tool:
  command: ./sorald.sh
  rules_args: [rules, --plain]
timeout: 2m
parallel_experiments: 3
`), 0o644))
	t.Setenv("REPAIR_BENCH_WORK_DIR", "/scratch")
	t.Setenv("GITHUB_TOKEN", "secret")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("parallel-experiments", DefaultParallelExperiments, "")
	flags.Duration("timeout", DefaultTimeout, "")
	require.NoError(t, flags.Parse([]string{"--parallel-experiments", "8"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "./sorald.sh", cfg.Tool.Command)
	assert.Equal(t, []string{"rules", "--plain"}, cfg.Tool.RulesArgs)
	assert.Equal(t, 2*time.Minute, cfg.Timeout, "unset flag must not override the file")
	assert.Equal(t, 8, cfg.ParallelExperiments)
	assert.Equal(t, "/scratch", cfg.WorkDir)
	assert.Equal(t, "secret", cfg.GitHub.Token)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Tool: ToolConfig{Command: "tool"}, Timeout: time.Second, ParallelExperiments: 1}
	assert.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty command", mutate: func(c *Config) { c.Tool.Command = " " }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "no workers", mutate: func(c *Config) { c.ParallelExperiments = 0 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
