// Package config loads repair-bench settings from defaults, an optional config file,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName      = ".repair-bench"
	configType      = "yaml"
	envPrefix       = "REPAIR_BENCH"
	envKeySeparator = "_"
)

// Defaults.
const (
	DefaultToolCommand         = "java -jar sorald.jar"
	DefaultTimeout             = 15 * time.Minute
	DefaultParallelExperiments = 1
)

// DefaultRulesArgs are the tool arguments that print one rule key per line.
var DefaultRulesArgs = []string{"list-rules"}

// Config is the complete runtime configuration.
type Config struct {
	Tool                ToolConfig    `mapstructure:"tool"`
	Timeout             time.Duration `mapstructure:"timeout"`
	WorkDir             string        `mapstructure:"work_dir"`
	ParallelExperiments int           `mapstructure:"parallel_experiments"`
	GitHub              GitHubConfig  `mapstructure:"github"`
}

// ToolConfig describes how to run the external repair tool.
type ToolConfig struct {
	Command   string   `mapstructure:"command"`
	RulesArgs []string `mapstructure:"rules_args"`
}

// GitHubConfig holds GitHub API settings for commit resolution.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// Validate checks the configuration for values the benchmark cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tool.Command) == "" {
		return errors.New("tool.command must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ParallelExperiments < 1 {
		return fmt.Errorf("parallel_experiments must be at least 1, got %d", c.ParallelExperiments)
	}
	return nil
}

// Load reads the configuration. An explicit configPath must exist; otherwise
// .repair-bench.yaml is looked up in the working directory and $HOME, and a
// missing file is not an error. Flags in flags that were set on the command
// line override everything else; their names map "-" to "_".
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"timeout":              "timeout",
	"work-dir":             "work_dir",
	"parallel-experiments": "parallel_experiments",
	"tool-command":         "tool.command",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("tool.command", DefaultToolCommand)
	v.SetDefault("tool.rules_args", DefaultRulesArgs)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("work_dir", "")
	v.SetDefault("parallel_experiments", DefaultParallelExperiments)
	v.SetDefault("github.token", "")
}
