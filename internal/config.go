package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultRootPath is used when neither --root-path nor YURI_ROOT_PATH is set
	DefaultRootPath = "yuri-data"
	// EnvPrefix is the prefix of every environment variable read at startup
	EnvPrefix = "YURI"
)

// Config is the runtime configuration. It is built once at startup and
// handed to every component that needs it.
type Config struct {
	RootPath string         `mapstructure:"root_path"`
	DataFile string         `mapstructure:"data_file"`
	ModelDir string         `mapstructure:"model_dir"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Classify ClassifyConfig `mapstructure:"classify"`
	NLP      NLPConfig      `mapstructure:"nlp"`
}

// SlackConfig holds chat platform settings
type SlackConfig struct {
	Token   string `mapstructure:"token"`
	Channel string `mapstructure:"channel"`
	APIURL  string `mapstructure:"api_url"`
}

// ClassifyConfig holds curation session settings
type ClassifyConfig struct {
	Direction        string   `mapstructure:"direction"`
	BatchSize        int      `mapstructure:"batch_size"`
	IgnoreUserIDs    []string `mapstructure:"ignore_user_ids"`
	Append           bool     `mapstructure:"append"`
	StartTimestamp   string   `mapstructure:"start_timestamp"`
	EndTimestamp     string   `mapstructure:"end_timestamp"`
	MaxFetchAttempts int      `mapstructure:"max_fetch_attempts"`
	MaxReviewPasses  int      `mapstructure:"max_review_passes"`
	Accessible       bool     `mapstructure:"accessible"`
}

// NLPConfig holds classifier backend settings
type NLPConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NewViper creates a viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal picks up its environment variable
	v.SetDefault("root_path", DefaultRootPath)
	v.SetDefault("data_file", "")
	v.SetDefault("model_dir", "")
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.channel", "")
	v.SetDefault("slack.api_url", "")
	v.SetDefault("classify.direction", "older")
	v.SetDefault("classify.batch_size", DefaultBatchSize)
	v.SetDefault("classify.append", true)
	v.SetDefault("classify.max_fetch_attempts", 5)
	v.SetDefault("classify.max_review_passes", 10)
	v.SetDefault("classify.ignore_user_ids", []string{})
	v.SetDefault("classify.start_timestamp", "")
	v.SetDefault("classify.end_timestamp", "")
	v.SetDefault("classify.accessible", false)
	v.SetDefault("nlp.endpoint", "http://localhost:8090")
	v.SetDefault("nlp.timeout", 10*time.Minute)
	return v
}

// LoadConfig reads the optional config file and unmarshals the settings
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Field: "config", Err: err}
		}
		LogDebug("Read config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "config", Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	if cfg.RootPath == "" {
		cfg.RootPath = DefaultRootPath
	}
	if cfg.DataFile == "" {
		cfg.DataFile = filepath.Join(cfg.RootPath, "slack_channel_data", "data.json")
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = filepath.Join(cfg.RootPath, "slack_channel_model")
	}
	cfg.Classify.IgnoreUserIDs = splitIDs(cfg.Classify.IgnoreUserIDs)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Classify.BatchSize <= 0 {
		return &ConfigError{Field: "batch_size", Err: fmt.Errorf("must be positive, got %d", c.Classify.BatchSize)}
	}
	if c.Classify.MaxFetchAttempts <= 0 {
		return &ConfigError{Field: "max_fetch_attempts", Err: fmt.Errorf("must be positive, got %d", c.Classify.MaxFetchAttempts)}
	}
	if c.Classify.MaxReviewPasses <= 0 {
		return &ConfigError{Field: "max_review_passes", Err: fmt.Errorf("must be positive, got %d", c.Classify.MaxReviewPasses)}
	}
	if _, err := ParseDirection(c.Classify.Direction); err != nil {
		return &ConfigError{Field: "direction", Err: err}
	}
	return nil
}

// ValidateSlack checks the settings needed before any network call
func (c *Config) ValidateSlack() error {
	if err := ValidateToken(c.Slack.Token); err != nil {
		return err
	}
	if strings.TrimPrefix(strings.TrimSpace(c.Slack.Channel), "#") == "" {
		return &ConfigError{Field: "slack.channel", Err: errors.New("no channel was provided")}
	}
	return nil
}

// Direction returns the parsed retrieval direction
func (c *Config) Direction() Direction {
	dir, _ := ParseDirection(c.Classify.Direction)
	return dir
}

// IgnoredUsers returns the ignored author ids as a set
func (c *Config) IgnoredUsers() map[string]struct{} {
	ids := make(map[string]struct{}, len(c.Classify.IgnoreUserIDs))
	for _, id := range c.Classify.IgnoreUserIDs {
		ids[id] = struct{}{}
	}
	return ids
}

// splitIDs flattens comma separated values and drops blanks
func splitIDs(values []string) []string {
	var ids []string
	for _, value := range values {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
