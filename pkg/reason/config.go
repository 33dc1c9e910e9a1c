package reason

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"deepchain/pkg/confkit"
)

const (
	defaultRequestTimeout = 120 * time.Second
)

// Config controls runtime behaviour for the reasoner stage.
type Config struct {
	// Model is the gateway model alias; empty uses the client default.
	Model string `yaml:"model"`
	// Structured requests a JSON-schema response instead of free text.
	// Free-text parsing still backstops gateways that ignore the format.
	Structured     bool          `yaml:"structured"`
	RequestTimeout time.Duration `yaml:"-"`
	Temperature    *float64      `yaml:"temperature,omitempty"`
	MaxTokens      *int          `yaml:"max_tokens,omitempty"`

	// Parser thresholds; zero values fall back to the parser defaults.
	MinReasoningLen int `yaml:"min_reasoning_len"`
	MinAnswerLen    int `yaml:"min_answer_len"`
	// ForbiddenAnswerText overrides the substring that disqualifies an
	// answer; nil keeps the parser default, an empty string disables it.
	ForbiddenAnswerText *string `yaml:"forbidden_answer_text,omitempty"`

	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reasoner config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read reasoner config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal reasoner config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a Config with package defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	if c.RequestTimeoutRaw == "" {
		c.RequestTimeout = defaultRequestTimeout
	} else {
		d, err := time.ParseDuration(os.ExpandEnv(c.RequestTimeoutRaw))
		if err != nil {
			return fmt.Errorf("reasoner config: invalid request_timeout %q: %w", c.RequestTimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("reasoner config: request_timeout must be positive, got %s", d)
		}
		c.RequestTimeout = d
	}
	if c.MinReasoningLen < 0 {
		return fmt.Errorf("reasoner config: min_reasoning_len cannot be negative")
	}
	if c.MinAnswerLen < 0 {
		return fmt.Errorf("reasoner config: min_answer_len cannot be negative")
	}
	return nil
}
