package verify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"deepchain/pkg/confkit"
)

const (
	defaultModel          = "claude-3-5-sonnet-20241022"
	defaultMaxTokens      = 8000
	defaultRequestTimeout = 30 * time.Second

	envAPIKey  = "ANTHROPIC_API_KEY"
	envModel   = "ANTHROPIC_MODEL"
	envBaseURL = "ANTHROPIC_BASE_URL"
)

// Config controls the cross-check stage.
type Config struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	MaxTokens      int64         `yaml:"max_tokens"`
	RequestTimeout time.Duration `yaml:"-"`

	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open verifier config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read verifier config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal verifier config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig builds a Config from environment variables alone.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.normalize()
	return cfg
}

// Enabled reports whether the cross-check stage has credentials to run.
func (c *Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c *Config) normalize() error {
	c.APIKey = expandAndOverride(c.APIKey, envAPIKey)
	c.Model = expandAndOverride(c.Model, envModel)
	c.BaseURL = expandAndOverride(c.BaseURL, envBaseURL)

	if strings.TrimSpace(c.Model) == "" {
		c.Model = defaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}

	if strings.TrimSpace(c.RequestTimeoutRaw) == "" {
		c.RequestTimeout = defaultRequestTimeout
		return nil
	}
	d, err := time.ParseDuration(os.ExpandEnv(c.RequestTimeoutRaw))
	if err != nil {
		return fmt.Errorf("verifier config: invalid request_timeout %q: %w", c.RequestTimeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("verifier config: request_timeout must be positive, got %s", d)
	}
	c.RequestTimeout = d
	return nil
}

func expandAndOverride(current, envKey string) string {
	current = os.ExpandEnv(current)
	if envVal := os.Getenv(envKey); envVal != "" {
		return envVal
	}
	return current
}
