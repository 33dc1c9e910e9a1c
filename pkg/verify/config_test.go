package verify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	yaml := `
api_key: "sk-ant-test"
model: "claude-3-opus-20240229"
max_tokens: 2048
request_timeout: "45s"
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	require.Equal(t, "sk-ant-test", cfg.APIKey)
	require.Equal(t, "claude-3-opus-20240229", cfg.Model)
	require.Equal(t, int64(2048), cfg.MaxTokens)
	require.Equal(t, 45*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.Enabled())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader("api_key: k\n"))
	require.NoError(t, err)
	require.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model)
	require.Equal(t, int64(8000), cfg.MaxTokens)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022")

	cfg, err := LoadConfigFromReader(strings.NewReader("api_key: file-key\nmodel: file-model\n"))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "claude-3-5-haiku-20241022", cfg.Model)
}

func TestLoadConfigExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("VERIFY_KEY", "expanded-key")

	cfg, err := LoadConfigFromReader(strings.NewReader("api_key: ${VERIFY_KEY}\n"))
	require.NoError(t, err)
	require.Equal(t, "expanded-key", cfg.APIKey)
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("api_key: k\nrequest_timeout: nope\n"))
	require.Error(t, err)

	_, err = LoadConfigFromReader(strings.NewReader("api_key: k\nrequest_timeout: -5s\n"))
	require.Error(t, err)
}

func TestDisabledWithoutKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "  "
	require.False(t, cfg.Enabled())
}
