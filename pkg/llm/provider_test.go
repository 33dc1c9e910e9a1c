package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveModelID(t *testing.T) {
	cases := []struct {
		name  string
		alias string
		cfg   ModelConfig
		want  string
	}{
		{name: "qualified alias wins", alias: "deepseek/deepseek-r1", cfg: ModelConfig{}, want: "deepseek/deepseek-r1"},
		{name: "provider plus name", alias: "reasoner", cfg: ModelConfig{Provider: "deepseek", ModelName: "deepseek-r1"}, want: "deepseek/deepseek-r1"},
		{name: "qualified name ignores provider", alias: "reasoner", cfg: ModelConfig{Provider: "x", ModelName: "deepseek/deepseek-r1"}, want: "deepseek/deepseek-r1"},
		{name: "bare alias without config", alias: "gpt-4o", cfg: ModelConfig{}, want: "gpt-4o"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveModelID(tc.alias, tc.cfg))
		})
	}
}

func TestParseModelID(t *testing.T) {
	provider, name := ParseModelID("deepseek/deepseek-r1")
	require.Equal(t, "deepseek", provider)
	require.Equal(t, "deepseek-r1", name)

	provider, name = ParseModelID("bare")
	require.Empty(t, provider)
	require.Equal(t, "bare", name)
}
