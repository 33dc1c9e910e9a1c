package llm

import "strings"

const modelSeparator = "/"

// ResolveModelID turns a model alias plus its ModelConfig into the
// provider-qualified identifier the gateway expects. An alias or model name
// that already carries a provider prefix is passed through untouched.
func ResolveModelID(alias string, cfg ModelConfig) string {
	alias = strings.TrimSpace(alias)
	if strings.Contains(alias, modelSeparator) {
		return alias
	}

	name := strings.TrimSpace(cfg.ModelName)
	if name == "" {
		name = alias
	}
	if strings.Contains(name, modelSeparator) {
		return name
	}

	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" {
		return name
	}
	return provider + modelSeparator + name
}

// ParseModelID splits a qualified id into provider and model name. Unqualified
// ids come back with an empty provider.
func ParseModelID(model string) (provider, name string) {
	parts := strings.SplitN(model, modelSeparator, 2)
	if len(parts) != 2 {
		return "", model
	}
	return parts[0], parts[1]
}
