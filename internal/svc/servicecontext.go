package svc

import (
	"fmt"

	"deepchain/internal/config"
	"deepchain/pkg/confkit"
	llmpkg "deepchain/pkg/llm"
	reasonpkg "deepchain/pkg/reason"
	verifypkg "deepchain/pkg/verify"
)

const (
	reasonerPromptFile = "prompts/reasoner.tmpl"
	verifierPromptFile = "prompts/verifier.tmpl"
)

// ServiceContext wires the chain's stages from a loaded configuration. The
// Verifier stays nil when the cross-check stage has no credentials, which
// callers treat as "stage disabled".
type ServiceContext struct {
	Config *config.Config

	LLMClient llmpkg.LLMClient
	Reasoner  *reasonpkg.Reasoner
	Verifier  *verifypkg.Verifier
}

// NewServiceContext builds the stages from the hydrated config sections.
// Prompt templates are resolved relative to the main config's directory.
func NewServiceContext(cfg *config.Config) (*ServiceContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("svc: config is required")
	}
	if cfg.LLM.Value == nil {
		return nil, fmt.Errorf("svc: llm section is not configured in %s", cfg.MainPath())
	}

	client, err := llmpkg.NewClient(cfg.LLM.Value)
	if err != nil {
		return nil, fmt.Errorf("svc: initialise llm client: %w", err)
	}

	reasonerCfg := cfg.Reasoner.Value
	if reasonerCfg == nil {
		reasonerCfg = reasonpkg.DefaultConfig()
	}
	reasoner, err := reasonpkg.New(reasonerCfg, client, confkit.ResolvePath(cfg.BaseDir(), reasonerPromptFile))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("svc: initialise reasoner: %w", err)
	}

	svcCtx := &ServiceContext{
		Config:    cfg,
		LLMClient: client,
		Reasoner:  reasoner,
	}

	verifierCfg := cfg.Verifier.Value
	if verifierCfg != nil && verifierCfg.Enabled() {
		verifier, err := verifypkg.New(verifierCfg, confkit.ResolvePath(cfg.BaseDir(), verifierPromptFile))
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("svc: initialise verifier: %w", err)
		}
		svcCtx.Verifier = verifier
	}

	return svcCtx, nil
}

// VerifierEnabled reports whether the cross-check stage was configured.
func (s *ServiceContext) VerifierEnabled() bool {
	return s.Verifier != nil
}

// Close releases the gateway client.
func (s *ServiceContext) Close() error {
	if s.LLMClient != nil {
		return s.LLMClient.Close()
	}
	return nil
}
