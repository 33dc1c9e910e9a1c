// Package verify runs the second stage of the chain: it hands the original
// question plus the first model's reasoning to an independent model and
// collects its answer for comparison.
package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"deepchain/pkg/llm"
)

// Usage summarises token accounting for one verification call.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Verification holds the second model's answer to the cross-check prompt.
type Verification struct {
	Answer string
	Prompt string
	Model  string
	Usage  Usage
}

// Verifier asks an Anthropic model for a second opinion.
type Verifier struct {
	cfg    *Config
	client anthropic.Client
	tpl    *llm.PromptTemplate
	logger llm.Logger
}

// Option configures optional verifier behaviour.
type Option func(*verifierOptions)

type verifierOptions struct {
	httpClient *http.Client
	logger     llm.Logger
}

// WithHTTPClient replaces the default HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(opts *verifierOptions) {
		opts.httpClient = client
	}
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger llm.Logger) Option {
	return func(opts *verifierOptions) {
		opts.logger = logger
	}
}

// New constructs a Verifier. templatePath points at the cross-check prompt
// template provided by the caller.
func New(cfg *Config, templatePath string, opts ...Option) (*Verifier, error) {
	if cfg == nil {
		return nil, errors.New("verify: config is required")
	}
	if !cfg.Enabled() {
		return nil, errors.New("verify: api key is required")
	}

	optState := verifierOptions{}
	for _, opt := range opts {
		opt(&optState)
	}

	tpl, err := llm.NewPromptTemplate(templatePath, nil)
	if err != nil {
		return nil, err
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if optState.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(optState.httpClient))
	}

	logger := optState.logger
	if logger == nil {
		logger = llm.NewLogger("info")
	}

	return &Verifier{
		cfg:    cfg,
		client: anthropic.NewClient(clientOpts...),
		tpl:    tpl,
		logger: logger,
	}, nil
}

// Verify sends the question and the first stage's reasoning to the second
// model and returns its answer.
func (v *Verifier) Verify(ctx context.Context, question, reasoning string) (*Verification, error) {
	prompt, err := v.tpl.Render(map[string]any{
		"Question":  question,
		"Reasoning": reasoning,
	})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, v.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	v.logger.Info(ctx, "verify request", llm.Fields{
		"model": v.cfg.Model,
	})

	message, err := v.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(v.cfg.Model),
		MaxTokens: v.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		v.logger.Error(ctx, fmt.Errorf("verify call failed: %w", err), llm.Fields{
			"model": v.cfg.Model,
		})
		return nil, fmt.Errorf("verify: %w", err)
	}

	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			v.logger.Info(ctx, "verify success", llm.Fields{
				"model":         v.cfg.Model,
				"duration_ms":   time.Since(start).Milliseconds(),
				"input_tokens":  usage.InputTokens,
				"output_tokens": usage.OutputTokens,
			})
			return &Verification{
				Answer: block.Text,
				Prompt: prompt,
				Model:  v.cfg.Model,
				Usage:  usage,
			}, nil
		}
	}
	return nil, errors.New("verify: no text content in response")
}
