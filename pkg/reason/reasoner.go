// Package reason runs the first stage of the chain: it asks the gateway
// model for a two-part reply and extracts a reasoning trace plus a final
// answer from whatever came back.
package reason

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deepchain/pkg/llm"
	"deepchain/pkg/parse"
)

// Sentinels preserved in a degraded Outcome when the gateway call itself
// fails. Downstream validation treats answers carrying this text as
// disqualified, so a failed call can never masquerade as a real result.
const (
	ErrorAnswerText    = "[Error getting answer]"
	ErrorReasoningText = "[Error getting reasoning]"
)

// Outcome bundles everything one reasoner invocation produced.
type Outcome struct {
	Question string
	Model    string
	// Raw is the unprocessed assistant text the extraction ran against.
	Raw    string
	Result parse.Result
	Usage  llm.Usage
}

// Reasoner wires the gateway client, the prompt template and the response
// parser into one callable stage.
type Reasoner struct {
	cfg    *Config
	llm    llm.LLMClient
	parser *parse.Parser
	tpl    *llm.PromptTemplate
}

// replyContract is the JSON shape requested in structured mode.
type replyContract struct {
	Reasoning string `json:"reasoning" description:"step-by-step deliberation leading to the answer"`
	Answer    string `json:"answer" description:"the final user-facing answer"`
}

// New constructs a Reasoner. templatePath points at the reasoner prompt
// template provided by the caller.
func New(cfg *Config, client llm.LLMClient, templatePath string) (*Reasoner, error) {
	if cfg == nil {
		return nil, errors.New("reason: config is required")
	}
	if client == nil {
		return nil, errors.New("reason: llm client is required")
	}
	tpl, err := llm.NewPromptTemplate(templatePath, nil)
	if err != nil {
		return nil, err
	}

	var opts []parse.Option
	if cfg.MinReasoningLen > 0 {
		opts = append(opts, parse.WithMinReasoningLen(cfg.MinReasoningLen))
	}
	if cfg.MinAnswerLen > 0 {
		opts = append(opts, parse.WithMinAnswerLen(cfg.MinAnswerLen))
	}
	if cfg.ForbiddenAnswerText != nil {
		opts = append(opts, parse.WithForbiddenAnswerText(*cfg.ForbiddenAnswerText))
	}

	return &Reasoner{
		cfg:    cfg,
		llm:    client,
		parser: parse.New(opts...),
		tpl:    tpl,
	}, nil
}

// GetReasonedAnswer renders the prompt, calls the gateway and extracts a
// validated reasoning/answer pair. On transport failure the returned Outcome
// still carries the degraded error sentinels alongside the error, so callers
// can render a comparison even for a failed first stage.
func (r *Reasoner) GetReasonedAnswer(ctx context.Context, question string) (*Outcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("reason: question is required")
	}

	promptStr, err := r.tpl.Render(map[string]any{"Question": question})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	req := &llm.ChatRequest{
		Model:            r.cfg.Model,
		Temperature:      r.cfg.Temperature,
		MaxTokens:        r.cfg.MaxTokens,
		IncludeReasoning: !r.cfg.Structured,
		Messages: []llm.Message{
			{Role: "user", Content: promptStr},
		},
	}
	if r.cfg.Structured {
		schema, schemaErr := llm.GenerateSchema(&replyContract{})
		if schemaErr != nil {
			return nil, schemaErr
		}
		strict := true
		req.IncludeReasoning = false
		req.ResponseFormat = &llm.ResponseFormat{
			Type:   "json_schema",
			Name:   "reply",
			Schema: schema,
			Strict: &strict,
		}
	}

	resp, err := r.llm.Chat(callCtx, req)
	if err != nil {
		return r.errorOutcome(question), fmt.Errorf("reason: gateway call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return r.errorOutcome(question), errors.New("reason: gateway returned no choices")
	}

	msg := resp.Choices[0].Message
	content := strings.TrimSpace(msg.Content)

	out := &Outcome{
		Question: question,
		Model:    resp.Model,
		Raw:      content,
		Usage:    resp.Usage,
	}

	switch {
	case msg.Reasoning != "":
		// The gateway already separated deliberation from the answer;
		// validation still applies.
		out.Result = r.parser.Validate(parse.Result{
			Reasoning: strings.TrimSpace(msg.Reasoning),
			Answer:    content,
		}, content)
	case r.cfg.Structured:
		out.Result = r.structuredResult(content)
	default:
		out.Result = r.parser.Parse(content)
	}
	return out, nil
}

// structuredResult decodes a structured-mode reply, falling back to the
// heuristic chain when the gateway ignored the response format.
func (r *Reasoner) structuredResult(content string) parse.Result {
	var contract replyContract
	if err := llm.ParseStructured(content, &contract); err == nil {
		return r.parser.Validate(parse.Result{
			Reasoning: strings.TrimSpace(contract.Reasoning),
			Answer:    strings.TrimSpace(contract.Answer),
		}, content)
	}
	return r.parser.Parse(content)
}

func (r *Reasoner) errorOutcome(question string) *Outcome {
	return &Outcome{
		Question: question,
		Result: parse.Result{
			Reasoning: ErrorReasoningText,
			Answer:    ErrorAnswerText,
			Degraded:  true,
		},
	}
}
