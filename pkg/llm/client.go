package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// LLMClient defines the supported client behaviours.
type LLMClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ChatStructured(ctx context.Context, req *ChatRequest, target interface{}) error
	GetConfig() *Config
	Close() error
}

// Client talks to an OpenAI-compatible gateway via the OpenAI SDK.
type Client struct {
	config       *Config
	openaiClient *openai.Client
	logger       Logger
	retryHandler *RetryHandler
	httpClient   *http.Client
}

// ClientOption configures optional client behaviour.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger       Logger
	retry        *RetryHandler
	httpClient   *http.Client
	openaiClient *openai.Client
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRetryHandler injects a custom retry handler.
func WithRetryHandler(handler *RetryHandler) ClientOption {
	return func(opts *clientOptions) {
		opts.retry = handler
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// WithOpenAIClient injects a pre-configured OpenAI client (primarily for testing).
func WithOpenAIClient(client *openai.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.openaiClient = client
	}
}

// NewClient constructs a new gateway client using the provided configuration.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("llm: config cannot be nil")
	}

	clientCfg := cfg.Clone()
	if err := clientCfg.Validate(); err != nil {
		return nil, err
	}

	optState := clientOptions{}
	for _, opt := range opts {
		opt(&optState)
	}

	logger := optState.logger
	if logger == nil {
		logger = NewLogger(clientCfg.LogLevel)
	}

	retryHandler := optState.retry
	if retryHandler == nil {
		retryHandler = NewRetryHandler(RetryConfig{
			MaxRetries: clientCfg.MaxRetries,
		})
	}

	var oaClient *openai.Client
	if optState.openaiClient != nil {
		oaClient = optState.openaiClient
	} else {
		oaOpts := []option.RequestOption{
			option.WithAPIKey(clientCfg.APIKey),
			option.WithBaseURL(clientCfg.BaseURL),
		}
		if clientCfg.Timeout > 0 {
			oaOpts = append(oaOpts, option.WithRequestTimeout(clientCfg.Timeout))
		}
		if optState.httpClient != nil {
			oaOpts = append(oaOpts, option.WithHTTPClient(optState.httpClient))
		}
		clientVal := openai.NewClient(oaOpts...)
		oaClient = &clientVal
	}

	httpClient := optState.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientCfg.Timeout}
	}

	return &Client{
		config:       clientCfg,
		openaiClient: oaClient,
		logger:       logger,
		retryHandler: retryHandler,
		httpClient:   httpClient,
	}, nil
}

// Chat performs a single synchronous completion request. Requests that ask
// for out-of-band reasoning bypass the SDK types and post raw JSON, since
// the gateway's reasoning field is not modeled by the OpenAI SDK.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, errors.New("llm: request cannot be nil")
	}
	params, modelID, err := c.buildChatParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Info(ctx, "llm chat request", Fields{
		"model":    modelID,
		"messages": len(req.Messages),
	})

	if req.IncludeReasoning {
		return c.chatRaw(ctx, req, modelID)
	}

	var completion *openai.ChatCompletion
	err = c.retryHandler.Do(ctx, func() error {
		resp, callErr := c.openaiClient.Chat.Completions.New(ctx, params)
		if callErr != nil {
			c.logger.Error(ctx, fmt.Errorf("chat completion failed: %w", callErr), Fields{
				"model": modelID,
			})
			return callErr
		}
		completion = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := convertCompletion(completion)
	c.logger.Info(ctx, "llm chat success", Fields{
		"model":             modelID,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     result.Usage.PromptTokens,
		"completion_tokens": result.Usage.CompletionTokens,
	})
	return result, nil
}

// rawCompletion mirrors the subset of the wire completion we need, plus the
// non-standard per-message reasoning field.
type rawCompletion struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			Reasoning string `json:"reasoning"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// chatRaw posts a raw JSON body to carry include_reasoning and lift the
// reasoning field out of the reply.
func (c *Client) chatRaw(ctx context.Context, req *ChatRequest, modelID string) (*ChatResponse, error) {
	msgs := make([]map[string]any, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role == "" {
			role = "user"
		}
		item := map[string]any{"role": role, "content": m.Content}
		if m.Name != "" {
			item["name"] = m.Name
		}
		msgs = append(msgs, item)
	}

	body := map[string]any{
		"model":             modelID,
		"messages":          msgs,
		"include_reasoning": true,
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if req.MaxTokens != nil {
		body["max_tokens"] = *req.MaxTokens
	}
	if req.TopP != nil {
		body["top_p"] = *req.TopP
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	var parsed rawCompletion
	if err := c.retryHandler.Do(ctx, func() error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if reqErr != nil {
			return reqErr
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, callErr := c.httpClient.Do(httpReq)
		if callErr != nil {
			return callErr
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Wrap as openai.Error so the retry policy recognizes
			// retriable status codes.
			return &openai.Error{StatusCode: resp.StatusCode}
		}
		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		if err := json.Unmarshal(b, &parsed); err != nil {
			return fmt.Errorf("llm: decode completion: %w", err)
		}
		return nil
	}); err != nil {
		// Avoid leaking an openai.Error with nil Request/Response, which
		// can panic on Error().
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("llm: http %d", apiErr.StatusCode)
		}
		return nil, err
	}

	result := &ChatResponse{
		ID:      parsed.ID,
		Model:   parsed.Model,
		Created: parsed.Created,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}
	for _, choice := range parsed.Choices {
		result.Choices = append(result.Choices, Choice{
			Index:        choice.Index,
			FinishReason: choice.FinishReason,
			Message: Message{
				Role:      choice.Message.Role,
				Content:   choice.Message.Content,
				Reasoning: choice.Message.Reasoning,
			},
		})
	}
	return result, nil
}

// ChatStructured enforces structured output using a JSON schema derived from
// target and decodes the reply into it.
func (c *Client) ChatStructured(ctx context.Context, req *ChatRequest, target interface{}) error {
	if req == nil {
		return errors.New("llm: request cannot be nil")
	}
	if target == nil {
		return errors.New("llm: structured target cannot be nil")
	}

	schema, err := GenerateSchema(target)
	if err != nil {
		return err
	}

	strict := true
	structuredReq := *req
	structuredReq.ResponseFormat = &ResponseFormat{
		Type:        "json_schema",
		Name:        deriveSchemaName(target),
		Schema:      schema,
		Description: "Structured response",
		Strict:      &strict,
	}

	resp, err := c.Chat(ctx, &structuredReq)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return errors.New("llm: empty structured response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := ParseStructured(content, target); err != nil {
		c.logger.Error(ctx, fmt.Errorf("parse structured response: %w", err), Fields{
			"model": resp.Model,
		})
		return err
	}
	return nil
}

// GetConfig returns an immutable copy of the client configuration.
func (c *Client) GetConfig() *Config {
	return c.config.Clone()
}

// Close releases resources associated with the client.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

func (c *Client) buildChatParams(req *ChatRequest) (openai.ChatCompletionNewParams, string, error) {
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, "", errors.New("llm: request requires at least one message")
	}

	modelAlias := strings.TrimSpace(req.Model)
	if modelAlias == "" {
		modelAlias = c.config.DefaultModel
	}

	modelCfg, ok := c.config.Model(modelAlias)
	if !ok {
		modelCfg = ModelConfig{ModelName: modelAlias}
	}
	modelID := ResolveModelID(modelAlias, modelCfg)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: buildMessageParams(req.Messages),
	}

	if rf, ok, err := toResponseFormatParam(req.ResponseFormat); err != nil {
		return openai.ChatCompletionNewParams{}, "", err
	} else if ok {
		params.ResponseFormat = rf
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	} else if modelCfg.Temperature != nil {
		params.Temperature = openai.Float(*modelCfg.Temperature)
	}

	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxTokens))
	} else if modelCfg.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*modelCfg.MaxTokens))
	}

	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	} else if modelCfg.TopP != nil {
		params.TopP = openai.Float(*modelCfg.TopP)
	}

	return params, modelID, nil
}

func buildMessageParams(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			param := openai.SystemMessage(m.Content)
			if m.Name != "" && param.OfSystem != nil {
				param.OfSystem.Name = openai.String(m.Name)
			}
			result = append(result, param)
		case "assistant":
			result = append(result, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			param := openai.UserMessage(m.Content)
			if m.Name != "" && param.OfUser != nil {
				param.OfUser.Name = openai.String(m.Name)
			}
			result = append(result, param)
		}
	}
	return result
}

func toResponseFormatParam(format *ResponseFormat) (openai.ChatCompletionNewParamsResponseFormatUnion, bool, error) {
	var empty openai.ChatCompletionNewParamsResponseFormatUnion
	if format == nil || strings.EqualFold(format.Type, "text") || format.Type == "" {
		return empty, false, nil
	}

	switch strings.ToLower(format.Type) {
	case "json_object":
		val := shared.NewResponseFormatJSONObjectParam()
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &val,
		}, true, nil
	case "json_schema":
		schema, ok := format.Schema.(map[string]interface{})
		if !ok {
			return empty, false, fmt.Errorf("llm: json_schema requires map schema")
		}
		name := format.Name
		if name == "" {
			name = "structured_output"
		}
		jsonSchema := shared.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   name,
			Schema: schema,
		}
		if format.Strict != nil {
			jsonSchema.Strict = openai.Bool(*format.Strict)
		}
		if desc := strings.TrimSpace(format.Description); desc != "" {
			jsonSchema.Description = openai.String(desc)
		}
		val := shared.ResponseFormatJSONSchemaParam{
			JSONSchema: jsonSchema,
		}
		val.Type = val.Type.Default()
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &val,
		}, true, nil
	default:
		return empty, false, fmt.Errorf("llm: unsupported response format %q", format.Type)
	}
}

func convertCompletion(resp *openai.ChatCompletion) *ChatResponse {
	if resp == nil {
		return nil
	}

	result := &ChatResponse{
		ID:          resp.ID,
		Model:       resp.Model,
		Created:     resp.Created,
		RawJSON:     resp.RawJSON(),
		Fingerprint: resp.SystemFingerprint,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	for _, choice := range resp.Choices {
		result.Choices = append(result.Choices, Choice{
			Index: int(choice.Index),
			Message: Message{
				Role:    string(choice.Message.Role),
				Content: choice.Message.Content,
			},
			FinishReason: choice.FinishReason,
		})
	}
	return result
}
