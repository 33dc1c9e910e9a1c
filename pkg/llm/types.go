package llm

// ChatRequest describes a single chat completion invocation.
type ChatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	// IncludeReasoning asks the gateway to return the model's deliberation
	// in a separate message field where the upstream supports it.
	IncludeReasoning bool            `json:"-"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
}

// Message represents a chat message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
	// Reasoning carries the gateway's out-of-band deliberation trace when
	// the request asked for it. Empty for models that interleave reasoning
	// with the answer text.
	Reasoning string `json:"reasoning,omitempty"`
}

// ResponseFormat controls the structure of the assistant response.
type ResponseFormat struct {
	Type        string      `json:"type"`
	Schema      interface{} `json:"schema,omitempty"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Strict      *bool       `json:"strict,omitempty"`
}

// ChatResponse captures a completion result.
type ChatResponse struct {
	ID          string   `json:"id"`
	Model       string   `json:"model"`
	Choices     []Choice `json:"choices"`
	Usage       Usage    `json:"usage"`
	Created     int64    `json:"created"`
	RawJSON     string   `json:"raw_json,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage summarises token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
