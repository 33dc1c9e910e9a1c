package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		DefaultModel: "reasoner",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		LogLevel:     "error",
		Models: map[string]ModelConfig{
			"reasoner": {
				Provider:  "deepseek",
				ModelName: "deepseek-r1",
			},
		},
	}
}

func TestClientChat(t *testing.T) {
	var (
		mu       sync.Mutex
		lastBody []byte
		lastPath string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		lastPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		lastBody = body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-1",
			"object":"chat.completion",
			"created":1730366400,
			"model":"deepseek/deepseek-r1",
			"choices":[
				{
					"index":0,
					"finish_reason":"stop",
					"logprobs":null,
					"message":{
						"role":"assistant",
						"content":"1. Reasoning: because\n2. Answer: 42",
						"tool_calls":[]
					}
				}
			],
			"usage":{
				"prompt_tokens":10,
				"completion_tokens":12,
				"total_tokens":22
			}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Chat(ctx, &ChatRequest{
		Messages: []Message{
			{Role: "user", Content: "hi"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "deepseek/deepseek-r1", resp.Model)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "1. Reasoning: because\n2. Answer: 42", resp.Choices[0].Message.Content)
	require.Equal(t, 22, resp.Usage.TotalTokens)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/chat/completions", lastPath)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &payload))
	require.Equal(t, "deepseek/deepseek-r1", payload["model"])
}

func TestClientChatIncludeReasoning(t *testing.T) {
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-2",
			"created":1730366400,
			"model":"deepseek/deepseek-r1",
			"choices":[
				{
					"index":0,
					"finish_reason":"stop",
					"message":{
						"role":"assistant",
						"content":"The answer is 42.",
						"reasoning":"Deliberating carefully about the ultimate question."
					}
				}
			],
			"usage":{
				"prompt_tokens":7,
				"completion_tokens":9,
				"total_tokens":16
			}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		IncludeReasoning: true,
		Messages: []Message{
			{Role: "user", Content: "what is the answer?"},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	require.Equal(t, "The answer is 42.", resp.Choices[0].Message.Content)
	require.Equal(t, "Deliberating carefully about the ultimate question.", resp.Choices[0].Message.Reasoning)
	require.Equal(t, 16, resp.Usage.TotalTokens)

	require.Equal(t, true, captured["include_reasoning"])
	require.Equal(t, "deepseek/deepseek-r1", captured["model"])
}

func TestClientChatIncludeReasoningConcurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-3",
			"created":1730366400,
			"model":"deepseek/deepseek-r1",
			"choices":[
				{
					"index":0,
					"finish_reason":"stop",
					"message":{
						"role":"assistant",
						"content":"The answer is 42.",
						"reasoning":"Deliberating carefully about the ultimate question."
					}
				}
			],
			"usage":{"prompt_tokens":7,"completion_tokens":9,"total_tokens":16}
		}`))
	}))
	defer server.Close()

	// No injected HTTP client: the constructor must have built the default
	// one up front, so parallel reasoning calls share an immutable client.
	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	defer client.Close()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Chat(context.Background(), &ChatRequest{
				IncludeReasoning: true,
				Messages: []Message{
					{Role: "user", Content: "what is the answer?"},
				},
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}
}

func TestClientChatIncludeReasoningRetries(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-3",
			"model":"deepseek/deepseek-r1",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok","reasoning":"r"}}],
			"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}
		}`))
	}))
	defer server.Close()

	retry := NewRetryHandler(RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond})
	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()), WithRetryHandler(retry))
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		IncludeReasoning: true,
		Messages:         []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, "ok", resp.Choices[0].Message.Content)
}

func TestClientChatIncludeReasoningHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Chat(context.Background(), &ChatRequest{
		IncludeReasoning: true,
		Messages:         []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 401")
}

func TestClientChatStructured(t *testing.T) {
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-structured",
			"object":"chat.completion",
			"created":1730366400,
			"model":"deepseek/deepseek-r1",
			"choices":[
				{
					"index":0,
					"finish_reason":"stop",
					"logprobs":null,
					"message":{
						"role":"assistant",
						"content":"{\"reasoning\":\"because of momentum\",\"answer\":\"42\"}",
						"tool_calls":[]
					}
				}
			],
			"usage":{
				"prompt_tokens":12,
				"completion_tokens":20,
				"total_tokens":32
			}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	var out struct {
		Reasoning string `json:"reasoning"`
		Answer    string `json:"answer"`
	}
	err = client.ChatStructured(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "because of momentum", out.Reasoning)
	require.Equal(t, "42", out.Answer)

	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok, "request should carry response_format")
	require.Equal(t, "json_schema", format["type"])
}

func TestClientChatRequiresMessages(t *testing.T) {
	client, err := NewClient(testConfig("https://example.invalid"))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one message")

	_, err = client.Chat(context.Background(), nil)
	require.Error(t, err)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&Config{})
	require.Error(t, err)
}
