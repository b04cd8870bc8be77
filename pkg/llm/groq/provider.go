package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hybrid-rag-be/pkg/llm"
)

// Client talks to the Groq OpenAI-compatible API. It backs both the chat
// completion arm of the engine and the model-listing diagnostic.
type Client struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure Client implements LLMProvider
var _ llm.LLMProvider = &Client{}

func NewClient(apiKey, baseURL, modelName string) *Client {
	return &Client{
		APIKey:    apiKey,
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type modelListResponse struct {
	Object string    `json:"object"`
	Data   []Model   `json:"data"`
	Error  *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Model is one entry of the Groq model catalog.
type Model struct {
	ID            string `json:"id"`
	OwnedBy       string `json:"owned_by"`
	Active        bool   `json:"active"`
	ContextWindow int    `json:"context_window"`
}

// --- Interface Implementation ---

func (c *Client) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	// 1. Process Options
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	// 2. Map generic messages to API messages
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		// "model" is a legacy alias some callers still use
		if role == "model" {
			role = "assistant"
		}
		messages[i] = chatMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	// 3. Prepare Payload
	model := c.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
	}
	if options.MaxTokens > 0 {
		reqPayload.MaxTokens = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// 4. Send Request
	url := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// 5. Parse Response
	var completion chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &completion); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("groq api returned error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	// Reuse Chat for simplicity as most new LLMs are chat-optimized
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// ListModels fetches the model catalog. Besides the listing CLI, this is the
// cheapest authenticated call, so pipeline setup uses it as a credential
// probe.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	url := c.BaseURL + "/models"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var catalog modelListResponse
	if err := json.Unmarshal(bodyBytes, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if catalog.Error != nil {
		return nil, fmt.Errorf("groq api returned error: %s", catalog.Error.Message)
	}

	return catalog.Data, nil
}
