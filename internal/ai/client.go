// Package ai implements the Groq-backed writing assistant used by the
// campaign builder. Groq exposes an OpenAI-compatible /chat/completions
// endpoint, so the request/response shapes are standard OpenAI chat format.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mailpilot/mailpilot-backend/internal/config"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Client calls the Groq chat-completions API. Safe for concurrent use.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient returns a Client, or a ConfigError when no API key is set.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.GroqAPIKey == "" || cfg.GroqAPIKey == "your_groq_api_key_here" {
		return nil, appErrors.NewConfigError("GROQ_API_KEY",
			"get a free key at https://console.groq.com/ and add it to your .env file")
	}
	return &Client{
		apiKey:      cfg.GroqAPIKey,
		model:       cfg.GroqModel,
		baseURL:     groqBaseURL,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.MaxAITokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ChatMessage is one turn in OpenAI chat format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat instructs the model to return valid JSON.
// Groq honours {"type": "json_object"} the same way OpenAI does.
type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete sends one request to the chat completions endpoint and returns
// the text content of the first choice. Failures, including timeouts, come
// back as UpstreamError.
func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	if reqBody.Model == "" {
		reqBody.Model = c.model
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", appErrors.NewUpstreamError("groq", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB cap
	if err != nil {
		return "", appErrors.NewUpstreamError("groq", fmt.Errorf("read response: %w", err))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", appErrors.NewUpstreamError("groq", fmt.Errorf("unmarshal response: %w", err))
	}

	if parsed.Error != nil {
		return "", appErrors.NewUpstreamError("groq",
			fmt.Errorf("API error %s: %s", parsed.Error.Type, parsed.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return "", appErrors.NewUpstreamError("groq",
			fmt.Errorf("unexpected status %d: %.200s", resp.StatusCode, string(respBytes)))
	}
	if len(parsed.Choices) == 0 {
		return "", appErrors.NewUpstreamError("groq", fmt.Errorf("no choices in response"))
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// stripFences removes accidental markdown fences around model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ChatContext describes what the user is looking at, folded into the
// assistant's system prompt.
type ChatContext struct {
	Page         string `json:"page"`
	CompanyName  string `json:"company_name"`
	AudienceType string `json:"audience_type"`
}

// Chat answers a free-form assistant message. Only the last ten turns of
// history are sent upstream.
func (c *Client) Chat(ctx context.Context, message string, chatCtx ChatContext, history []ChatMessage) (string, error) {
	if len(history) > 10 {
		history = history[len(history)-10:]
	}

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: buildSystemMessage(chatCtx)})
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	return c.complete(ctx, chatRequest{
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
}
