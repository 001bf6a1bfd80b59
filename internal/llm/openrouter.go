package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const providerOpenRouter = "openrouter"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type implOpenRouter struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenRouter creates a Generator for the OpenRouter chat completions API.
func NewOpenRouter(baseURL, apiKey, model string, timeout time.Duration) Generator {
	return &implOpenRouter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (o *implOpenRouter) Provider() string { return providerOpenRouter }

func (o *implOpenRouter) Model() string { return o.model }

func (o *implOpenRouter) IsAvailable(ctx context.Context) bool {
	return o.apiKey != ""
}

func (o *implOpenRouter) Generate(ctx context.Context, req Request) (string, error) {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload := chatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"HTTP-Referer":  "https://github.com/nguyentantai21042004/video-digest",
		"X-Title":       "Video Digest",
	}

	var resp chatResponse
	if err := doJSON(ctx, o.httpClient, http.MethodPost, o.baseURL+"/chat/completions", headers, payload, &resp); err != nil {
		return "", wrapErr(providerOpenRouter, err)
	}
	if len(resp.Choices) == 0 {
		return "", wrapErr(providerOpenRouter, errors.New("response has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
