package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	providerLlamaCpp     = "llamacpp"
	llamaDefaultMaxToken = 2048
)

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type llamaModels struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type implLlamaCpp struct {
	baseURL    string
	model      string
	httpClient *http.Client
	health     *http.Client
}

// NewLlamaCpp creates a Generator for a llama.cpp llama-server instance.
func NewLlamaCpp(baseURL, model string, timeout time.Duration) Generator {
	return &implLlamaCpp{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		health:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (l *implLlamaCpp) Provider() string { return providerLlamaCpp }

func (l *implLlamaCpp) Model() string { return l.model }

// IsAvailable reports whether llama-server has a model loaded that matches the configured one.
// An empty model name accepts any loaded model.
func (l *implLlamaCpp) IsAvailable(ctx context.Context) bool {
	var models llamaModels
	if err := doJSON(ctx, l.health, http.MethodGet, l.baseURL+"/v1/models", nil, nil, &models); err != nil {
		return false
	}
	if len(models.Models) == 0 {
		return false
	}
	if l.model == "" {
		return true
	}
	for _, m := range models.Models {
		if strings.Contains(m.Name, l.model) || m.Model == l.model {
			return true
		}
	}
	return false
}

func (l *implLlamaCpp) Generate(ctx context.Context, req Request) (string, error) {
	payload := completionRequest{
		Prompt:      joinPrompt(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}
	if payload.MaxTokens <= 0 {
		payload.MaxTokens = llamaDefaultMaxToken
	}

	var resp completionResponse
	if err := doJSON(ctx, l.httpClient, http.MethodPost, l.baseURL+"/v1/completions", nil, payload, &resp); err != nil {
		return "", wrapErr(providerLlamaCpp, err)
	}
	if len(resp.Choices) == 0 {
		return "", wrapErr(providerLlamaCpp, errors.New("unexpected response format from llama.cpp server"))
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}
