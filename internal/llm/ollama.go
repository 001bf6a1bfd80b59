package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const providerOllama = "ollama"

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type implOllama struct {
	baseURL    string
	model      string
	httpClient *http.Client
	health     *http.Client
}

// NewOllama creates a Generator for a local Ollama server.
func NewOllama(baseURL, model string, timeout time.Duration) Generator {
	return &implOllama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		health:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (o *implOllama) Provider() string { return providerOllama }

func (o *implOllama) Model() string { return o.model }

// IsAvailable reports whether the server answers and has the model pulled.
func (o *implOllama) IsAvailable(ctx context.Context) bool {
	var tags ollamaTags
	if err := doJSON(ctx, o.health, http.MethodGet, o.baseURL+"/api/tags", nil, nil, &tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if strings.Contains(m.Name, o.model) {
			return true
		}
	}
	return false
}

func (o *implOllama) Generate(ctx context.Context, req Request) (string, error) {
	payload := ollamaRequest{
		Model:  o.model,
		Prompt: joinPrompt(req),
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
		},
	}
	if req.MaxTokens > 0 {
		payload.Options.NumPredict = req.MaxTokens
	}

	var resp ollamaResponse
	if err := doJSON(ctx, o.httpClient, http.MethodPost, o.baseURL+"/api/generate", nil, payload, &resp); err != nil {
		return "", wrapErr(providerOllama, err)
	}
	return resp.Response, nil
}
