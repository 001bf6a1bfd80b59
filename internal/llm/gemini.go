package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

const providerGemini = "gemini"

type implGemini struct {
	apiKeys []string
	model   string
	timeout time.Duration
	logger  logger.Logger

	mu         sync.Mutex
	currentKey int
	clients    map[string]*genai.Client

	// call performs one request with one key; replaced in tests.
	call func(ctx context.Context, key string, req Request) (string, error)
}

// NewGemini creates a Generator that rotates through the supplied Gemini API keys
// when a key is rate limited.
func NewGemini(apiKeys []string, model string, timeout time.Duration, log logger.Logger) Generator {
	g := &implGemini{
		apiKeys: apiKeys,
		model:   model,
		timeout: timeout,
		logger:  log,
		clients: make(map[string]*genai.Client),
	}
	g.call = g.generateContent
	return g
}

func (g *implGemini) Provider() string { return providerGemini }

func (g *implGemini) Model() string { return g.model }

func (g *implGemini) IsAvailable(ctx context.Context) bool {
	return len(g.apiKeys) > 0
}

// Generate sends the request to Gemini, rotating keys on 429 / quota errors.
func (g *implGemini) Generate(ctx context.Context, req Request) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", wrapErr(providerGemini, errors.New("no API keys configured"))
	}

	var lastErr error
	for range len(g.apiKeys) {
		idx, key := g.key()

		text, err := g.call(ctx, key, req)
		if err == nil {
			return text, nil
		}
		if !isQuotaError(err) {
			return "", wrapErr(providerGemini, err)
		}

		g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
		g.rotateKey(idx)
		lastErr = err
	}

	return "", wrapErr(providerGemini, fmt.Errorf("all API keys exhausted: %w", lastErr))
}

func (g *implGemini) generateContent(ctx context.Context, key string, req Request) (string, error) {
	client, err := g.client(ctx, key)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var b strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}

	return "", errors.New("empty response from Gemini")
}

func (g *implGemini) client(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: g.timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	g.clients[key] = c
	return c, nil
}

func (g *implGemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey advances past idx unless another caller already rotated.
func (g *implGemini) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
