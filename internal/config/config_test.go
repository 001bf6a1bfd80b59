package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty config gets defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "valid ollama config",
			config: Config{
				Provider: ProviderConfig{Name: "Ollama"},
				Chunking: ChunkingConfig{MaxChunkSize: 2000, Overlap: 100},
			},
			wantErr: false,
		},
		{
			name: "unknown provider",
			config: Config{
				Provider: ProviderConfig{Name: "mystery"},
			},
			wantErr: true,
		},
		{
			name: "overlap equal to chunk size",
			config: Config{
				Chunking: ChunkingConfig{MaxChunkSize: 200, Overlap: 200},
			},
			wantErr: true,
		},
		{
			name: "negative overlap",
			config: Config{
				Chunking: ChunkingConfig{MaxChunkSize: 200, Overlap: -1},
			},
			wantErr: true,
		},
		{
			name: "negative concurrency",
			config: Config{
				Summarize: SummarizeConfig{Concurrency: -2},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Provider.Name != ProviderGemini {
		t.Errorf("Provider.Name = %v, want %v", cfg.Provider.Name, ProviderGemini)
	}
	if cfg.Provider.Model != "gemini-2.5-flash" {
		t.Errorf("Provider.Model = %v, want %v", cfg.Provider.Model, "gemini-2.5-flash")
	}
	if cfg.Chunking.MaxChunkSize != 4000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("Chunking = %+v, want 4000/200", cfg.Chunking)
	}
	if cfg.Summarize.Concurrency != 1 {
		t.Errorf("Summarize.Concurrency = %v, want 1", cfg.Summarize.Concurrency)
	}
	if cfg.Summarize.Temperature != 0.3 || cfg.Summarize.MaxTokens != 500 {
		t.Errorf("Summarize = %+v, want 0.3/500", cfg.Summarize)
	}
	if cfg.Synthesis.Temperature != 0.4 || cfg.Synthesis.MaxTokens != 2000 {
		t.Errorf("Synthesis = %+v, want 0.4/2000", cfg.Synthesis)
	}
	if cfg.Provider.Timeout != 120*time.Second {
		t.Errorf("Provider.Timeout = %v, want 2m", cfg.Provider.Timeout)
	}
}

func TestValidateLocalProviderDefaults(t *testing.T) {
	cfg := Config{Provider: ProviderConfig{Name: ProviderLlamaCpp}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Provider.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %v, want %v", cfg.Provider.BaseURL, "http://localhost:8080")
	}
	if cfg.Provider.Timeout != 300*time.Second {
		t.Errorf("Timeout = %v, want 5m", cfg.Provider.Timeout)
	}
}

func TestValidateChunking(t *testing.T) {
	tests := []struct {
		maxSize, overlap int
		wantErr          bool
	}{
		{4000, 200, false},
		{10, 0, false},
		{10, 9, false},
		{0, 0, true},
		{-5, 0, true},
		{10, 10, true},
		{10, 11, true},
		{10, -1, true},
	}

	for _, tt := range tests {
		err := ValidateChunking(tt.maxSize, tt.overlap)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateChunking(%d, %d) error = %v, wantErr %v", tt.maxSize, tt.overlap, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidChunking) {
			t.Errorf("ValidateChunking(%d, %d) error = %v, want ErrInvalidChunking", tt.maxSize, tt.overlap, err)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
provider:
  name: openrouter
  timeout: 30s

chunking:
  max_chunk_size: 3000
  overlap: 150

summarize:
  concurrency: 4

output:
  markdown: true
  docx: true

logging:
  level: "debug"
  format: "json"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != ProviderOpenRouter {
		t.Errorf("Provider.Name = %v, want %v", cfg.Provider.Name, ProviderOpenRouter)
	}
	if cfg.Provider.Timeout != 30*time.Second {
		t.Errorf("Provider.Timeout = %v, want 30s", cfg.Provider.Timeout)
	}
	if len(cfg.Provider.APIKeys) != 1 || cfg.Provider.APIKeys[0] != "sk-test" {
		t.Errorf("Provider.APIKeys = %v, want [sk-test]", cfg.Provider.APIKeys)
	}
	if cfg.Chunking.MaxChunkSize != 3000 || cfg.Chunking.Overlap != 150 {
		t.Errorf("Chunking = %+v, want 3000/150", cfg.Chunking)
	}
	if cfg.Summarize.Concurrency != 4 {
		t.Errorf("Summarize.Concurrency = %v, want 4", cfg.Summarize.Concurrency)
	}
	if !cfg.Output.Docx {
		t.Error("Output.Docx = false, want true")
	}
}

func TestLoadGeminiKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEYS", "a, b,,c")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Provider.APIKeys) != 3 {
		t.Errorf("APIKeys = %v, want 3 keys", cfg.Provider.APIKeys)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chunking.MaxChunkSize != 4000 {
		t.Errorf("MaxChunkSize = %v, want 4000", cfg.Chunking.MaxChunkSize)
	}
	if !cfg.Output.Markdown {
		t.Error("Output.Markdown = false, want true")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("chunking: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should return error for malformed file")
	}
}

func TestLoadInvalidChunking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunking.yaml")
	if err := os.WriteFile(path, []byte("chunking:\n  max_chunk_size: 100\n  overlap: 500\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidChunking) {
		t.Errorf("Load() error = %v, want ErrInvalidChunking", err)
	}
}
