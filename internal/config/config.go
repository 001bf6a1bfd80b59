package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidChunking is returned when chunk size and overlap cannot produce advancing windows.
var ErrInvalidChunking = errors.New("invalid chunking configuration")

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderLlamaCpp   = "llamacpp"
)

type Config struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Summarize  SummarizeConfig  `yaml:"summarize"`
	Synthesis  SynthesisConfig  `yaml:"synthesis"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Paths      PathsConfig      `yaml:"paths"`
	Output     OutputConfig     `yaml:"output"`
	Cache      CacheConfig      `yaml:"cache"`
	Store      StoreConfig      `yaml:"store"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ProviderConfig struct {
	Name    string        `yaml:"name"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// APIKeys is filled from the environment, never from the file.
	APIKeys []string `yaml:"-"`
}

type ChunkingConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
	Overlap      int `yaml:"overlap"`
}

type SummarizeConfig struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Concurrency int     `yaml:"concurrency"`
}

type SynthesisConfig struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type TranscriptConfig struct {
	Languages  []string `yaml:"languages"`
	MaxRetries int      `yaml:"max_retries"`
	YtDlpPath  string   `yaml:"yt_dlp_path"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type OutputConfig struct {
	Markdown bool `yaml:"markdown"`
	Docx     bool `yaml:"docx"`
	// Transcript also exports the source transcript as .docx.
	Transcript bool `yaml:"transcript"`
}

type WatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{
		Output: OutputConfig{Markdown: true},
	}
	_ = cfg.Validate()
	return cfg
}

// Load reads a YAML config file, applies environment overrides and validates it.
// A missing file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Output: OutputConfig{Markdown: true},
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	switch c.Provider.Name {
	case ProviderOpenRouter:
		if key := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); key != "" {
			c.Provider.APIKeys = []string{key}
		}
	case ProviderGemini, "":
		c.Provider.APIKeys = splitKeys(os.Getenv("GEMINI_API_KEYS"))
		if len(c.Provider.APIKeys) == 0 {
			c.Provider.APIKeys = splitKeys(os.Getenv("GEMINI_API_KEY"))
		}
	}
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = addr
	}
}

// ApplyEnv re-reads API keys after the provider was changed from the command line.
func (c *Config) ApplyEnv() {
	c.applyEnv()
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ValidateChunking checks that windows of maxSize overlapping by overlap always advance.
func ValidateChunking(maxSize, overlap int) error {
	if maxSize <= 0 {
		return fmt.Errorf("%w: max_chunk_size must be positive, got %d", ErrInvalidChunking, maxSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidChunking, overlap)
	}
	if overlap >= maxSize {
		return fmt.Errorf("%w: overlap (%d) must be less than max_chunk_size (%d)", ErrInvalidChunking, overlap, maxSize)
	}
	return nil
}

// Validate fills defaults for zero values and rejects invalid settings.
func (c *Config) Validate() error {
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Provider.Name == "" {
		c.Provider.Name = ProviderGemini
	}
	switch c.Provider.Name {
	case ProviderGemini:
		if c.Provider.Model == "" {
			c.Provider.Model = "gemini-2.5-flash"
		}
	case ProviderOpenRouter:
		if c.Provider.Model == "" {
			c.Provider.Model = "openai/gpt-oss-20b:free"
		}
		if c.Provider.BaseURL == "" {
			c.Provider.BaseURL = "https://openrouter.ai/api/v1"
		}
	case ProviderOllama:
		if c.Provider.Model == "" {
			c.Provider.Model = "qwen3:8b"
		}
		if c.Provider.BaseURL == "" {
			c.Provider.BaseURL = "http://localhost:11434"
		}
	case ProviderLlamaCpp:
		if c.Provider.Model == "" {
			c.Provider.Model = "Qwen3-8B-Q4_K_M.gguf"
		}
		if c.Provider.BaseURL == "" {
			c.Provider.BaseURL = "http://localhost:8080"
		}
	default:
		return fmt.Errorf("provider.name %q is not supported", c.Provider.Name)
	}
	if c.Provider.Timeout == 0 {
		if c.Provider.Name == ProviderOllama || c.Provider.Name == ProviderLlamaCpp {
			c.Provider.Timeout = 300 * time.Second
		} else {
			c.Provider.Timeout = 120 * time.Second
		}
	}

	if c.Chunking.MaxChunkSize == 0 && c.Chunking.Overlap == 0 {
		c.Chunking.MaxChunkSize = 4000
		c.Chunking.Overlap = 200
	} else if c.Chunking.MaxChunkSize == 0 {
		c.Chunking.MaxChunkSize = 4000
	}
	if err := ValidateChunking(c.Chunking.MaxChunkSize, c.Chunking.Overlap); err != nil {
		return err
	}

	if c.Summarize.Concurrency < 0 {
		return fmt.Errorf("summarize.concurrency must not be negative, got %d", c.Summarize.Concurrency)
	}
	if c.Summarize.Concurrency == 0 {
		c.Summarize.Concurrency = 1
	}
	if c.Summarize.Temperature == 0 {
		c.Summarize.Temperature = 0.3
	}
	if c.Summarize.MaxTokens == 0 {
		c.Summarize.MaxTokens = 500
	}
	if c.Synthesis.Temperature == 0 {
		c.Synthesis.Temperature = 0.4
	}
	if c.Synthesis.MaxTokens == 0 {
		c.Synthesis.MaxTokens = 2000
	}

	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = []string{"en"}
	}
	if c.Transcript.MaxRetries == 0 {
		c.Transcript.MaxRetries = 3
	}
	if c.Transcript.YtDlpPath == "" {
		c.Transcript.YtDlpPath = "yt-dlp"
	}

	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}

	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}

	if c.Watch.MaxConcurrent < 0 {
		return fmt.Errorf("watch.max_concurrent must not be negative, got %d", c.Watch.MaxConcurrent)
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = 2
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}
