package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/chunker"
	"github.com/nguyentantai21042004/video-digest/internal/config"
	"github.com/nguyentantai21042004/video-digest/internal/llm"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/output"
	"github.com/nguyentantai21042004/video-digest/internal/pipeline"
	"github.com/nguyentantai21042004/video-digest/internal/store"
	"github.com/nguyentantai21042004/video-digest/internal/summarizer"
	"github.com/nguyentantai21042004/video-digest/internal/synthesizer"
	"github.com/nguyentantai21042004/video-digest/internal/textproc"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
	"github.com/nguyentantai21042004/video-digest/internal/watcher"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

type flags struct {
	configPath  string
	provider    string
	model       string
	outputFile  string
	docx        bool
	transcript  bool
	chunkSize   int
	overlap     int
	concurrency int
	watch       bool
	history     int
	logLevel    string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "config.yaml", "path to the YAML config file")
	flag.StringVar(&f.provider, "provider", "", "model backend: gemini, openrouter, ollama or llamacpp")
	flag.StringVar(&f.model, "model", "", "model name (defaults per provider)")
	flag.StringVar(&f.outputFile, "o", "", "also write the markdown summary to this file")
	flag.BoolVar(&f.docx, "docx", false, "export the summary as .docx")
	flag.BoolVar(&f.transcript, "transcript", false, "export the transcript as .docx")
	flag.IntVar(&f.chunkSize, "chunk-size", 0, "maximum characters per chunk")
	flag.IntVar(&f.overlap, "overlap", -1, "characters shared by consecutive chunks (default from config, reduced to 5% of -chunk-size when it would not fit)")
	flag.IntVar(&f.concurrency, "concurrency", 0, "chunks summarized in parallel (1 = sequential)")
	flag.BoolVar(&f.watch, "watch", false, "watch the input directory for transcript and media files")
	flag.IntVar(&f.history, "history", 0, "list the N most recent runs and exit")
	flag.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <youtube-url | video-id | transcript-file | media-file>\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	return f
}

func main() {
	os.Exit(run(parseFlags()))
}

func run(f flags) int {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, f); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if f.history > 0 {
		return showHistory(ctx, cfg, f.history)
	}

	ref := strings.TrimSpace(flag.Arg(0))
	if ref == "" && !f.watch {
		flag.Usage()
		return 2
	}

	gen, err := llm.New(cfg.Provider, log)
	if err != nil {
		log.Error(ctx, "Failed to create provider: %v", err)
		return 1
	}
	if err := preflight(ctx, gen, cfg.Provider); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	log.Info(ctx, "Using %s (%s)", gen.Provider(), gen.Model())

	if cfg.Cache.RedisAddr != "" {
		cache, closeCache, err := llm.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			log.Warn(ctx, "Response cache disabled: %v", err)
		} else {
			defer closeCache()
			gen = llm.WithCache(gen, cache, cfg.Cache.TTL, log)
			log.Info(ctx, "Response cache enabled (redis %s, ttl %s)", cfg.Cache.RedisAddr, cfg.Cache.TTL)
		}
	}

	pipe, closeDeps, err := buildPipeline(cfg, gen, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize pipeline: %v", err)
		return 1
	}
	defer closeDeps()

	if f.watch {
		return watch(ctx, cfg, pipe, log)
	}
	return digestOnce(ctx, cfg, pipe, gen, ref, f.outputFile, log)
}

// applyFlags lays command-line overrides over the loaded file and re-validates.
func applyFlags(cfg *config.Config, f flags) error {
	if p := strings.ToLower(strings.TrimSpace(f.provider)); p != "" && p != cfg.Provider.Name {
		cfg.Provider = config.ProviderConfig{Name: p}
		cfg.ApplyEnv()
	}
	if f.model != "" {
		cfg.Provider.Model = f.model
	}
	if f.docx {
		cfg.Output.Docx = true
	}
	if f.transcript {
		cfg.Output.Transcript = true
	}
	if f.chunkSize != 0 {
		cfg.Chunking.MaxChunkSize = f.chunkSize
	}
	if f.overlap >= 0 {
		cfg.Chunking.Overlap = f.overlap
	} else if f.chunkSize > 0 && cfg.Chunking.Overlap >= f.chunkSize {
		// Keep the default 5% ratio when only the window was shrunk.
		cfg.Chunking.Overlap = f.chunkSize / 20
	}
	if f.concurrency != 0 {
		cfg.Summarize.Concurrency = f.concurrency
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return cfg.Validate()
}

// preflight fails fast with an actionable message when the backend cannot serve requests.
func preflight(ctx context.Context, gen llm.Generator, p config.ProviderConfig) error {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if gen.IsAvailable(checkCtx) {
		return nil
	}

	switch p.Name {
	case config.ProviderGemini:
		return errors.New("no Gemini API key found: set GEMINI_API_KEYS (comma separated) or GEMINI_API_KEY")
	case config.ProviderOpenRouter:
		return errors.New("OPENROUTER_API_KEY is not set")
	case config.ProviderOllama:
		return fmt.Errorf("ollama is not reachable at %s or model %q is not pulled (try: ollama pull %s)", p.BaseURL, p.Model, p.Model)
	case config.ProviderLlamaCpp:
		return fmt.Errorf("llama.cpp server is not reachable at %s or has no model loaded", p.BaseURL)
	}
	return fmt.Errorf("provider %s is not available", p.Name)
}

func buildPipeline(cfg *config.Config, gen llm.Generator, log logger.Logger) (pipeline.Pipeline, func(), error) {
	c, err := chunker.New(cfg.Chunking.MaxChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return nil, nil, err
	}

	deps := pipeline.Deps{
		Source:  transcript.New(cfg, executor.New(), log),
		Chunker: c,
		Summarizer: summarizer.New(gen, log, summarizer.Options{
			Temperature: cfg.Summarize.Temperature,
			MaxTokens:   cfg.Summarize.MaxTokens,
			Concurrency: cfg.Summarize.Concurrency,
		}),
		Synthesizer: synthesizer.New(gen, log, synthesizer.Options{
			Temperature: cfg.Synthesis.Temperature,
			MaxTokens:   cfg.Synthesis.MaxTokens,
		}),
		Writer: output.New(output.Options{
			Dir:        cfg.Paths.Output,
			Markdown:   cfg.Output.Markdown,
			Docx:       cfg.Output.Docx,
			Transcript: cfg.Output.Transcript,
		}, log),
		Provider: gen.Provider(),
		Model:    gen.Model(),
	}

	closeFn := func() {}
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		deps.History = st
		closeFn = func() { st.Close() }
	}

	return pipeline.New(deps, log), closeFn, nil
}

func digestOnce(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, gen llm.Generator, ref, outputFile string, log logger.Logger) int {
	res, err := pipe.Digest(ctx, ref)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn(ctx, "Interrupted")
			return 130
		}
		log.Error(ctx, "Failed: %v", err)
		if res == nil {
			return 1
		}
	}

	if outputFile != "" {
		w := output.New(output.Options{}, log)
		info := output.Info{Provider: gen.Provider(), Model: gen.Model(), Generated: time.Now()}
		if err := w.WriteMarkdown(outputFile, res.Synthesis, info); err != nil {
			log.Error(ctx, "Failed to save summary: %v", err)
			return 1
		}
		log.Info(ctx, "Summary saved to: %s", outputFile)
		if cfg.Output.Docx {
			docxPath := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".docx"
			if err := w.WriteDocx(docxPath, res.Synthesis, info); err != nil {
				log.Error(ctx, "Failed to save docx: %v", err)
				return 1
			}
			log.Info(ctx, "Docx saved to: %s", docxPath)
		}
	}

	s := res.Synthesis
	rule := strings.Repeat("=", 80)
	fmt.Printf("\n%s\n\n%s\n\n%s\n", rule, s.Document, rule)
	fmt.Fprintf(os.Stderr, "Summarized %d/%d chunks", s.SuccessfulChunks, s.ChunkCount)
	if s.Duration > 0 {
		fmt.Fprintf(os.Stderr, " of a %s video", textproc.FormatDuration(s.Duration))
	}
	if s.Fallback {
		fmt.Fprint(os.Stderr, " (final synthesis failed, showing chunk summaries)")
	}
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return 1
	}
	return 0
}

func watch(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger) int {
	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		return 1
	}

	w, err := watcher.New(cfg.Paths.Input, pipe.Process, log, watcher.Options{
		MaxConcurrent: cfg.Watch.MaxConcurrent,
		Accept: func(path string) bool {
			return transcript.IsTranscriptFile(path) || transcript.IsMediaFile(path)
		},
		SettleDelay:  500 * time.Millisecond,
		ScanExisting: true,
	})
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return 1
	}
	defer w.Stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Video digest is watching: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return 1
	}
	log.Info(ctx, "Video digest stopped")
	return 0
}

func showHistory(ctx context.Context, cfg *config.Config, n int) int {
	if cfg.Store.Path == "" {
		fmt.Fprintln(os.Stderr, "History is disabled: set store.path in the config file")
		return 1
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history: %v\n", err)
		return 1
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list history: %v\n", err)
		return 1
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tVIDEO\tCHUNKS\tPROVIDER\tTOOK\tRUN ID")
	for _, r := range runs {
		chunks := fmt.Sprintf("%d/%d", r.Result.SuccessfulChunks, r.Result.ChunkCount)
		if r.Result.Fallback {
			chunks += " (fallback)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\t%s\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Result.VideoURL, chunks,
			r.Provider, r.Model, r.Elapsed.Round(time.Second), r.ID)
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
