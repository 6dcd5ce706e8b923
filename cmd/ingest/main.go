package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finsolve/knowledge-assistant/internal/config"
	"github.com/finsolve/knowledge-assistant/internal/core/usecase"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/chunking"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/llm/ollama"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/loader"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/resilience"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/vector/qdrant"
	"github.com/finsolve/knowledge-assistant/internal/observability/logging"
)

// One-shot corpus ingestion. Builds the role-tagged index from the corpus
// directory and atomically replaces the published collection. The API and
// worker are not required to be running.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	corpusDir := flag.String("corpus", cfg.CorpusDir, "corpus root directory (one subdirectory per content role)")
	flag.Parse()

	logger := logging.NewTextLogger("ingest", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.ProviderTimeout)
	embedder := ollama.NewResilientEmbedder(ollama.NewEmbedder(ollamaClient), executor)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	ingest := usecase.NewIngestCorpusUseCase(
		loader.NewWalker(*corpusDir, logger),
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		vectorDB,
		logger,
	)

	start := time.Now()
	report, err := ingest.Run(ctx)
	if err != nil {
		logger.Error("ingest_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingest_completed",
		"duration", time.Since(start).Round(time.Millisecond).String(),
		"files_loaded", report.FilesLoaded,
		"files_skipped", report.FilesSkipped,
		"files_failed", report.FilesFailed,
		"units", report.Units,
		"chunks", report.Chunks,
		"roles", report.Roles,
	)
}
