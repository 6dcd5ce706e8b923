package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/ports"
)

// IngestCorpusUseCase runs the batch ingestion pipeline: walk the corpus
// root, chunk, embed, and atomically replace the published index. It is a
// single-shot, single-writer job; callers serialize concurrent runs.
type IngestCorpusUseCase struct {
	loader   ports.CorpusLoader
	chunker  ports.Chunker
	embedder ports.Embedder
	vectorDB ports.VectorStore
	log      *slog.Logger
}

func NewIngestCorpusUseCase(
	loader ports.CorpusLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	log *slog.Logger,
) *IngestCorpusUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &IngestCorpusUseCase{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		vectorDB: vectorDB,
		log:      log,
	}
}

func (uc *IngestCorpusUseCase) Run(ctx context.Context) (domain.IngestReport, error) {
	units, report, err := uc.loader.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load corpus: %w", err)
	}
	if len(units) == 0 {
		return report, domain.WrapError(domain.ErrEmptyCorpus, "load corpus", errors.New("no units produced from corpus root"))
	}

	chunks := uc.chunker.Chunk(units)
	if len(chunks) == 0 {
		return report, domain.WrapError(domain.ErrInvalidInput, "chunk corpus", errors.New("chunking produced zero chunks"))
	}
	report.Chunks = len(chunks)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return report, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if err := uc.vectorDB.ReplaceCollection(ctx, chunks); err != nil {
		return report, fmt.Errorf("replace index collection: %w", err)
	}

	uc.log.Info("corpus_ingested",
		"files_loaded", report.FilesLoaded,
		"files_skipped", report.FilesSkipped,
		"files_failed", report.FilesFailed,
		"units", report.Units,
		"chunks", report.Chunks,
		"roles", report.Roles,
	)
	return report, nil
}
