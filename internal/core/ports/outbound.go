package ports

import (
	"context"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// CorpusLoader walks the corpus root and yields role-tagged units. The
// report carries per-file counters; a single file's parse failure must not
// abort the walk.
type CorpusLoader interface {
	Load(ctx context.Context) ([]domain.RawUnit, domain.IngestReport, error)
}

// Chunker turns units into indexable chunks, propagating role, source and
// section metadata unmodified.
type Chunker interface {
	Chunk(units []domain.RawUnit) []domain.Chunk
}

// Embedder builds vectors for chunk texts and query text. Deterministic for
// a fixed model: same text in, same vector out.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists the chunk index and performs role-filtered search.
type VectorStore interface {
	// ReplaceCollection atomically replaces the published index with the
	// given chunks. Queries concurrent with a replace see either the old or
	// the new index, never a partially built one.
	ReplaceCollection(ctx context.Context, chunks []domain.Chunk) error
	// Search returns up to limit nearest neighbors among points whose
	// content role is in allowedRoles. The role filter participates in the
	// nearest-neighbor search itself; it is never applied as a post-filter.
	// allowedRoles must be non-empty: callers short-circuit the empty case.
	Search(ctx context.Context, queryVector []float32, limit int, allowedRoles []string) ([]domain.RetrievedChunk, error)
	// Count reports the number of points in the published index.
	Count(ctx context.Context) (int, error)
}

// AnswerGenerator produces the grounded answer from retrieved context. One
// provider call per invocation; retries belong to the transport decorators.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error)
}

// ReindexQueue publishes and consumes corpus reindex requests.
type ReindexQueue interface {
	PublishReindexRequested(ctx context.Context, reason string) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// AuditLog records completed query pipeline outcomes. Implementations must
// never fail the query on audit errors.
type AuditLog interface {
	RecordQuery(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is one query pipeline outcome.
type AuditEntry struct {
	CallerRole     string
	QuestionLength int
	Denied         bool
	RetrievedCount int
	DurationMillis int64
	ErrorKind      string
}
