package ports

import (
	"context"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// CorpusIngestor is the inbound contract for the batch ingestion pipeline.
type CorpusIngestor interface {
	Run(ctx context.Context) (domain.IngestReport, error)
}

// AnswerService is the inbound contract for the query pipeline. callerRole
// is an opaque trusted input produced by the request layer's authenticator;
// the core never re-derives identity.
type AnswerService interface {
	Answer(ctx context.Context, question, callerRole string, limit int) (*domain.Answer, error)
}
