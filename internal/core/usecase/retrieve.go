package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/policy"
	"github.com/finsolve/knowledge-assistant/internal/core/ports"
)

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific limit.
const DefaultTopK = 5

// Retriever resolves the caller's accessible content roles, embeds the
// question, and performs role-filtered similarity search.
type Retriever struct {
	policy   *policy.AccessPolicy
	embedder ports.Embedder
	vectorDB ports.VectorStore
}

func NewRetriever(
	accessPolicy *policy.AccessPolicy,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
) *Retriever {
	return &Retriever{
		policy:   accessPolicy,
		embedder: embedder,
		vectorDB: vectorDB,
	}
}

// Retrieve returns up to limit chunks the caller is entitled to see, ranked
// by descending similarity. An empty accessible set short-circuits to an
// empty result before any embedding or search: an empty role filter must
// never reach the store, where some backends would degrade it to "no
// filter" and leak the whole index.
func (r *Retriever) Retrieve(ctx context.Context, question, callerRole string, limit int) ([]domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = DefaultTopK
	}

	accessible := r.policy.AccessibleRoles(callerRole)
	if len(accessible) == 0 {
		return nil, nil
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.vectorDB.Search(ctx, queryVector, limit, accessible)
	if err != nil {
		return nil, fmt.Errorf("search vector db: %w", err)
	}

	// Stores rank by score; re-sorting with the point id as tie-break makes
	// repeated queries against an unchanged index reproducible.
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}
