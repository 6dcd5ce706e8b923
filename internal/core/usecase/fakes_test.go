package usecase

import (
	"context"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

type fakeEmbedder struct {
	embedCalls int
	queryCalls int
	embedErr   error
	queryErr   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 0.5}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return []float32{0.1, 0.2}, nil
}

// fakeVectorStore honors the role filter the way the real engine does: a
// point outside allowedRoles is never a candidate, regardless of score.
type fakeVectorStore struct {
	points []domain.RetrievedChunk

	searchCalls  int
	lastLimit    int
	lastRoles    []string
	searchErr    error
	replaced     []domain.Chunk
	replaceCalls int
}

func (f *fakeVectorStore) ReplaceCollection(_ context.Context, chunks []domain.Chunk) error {
	f.replaceCalls++
	f.replaced = chunks
	return nil
}

func (f *fakeVectorStore) Search(_ context.Context, _ []float32, limit int, allowedRoles []string) ([]domain.RetrievedChunk, error) {
	f.searchCalls++
	f.lastLimit = limit
	f.lastRoles = allowedRoles
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	allowed := map[string]struct{}{}
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	var out []domain.RetrievedChunk
	for _, p := range f.points {
		if _, ok := allowed[p.ContentRole]; !ok {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeVectorStore) Count(_ context.Context) (int, error) {
	return len(f.points), nil
}

type fakeGenerator struct {
	calls      int
	lastChunks []domain.RetrievedChunk
	answer     string
	err        error
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, _ string, chunks []domain.RetrievedChunk) (string, error) {
	f.calls++
	f.lastChunks = chunks
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeLoader struct {
	units  []domain.RawUnit
	report domain.IngestReport
	err    error
}

func (f *fakeLoader) Load(_ context.Context) ([]domain.RawUnit, domain.IngestReport, error) {
	return f.units, f.report, f.err
}
