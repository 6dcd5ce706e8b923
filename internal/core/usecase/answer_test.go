package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/policy"
)

func newAnswerFixture(store *fakeVectorStore, gen *fakeGenerator) (*AnswerUseCase, *fakeEmbedder) {
	p := policy.Default()
	embedder := &fakeEmbedder{}
	return NewAnswerUseCase(p, NewRetriever(p, embedder, store), gen), embedder
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	uc, _ := newAnswerFixture(&fakeVectorStore{}, &fakeGenerator{})

	_, err := uc.Answer(context.Background(), "   ", "finance", 5)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswerDeniesUnknownRoleWithoutProviderCalls(t *testing.T) {
	store := &fakeVectorStore{}
	gen := &fakeGenerator{answer: "should never be produced"}
	uc, embedder := newAnswerFixture(store, gen)

	answer, err := uc.Answer(context.Background(), "what is our revenue", "contractor", 5)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !answer.Denied {
		t.Fatalf("expected denied answer")
	}
	if answer.Text != domain.DeniedAnswerText {
		t.Fatalf("denial text = %q, want %q", answer.Text, domain.DeniedAnswerText)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("denied answer carries %d sources", len(answer.Sources))
	}
	if embedder.queryCalls != 0 || store.searchCalls != 0 || gen.calls != 0 {
		t.Fatalf("denial reached providers: embed=%d search=%d generate=%d",
			embedder.queryCalls, store.searchCalls, gen.calls)
	}
}

func TestAnswerReturnsGeneratedTextWithSources(t *testing.T) {
	store := &fakeVectorStore{
		points: []domain.RetrievedChunk{
			{ID: "p1", Text: "engineering runbook", ContentRole: "engineering", Score: 0.8},
		},
	}
	gen := &fakeGenerator{answer: "the runbook says restart the service"}
	uc, _ := newAnswerFixture(store, gen)

	answer, err := uc.Answer(context.Background(), "how do I restart", "engineering", 5)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Denied {
		t.Fatalf("unexpected denial")
	}
	if answer.Text != gen.answer {
		t.Fatalf("answer text = %q", answer.Text)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].ID != "p1" {
		t.Fatalf("sources = %v", answer.Sources)
	}
}

func TestAnswerNeverLeaksOtherRolesContext(t *testing.T) {
	// The finance point scores far above everything else; it still must not
	// reach the generator for a marketing caller.
	store := &fakeVectorStore{
		points: []domain.RetrievedChunk{
			{ID: "fin", Text: "bonus pool is $500,000", ContentRole: "finance", Score: 0.99},
			{ID: "gen", Text: "office closed on holidays", ContentRole: domain.RoleGeneral, Score: 0.4},
		},
	}
	gen := &fakeGenerator{answer: "answer"}
	uc, _ := newAnswerFixture(store, gen)

	answer, err := uc.Answer(context.Background(), "what is the bonus pool", "marketing", 5)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Denied {
		t.Fatalf("marketing has access to shared content, should not be denied")
	}
	for _, c := range gen.lastChunks {
		if c.ContentRole == "finance" {
			t.Fatalf("finance chunk %q reached the generator for a marketing caller", c.ID)
		}
	}
	for _, c := range answer.Sources {
		if c.ContentRole == "finance" {
			t.Fatalf("finance chunk %q surfaced in sources for a marketing caller", c.ID)
		}
	}
}

func TestAnswerPropagatesProviderErrors(t *testing.T) {
	store := &fakeVectorStore{
		points: []domain.RetrievedChunk{{ID: "p1", ContentRole: domain.RoleGeneral, Score: 0.5}},
	}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	uc, _ := newAnswerFixture(store, gen)

	answer, err := uc.Answer(context.Background(), "question", "employee", 5)
	if err == nil {
		t.Fatalf("expected error, got answer %+v", answer)
	}
	if answer != nil {
		t.Fatalf("provider failure must not produce an answer, got %+v", answer)
	}
}

func TestAnswerSearchErrorIsNotConvertedToDenial(t *testing.T) {
	store := &fakeVectorStore{searchErr: errors.New("qdrant down")}
	uc, _ := newAnswerFixture(store, &fakeGenerator{})

	_, err := uc.Answer(context.Background(), "question", "employee", 5)
	if err == nil {
		t.Fatalf("expected error when search fails")
	}
}
