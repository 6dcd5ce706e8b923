package usecase

import (
	"context"
	"testing"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/policy"
)

func TestRetrieveUnknownRoleShortCircuitsBeforeEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeVectorStore{}
	r := NewRetriever(policy.Default(), embedder, store)

	chunks, err := r.Retrieve(context.Background(), "what is our revenue", "contractor", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for unknown role, got %d", len(chunks))
	}
	if embedder.queryCalls != 0 {
		t.Fatalf("embedder called %d times for a caller with no access", embedder.queryCalls)
	}
	if store.searchCalls != 0 {
		t.Fatalf("vector store called %d times for a caller with no access", store.searchCalls)
	}
}

func TestRetrievePassesAccessibleRolesAsFilter(t *testing.T) {
	store := &fakeVectorStore{}
	r := NewRetriever(policy.Default(), &fakeEmbedder{}, store)

	if _, err := r.Retrieve(context.Background(), "leave policy", "hr", 3); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if store.lastLimit != 3 {
		t.Fatalf("limit = %d, want 3", store.lastLimit)
	}
	want := map[string]bool{"hr": true, domain.RoleGeneral: true}
	if len(store.lastRoles) != len(want) {
		t.Fatalf("filter roles = %v, want exactly hr and %s", store.lastRoles, domain.RoleGeneral)
	}
	for _, role := range store.lastRoles {
		if !want[role] {
			t.Fatalf("unexpected role %q in filter %v", role, store.lastRoles)
		}
	}
}

func TestRetrieveDefaultsLimit(t *testing.T) {
	store := &fakeVectorStore{}
	r := NewRetriever(policy.Default(), &fakeEmbedder{}, store)

	if _, err := r.Retrieve(context.Background(), "question", "employee", 0); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if store.lastLimit != DefaultTopK {
		t.Fatalf("limit = %d, want %d", store.lastLimit, DefaultTopK)
	}
}

func TestRetrieveOrdersByScoreThenID(t *testing.T) {
	store := &fakeVectorStore{
		points: []domain.RetrievedChunk{
			{ID: "b", ContentRole: domain.RoleGeneral, Score: 0.7},
			{ID: "c", ContentRole: domain.RoleGeneral, Score: 0.9},
			{ID: "a", ContentRole: domain.RoleGeneral, Score: 0.7},
		},
	}
	r := NewRetriever(policy.Default(), &fakeEmbedder{}, store)

	chunks, err := r.Retrieve(context.Background(), "question", "employee", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	gotIDs := make([]string, len(chunks))
	for i, c := range chunks {
		gotIDs[i] = c.ID
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotIDs, want)
		}
	}
}
