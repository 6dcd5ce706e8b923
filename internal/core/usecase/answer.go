package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/policy"
	"github.com/finsolve/knowledge-assistant/internal/core/ports"
)

// AnswerUseCase wires the retriever and the generator into the single
// question -> answer operation. Stateless per call.
type AnswerUseCase struct {
	policy    *policy.AccessPolicy
	retriever *Retriever
	generator ports.AnswerGenerator
}

func NewAnswerUseCase(
	accessPolicy *policy.AccessPolicy,
	retriever *Retriever,
	generator ports.AnswerGenerator,
) *AnswerUseCase {
	return &AnswerUseCase{
		policy:    accessPolicy,
		retriever: retriever,
		generator: generator,
	}
}

// Answer resolves access first: a caller whose role grants nothing gets the
// fixed denial answer without a retriever or generator call. Provider
// failures are returned as errors, never converted into a denial or an
// empty answer.
func (uc *AnswerUseCase) Answer(ctx context.Context, question, callerRole string, limit int) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("empty question"))
	}

	if len(uc.policy.AccessibleRoles(callerRole)) == 0 {
		return domain.DeniedAnswer(), nil
	}

	chunks, err := uc.retriever.Retrieve(ctx, question, callerRole, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: chunks,
	}, nil
}
