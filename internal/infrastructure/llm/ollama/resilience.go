package ollama

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/ports"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/resilience"
)

// ResilientEmbedder wraps the Ollama embedder with bounded retry and a
// circuit breaker. Access denial never reaches this layer: the orchestrator
// short-circuits it before any provider call, so nothing here can retry a
// denial.
type ResilientEmbedder struct {
	inner ports.Embedder
	exec  *resilience.Executor
}

func NewResilientEmbedder(inner ports.Embedder, exec *resilience.Executor) *ResilientEmbedder {
	return &ResilientEmbedder{inner: inner, exec: exec}
}

func (e *ResilientEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := e.exec.Execute(ctx, "ollama_embed", func(ctx context.Context) error {
		var callErr error
		out, callErr = e.inner.Embed(ctx, texts)
		return callErr
	}, classifyProviderError)
	return out, wrapTemporary("embed", err)
}

func (e *ResilientEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.exec.Execute(ctx, "ollama_embed_query", func(ctx context.Context) error {
		var callErr error
		out, callErr = e.inner.EmbedQuery(ctx, text)
		return callErr
	}, classifyProviderError)
	return out, wrapTemporary("embed query", err)
}

// ResilientGenerator applies the same policy to answer generation. The
// generator itself stays single-shot per contract; the retry loop lives
// here, at the provider boundary.
type ResilientGenerator struct {
	inner ports.AnswerGenerator
	exec  *resilience.Executor
}

func NewResilientGenerator(inner ports.AnswerGenerator, exec *resilience.Executor) *ResilientGenerator {
	return &ResilientGenerator{inner: inner, exec: exec}
}

func (g *ResilientGenerator) GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error) {
	var out string
	err := g.exec.Execute(ctx, "ollama_generate", func(ctx context.Context) error {
		var callErr error
		out, callErr = g.inner.GenerateAnswer(ctx, question, chunks)
		return callErr
	}, classifyProviderError)
	return out, wrapTemporary("generate", err)
}

func classifyProviderError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if retryableStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

func wrapTemporary(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyProviderError(err).Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
