package ollama

import (
	"fmt"
	"strings"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// buildAnswerPrompt grounds the model in the retrieved context. The
// instruction to answer only from context and admit not knowing is a soft
// constraint: the model can still hallucinate, which is why access control
// lives in retrieval and never in the prompt.
func buildAnswerPrompt(question string, chunks []domain.RetrievedChunk) string {
	var contextBuilder strings.Builder
	for idx, chunk := range chunks {
		section := ""
		if len(chunk.SectionPath) > 0 {
			section = " section=" + strings.Join(chunk.SectionPath, " > ")
		}
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] source=%s%s\n%s\n\n",
			idx+1,
			chunk.SourceName,
			section,
			chunk.Text,
		))
	}

	return fmt.Sprintf(`You are a helpful assistant for FinSolve Technologies.
Answer the question based only on the following context.
If you don't know the answer, just say that you don't know.

Context:
%s
Question:
%s
`, contextBuilder.String(), question)
}
