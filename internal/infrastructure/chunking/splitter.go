package chunking

import (
	"strings"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// Splitter windows oversized units into overlapping rune windows. Units that
// already fit the window (heading sections, pdf pages, csv records) pass
// through as a single chunk with identical text.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Chunk converts units into chunks. ContentRole, SourceName and SectionPath
// are copied from the parent unit onto every window it produces; the role
// tag established at load time must survive splitting untouched.
func (s *Splitter) Chunk(units []domain.RawUnit) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(units))
	for _, unit := range units {
		for _, window := range s.split(unit.Text) {
			out = append(out, domain.Chunk{
				Text:        window,
				ContentRole: unit.ContentRole,
				SourceName:  unit.SourceName,
				SectionPath: unit.SectionPath,
			})
		}
	}
	return out
}

func (s *Splitter) split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.ChunkSize {
		return []string{string(runes)}
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			out = append(out, window)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
