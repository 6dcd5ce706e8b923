package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// PDFLoader yields one unit per page.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Load(path string) ([]domain.RawUnit, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	sourceName := filepath.Base(path)
	totalPages := reader.NumPage()

	units := make([]domain.RawUnit, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", pageNum, err)
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		units = append(units, domain.RawUnit{
			Text:        content,
			SourceName:  sourceName,
			SectionPath: []string{fmt.Sprintf("page %d", pageNum)},
		})
	}
	return units, nil
}
