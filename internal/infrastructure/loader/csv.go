package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// CSVLoader yields one unit per data record, rendered as "header: value"
// lines so the embedding sees field names alongside values.
type CSVLoader struct{}

func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

func (l *CSVLoader) Load(path string) ([]domain.RawUnit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	sourceName := filepath.Base(path)

	units := make([]domain.RawUnit, 0, len(records)-1)
	for _, record := range records[1:] {
		text := renderRecord(header, record)
		if text == "" {
			continue
		}
		units = append(units, domain.RawUnit{
			Text:       text,
			SourceName: sourceName,
		})
	}
	return units, nil
}

func renderRecord(header, record []string) string {
	var buf strings.Builder
	for i, value := range record {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		name := fmt.Sprintf("column_%d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			name = strings.TrimSpace(header[i])
		}
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\n")
	}
	return strings.TrimSpace(buf.String())
}
