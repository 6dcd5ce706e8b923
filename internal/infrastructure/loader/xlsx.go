package loader

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// XLSXLoader yields one unit per data row across all sheets, with the sheet
// name kept as section metadata.
type XLSXLoader struct{}

func NewXLSXLoader() *XLSXLoader {
	return &XLSXLoader{}
}

func (l *XLSXLoader) Load(path string) ([]domain.RawUnit, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	sourceName := filepath.Base(path)
	var units []domain.RawUnit

	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		header := rows[0]
		for _, row := range rows[1:] {
			text := renderRecord(header, row)
			if text == "" {
				continue
			}
			units = append(units, domain.RawUnit{
				Text:        text,
				SourceName:  sourceName,
				SectionPath: []string{sheet},
			})
		}
	}
	return units, nil
}
