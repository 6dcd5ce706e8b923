package loader

import (
	"strings"
	"testing"
)

func TestCSVOneUnitPerRecordWithHeaderNames(t *testing.T) {
	content := "name,department,salary\nAlice,finance,90000\nBob,engineering,95000\n"
	path := writeTempFile(t, "roster.csv", content)

	units, err := NewCSVLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 records, got %d", len(units))
	}
	if !strings.Contains(units[0].Text, "department: finance") {
		t.Fatalf("header name lost in record text: %q", units[0].Text)
	}
	if units[0].SourceName != "roster.csv" {
		t.Fatalf("source name = %q", units[0].SourceName)
	}
}

func TestCSVSkipsEmptyFields(t *testing.T) {
	content := "name,notes\nAlice,\n"
	path := writeTempFile(t, "sparse.csv", content)

	units, err := NewCSVLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 record, got %d", len(units))
	}
	if strings.Contains(units[0].Text, "notes") {
		t.Fatalf("empty field rendered: %q", units[0].Text)
	}
}

func TestCSVRaggedRecordsUseColumnFallback(t *testing.T) {
	content := "name\nAlice,extra-value\n"
	path := writeTempFile(t, "ragged.csv", content)

	units, err := NewCSVLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 record, got %d", len(units))
	}
	if !strings.Contains(units[0].Text, "column_2: extra-value") {
		t.Fatalf("fallback column name missing: %q", units[0].Text)
	}
}

func TestCSVHeaderOnlyYieldsNothing(t *testing.T) {
	path := writeTempFile(t, "header.csv", "name,department\n")

	units, err := NewCSVLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
}
