package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// FileLoader parses one file into raw units. Implementations fill Text,
// SourceName and SectionPath; the walker stamps ContentRole.
type FileLoader interface {
	Load(path string) ([]domain.RawUnit, error)
}

// Walker walks a corpus root whose immediate subdirectories are named after
// content roles and produces role-tagged units for every recognized file
// beneath them.
type Walker struct {
	root string
	log  *slog.Logger

	markdown FileLoader
	pdf      FileLoader
	csv      FileLoader
	xlsx     FileLoader
}

func NewWalker(root string, log *slog.Logger) *Walker {
	if log == nil {
		log = slog.Default()
	}
	return &Walker{
		root:     root,
		log:      log,
		markdown: NewMarkdownLoader(),
		pdf:      NewPDFLoader(),
		csv:      NewCSVLoader(),
		xlsx:     NewXLSXLoader(),
	}
}

// Load walks every role subdirectory. A single file's parse failure is
// logged and skipped so one bad file cannot block ingestion of an entire
// role's data; only a missing or unreadable root fails the walk.
func (w *Walker) Load(ctx context.Context) ([]domain.RawUnit, domain.IngestReport, error) {
	var report domain.IngestReport

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, report, fmt.Errorf("read corpus root %s: %w", w.root, err)
	}

	var units []domain.RawUnit
	rolesSeen := map[string]struct{}{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		role := entry.Name()
		roleDir := filepath.Join(w.root, role)

		walkErr := filepath.WalkDir(roleDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				return nil
			}

			result := w.loadFile(path)
			switch result.Status {
			case domain.LoadSkipped:
				report.FilesSkipped++
				w.log.Debug("file_skipped", "path", path)
			case domain.LoadFailed:
				report.FilesFailed++
				w.log.Warn("file_parse_failed", "path", path, "error", result.Err)
			case domain.LoadOK:
				report.FilesLoaded++
				// A parseable file can still yield nothing (header-only
				// csv, blank markdown); only a role that contributed units
				// belongs in the report.
				if len(result.Units) > 0 {
					for i := range result.Units {
						result.Units[i].ContentRole = role
					}
					units = append(units, result.Units...)
					rolesSeen[role] = struct{}{}
				}
				w.log.Info("file_loaded", "path", path, "role", role, "units", len(result.Units))
			}
			return nil
		})
		if walkErr != nil {
			return nil, report, fmt.Errorf("walk role dir %s: %w", roleDir, walkErr)
		}
	}

	report.Units = len(units)
	report.Roles = sortedKeys(rolesSeen)
	return units, report, nil
}

func (w *Walker) loadFile(path string) domain.LoadResult {
	var fl FileLoader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		fl = w.markdown
	case ".pdf":
		fl = w.pdf
	case ".csv":
		fl = w.csv
	case ".xlsx":
		fl = w.xlsx
	default:
		return domain.LoadResult{Status: domain.LoadSkipped}
	}

	loaded, err := fl.Load(path)
	if err != nil {
		return domain.LoadResult{Status: domain.LoadFailed, Err: err}
	}
	return domain.LoadResult{Status: domain.LoadOK, Units: loaded}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
