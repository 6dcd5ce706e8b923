package domain

// RoleGeneral is the shared content role every configured caller may read.
const RoleGeneral = "general"

// RawUnit is one parsed piece of source content. The corpus walker stamps
// ContentRole from the subdirectory the file was found under; loaders fill
// the rest. Units are immutable once produced.
type RawUnit struct {
	Text        string
	SourceName  string
	ContentRole string
	SectionPath []string
}

type LoadStatus string

const (
	LoadOK      LoadStatus = "ok"
	LoadSkipped LoadStatus = "skipped"
	LoadFailed  LoadStatus = "failed"
)

// LoadResult is the per-file outcome of a loader: either units, an explicit
// skip (unrecognized format), or a parse failure. Callers branch on Status
// instead of inspecting nil slices.
type LoadResult struct {
	Status LoadStatus
	Units  []RawUnit
	Err    error
}

// Chunk is the atomic unit of indexing and retrieval. ContentRole, SourceName
// and SectionPath are inherited unmodified from the parent RawUnit.
type Chunk struct {
	Text        string
	ContentRole string
	SourceName  string
	SectionPath []string
	Vector      []float32
}

// IngestReport summarizes one completed batch ingestion run.
type IngestReport struct {
	FilesLoaded  int
	FilesSkipped int
	FilesFailed  int
	Units        int
	Chunks       int
	Roles        []string
}
