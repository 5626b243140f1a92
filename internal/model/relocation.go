package model

import "time"

// RelocationMove is a single planned move of a resource into the backup folder.
type RelocationMove struct {
	Source      Path
	Destination Path
	CostBytes   int64
	RawBytes    int64
}

// RelocationPlan is the ordered list of moves computed from one scan.
type RelocationPlan struct {
	ScanID       string
	ProjectName  string
	BackupFolder string // <project>_RemovedAssets_<timestamp>
	BackupPath   Path
	CreatedAt    time.Time
	Moves        []RelocationMove
	TotalCost    int64
	TotalRaw     int64
}

// Len returns the number of planned moves.
func (p RelocationPlan) Len() int {
	return len(p.Moves)
}

// ItemFailure describes why a single item could not be processed.
type ItemFailure struct {
	Path   Path
	Reason string
}

// RelocationResult summarizes an executed plan (or a restore).
type RelocationResult struct {
	BackupFolder    string
	BackupPath      Path
	Planned         int
	Moved           []RelocationMove
	Missing         []Path
	Failed          []ItemFailure
	SidecarFailures []ItemFailure
	StartedAt       time.Time
	FinishedAt      time.Time
	MovedCostBytes  int64
	MovedRawBytes   int64
}

// Succeeded returns the number of items that were moved.
func (r RelocationResult) Succeeded() int {
	return len(r.Moved)
}

// Unsuccessful returns the number of missing plus failed items.
func (r RelocationResult) Unsuccessful() int {
	return len(r.Missing) + len(r.Failed)
}

// FileEdit is a planned rewrite of a single project file.
type FileEdit struct {
	Path   Path // resource the edit is about
	File   Path // file actually rewritten (e.g. the sidecar)
	Before []byte
	After  []byte
}

// Changed reports whether applying the edit alters the file.
func (e FileEdit) Changed() bool {
	return string(e.Before) != string(e.After)
}

// BatchResult summarizes a batch import-setting or material edit.
type BatchResult struct {
	Target   string
	Selected int
	Applied  []Path
	Skipped  []ItemFailure
	Failed   []ItemFailure
	Edits    []FileEdit
	DryRun   bool
}

// HistoryKind distinguishes persisted history records.
type HistoryKind string

// Known history kinds.
const (
	HistoryScan       HistoryKind = "scan"
	HistoryRelocation HistoryKind = "relocation"
	HistoryRestore    HistoryKind = "restore"
)

// HistoryRecord is a persisted summary of a scan or relocation. Per-entry weights are
// never stored.
type HistoryRecord struct {
	ID           int64
	Kind         HistoryKind
	ProjectName  string
	ScanID       string
	CreatedAt    time.Time
	Count        int
	Unreachable  int
	RawBytes     int64
	TextureBytes int64
	Succeeded    int
	Failed       int
	BackupPath   Path
}

// JournalItem records one executed move so that it can be restored.
// Source is relative to the project root and Destination to the backup folder.
type JournalItem struct {
	Source      Path `yaml:"source"`
	Destination Path `yaml:"destination"`
	Sidecar     bool `yaml:"sidecar,omitempty"`
}

// Journal is written into the backup folder after a relocation.
type Journal struct {
	Project      string        `yaml:"project"`
	ProjectRoot  Path          `yaml:"project_root"`
	BackupFolder string        `yaml:"backup_folder"`
	ScanID       string        `yaml:"scan_id,omitempty"`
	CreatedAt    time.Time     `yaml:"created_at"`
	Items        []JournalItem `yaml:"items"`
}
