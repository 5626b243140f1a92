package model

import "time"

// ClassificationFlags are the optimization tags derived for a node.
type ClassificationFlags struct {
	UnoptimizedFormat   bool
	DeprecatedShader    bool
	ManualFixOnlyShader bool
}

// Any reports whether at least one flag is set.
func (f ClassificationFlags) Any() bool {
	return f.UnoptimizedFormat || f.DeprecatedShader || f.ManualFixOnlyShader
}

// Labels returns the short names of the set flags, in a fixed order.
func (f ClassificationFlags) Labels() []string {
	labels := make([]string, 0, 3)
	if f.UnoptimizedFormat {
		labels = append(labels, "unoptimized-format")
	}

	if f.DeprecatedShader {
		labels = append(labels, "deprecated-shader")
	}

	if f.ManualFixOnlyShader {
		labels = append(labels, "manual-fix-only")
	}

	return labels
}

// WeightedEntry pairs a node with its estimated cost for one scan.
type WeightedEntry struct {
	Node      ResourceNode
	CostBytes int64
	Flags     ClassificationFlags
	Reachable bool
}

// Rankable reports whether the entry may appear in rankings at all.
func (e WeightedEntry) Rankable() bool {
	return !e.Node.Missing
}

// TopCandidate reports whether the entry may appear in a top-K list.
func (e WeightedEntry) TopCandidate() bool {
	return e.Rankable() && !e.Node.MetadataUnavailable
}

// RankKey selects the column a listing is ordered by.
type RankKey string

// Available rank keys.
const (
	RankByCost     RankKey = "cost"
	RankByPath     RankKey = "path"
	RankByCategory RankKey = "category"
	RankByCreator  RankKey = "creator"
)

// SortOrder is the direction of a listing.
type SortOrder int

// Available sort orders.
const (
	Descending SortOrder = iota
	Ascending
)

// Reverse returns the opposite order.
func (o SortOrder) Reverse() SortOrder {
	if o == Ascending {
		return Descending
	}

	return Ascending
}

func (o SortOrder) String() string {
	if o == Ascending {
		return "asc"
	}

	return "desc"
}

// TopLists holds the independently computed per-category top-K lists.
type TopLists struct {
	Limit    int
	Textures []WeightedEntry
	General  []WeightedEntry
}

// Summary aggregates a full scan. It is never computed from a top-K subset.
type Summary struct {
	Count                    int
	TextureCount             int
	MaterialCount            int
	OtherCount               int
	ReachableCount           int
	UnreachableCount         int
	MissingCount             int
	MetadataUnavailableCount int
	FlaggedCount             int
	TotalRawBytes            int64
	TotalTextureBytes        int64
	UnreachableRawBytes      int64
	UnreachableCostBytes     int64
}

// WarningKind classifies the non-fatal problems found while scanning or relocating.
type WarningKind string

// Known warning kinds.
const (
	WarningMissingResource     WarningKind = "missing-resource"
	WarningMetadataUnavailable WarningKind = "metadata-unavailable"
)

// Warning is a non-fatal per-path problem surfaced after a batch.
type Warning struct {
	Kind   WarningKind
	Path   Path
	Reason string
}

// ScanResult is everything a single scan produced. Entries are kept in scan order.
type ScanResult struct {
	ID          string
	ProjectName string
	ProjectRoot Path
	StartedAt   time.Time
	Roots       []Path
	Entries     []WeightedEntry
	Warnings    []Warning
	Summary     Summary
}

// Reachable returns the reachable entries in scan order.
func (r *ScanResult) Reachable() []WeightedEntry {
	return r.partition(true)
}

// Unreachable returns the unreachable entries in scan order.
func (r *ScanResult) Unreachable() []WeightedEntry {
	return r.partition(false)
}

func (r *ScanResult) partition(reachable bool) []WeightedEntry {
	out := make([]WeightedEntry, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.Reachable == reachable {
			out = append(out, entry)
		}
	}

	return out
}

// Lookup returns the entry for path.
func (r *ScanResult) Lookup(path Path) (WeightedEntry, bool) {
	for _, entry := range r.Entries {
		if entry.Node.Path == path {
			return entry, true
		}
	}

	return WeightedEntry{}, false
}
