package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// ParseRankKey validates a user supplied rank key.
func ParseRankKey(value string) (m.RankKey, error) {
	key := m.RankKey(strings.ToLower(strings.TrimSpace(value)))

	switch key {
	case m.RankByCost, m.RankByPath, m.RankByCategory, m.RankByCreator:
		return key, nil
	case "":
		return m.RankByCost, nil
	}

	return "", fmt.Errorf("unknown sort key %q (want cost, path, category or creator)", value)
}

// ParseSortOrder validates a user supplied sort order.
func ParseSortOrder(value string) (m.SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "desc", "descending":
		return m.Descending, nil
	case "asc", "ascending":
		return m.Ascending, nil
	}

	return m.Descending, fmt.Errorf("unknown sort order %q (want asc or desc)", value)
}

// Rank returns a full reorder of the rankable entries. The ascending order breaks ties
// by scan order and the descending order is its exact reverse. A positive limit keeps
// the first limit entries.
func Rank(entries []m.WeightedEntry, key m.RankKey, order m.SortOrder, limit int) []m.WeightedEntry {
	ranked := make([]m.WeightedEntry, 0, len(entries))

	for _, entry := range entries {
		if entry.Rankable() {
			ranked = append(ranked, entry)
		}
	}

	less := lessFor(key)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if less(a, b) {
			return true
		}

		if less(b, a) {
			return false
		}

		return a.Node.Order < b.Node.Order
	})

	if order == m.Descending {
		for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		}
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

func lessFor(key m.RankKey) func(a, b m.WeightedEntry) bool {
	switch key {
	case m.RankByPath:
		return func(a, b m.WeightedEntry) bool { return a.Node.Path < b.Node.Path }
	case m.RankByCategory:
		return func(a, b m.WeightedEntry) bool { return m.CategoryOf(a.Node) < m.CategoryOf(b.Node) }
	case m.RankByCreator:
		return func(a, b m.WeightedEntry) bool { return a.Node.Creator < b.Node.Creator }
	case m.RankByCost:
		return func(a, b m.WeightedEntry) bool { return a.CostBytes < b.CostBytes }
	}

	return func(a, b m.WeightedEntry) bool { return a.CostBytes < b.CostBytes }
}

// TopK returns the k most expensive entries of each category, computed independently.
// Missing entries and textures without metadata are never candidates.
func TopK(entries []m.WeightedEntry, k int) m.TopLists {
	var textures, general []m.WeightedEntry

	for _, entry := range entries {
		if !entry.TopCandidate() {
			continue
		}

		if m.CategoryOf(entry.Node) == m.CategoryTexture {
			textures = append(textures, entry)
		} else {
			general = append(general, entry)
		}
	}

	return m.TopLists{
		Limit:    k,
		Textures: Rank(textures, m.RankByCost, m.Descending, k),
		General:  Rank(general, m.RankByCost, m.Descending, k),
	}
}

// Summarize aggregates every entry of a scan.
func Summarize(entries []m.WeightedEntry) m.Summary {
	var summary m.Summary

	for _, entry := range entries {
		node := entry.Node
		summary.Count++

		switch node.Kind {
		case m.KindTexture:
			summary.TextureCount++
			summary.TotalTextureBytes += entry.CostBytes
		case m.KindMaterial:
			summary.MaterialCount++
		case m.KindOther:
			summary.OtherCount++
		}

		if entry.Reachable {
			summary.ReachableCount++
		} else {
			summary.UnreachableCount++
			summary.UnreachableRawBytes += node.RawSizeBytes
			summary.UnreachableCostBytes += entry.CostBytes
		}

		if node.Missing {
			summary.MissingCount++
		}

		if node.MetadataUnavailable {
			summary.MetadataUnavailableCount++
		}

		if entry.Flags.Any() {
			summary.FlaggedCount++
		}

		summary.TotalRawBytes += node.RawSizeBytes
	}

	return summary
}

// Reachability selects one side of the partition, or both.
type Reachability string

// Reachability values.
const (
	ReachabilityAll         Reachability = "all"
	ReachabilityReachable   Reachability = "reachable"
	ReachabilityUnreachable Reachability = "unreachable"
)

// EntryFilter narrows a listing.
type EntryFilter struct {
	Reachability Reachability
	Kinds        []m.ResourceKind
	FlaggedOnly  bool
}

// Match reports whether entry passes the filter.
func (f EntryFilter) Match(entry m.WeightedEntry) bool {
	switch f.Reachability {
	case ReachabilityReachable:
		if !entry.Reachable {
			return false
		}
	case ReachabilityUnreachable:
		if entry.Reachable {
			return false
		}
	case ReachabilityAll, "":
	}

	if f.FlaggedOnly && !entry.Flags.Any() {
		return false
	}

	if len(f.Kinds) == 0 {
		return true
	}

	for _, kind := range f.Kinds {
		if entry.Node.Kind == kind {
			return true
		}
	}

	return false
}

// Filter keeps the entries matching filter, in their original order.
func Filter(entries []m.WeightedEntry, filter EntryFilter) []m.WeightedEntry {
	out := make([]m.WeightedEntry, 0, len(entries))

	for _, entry := range entries {
		if filter.Match(entry) {
			out = append(out, entry)
		}
	}

	return out
}

// Select keeps the selected entries. Paths absent from state use def.
func Select(entries []m.WeightedEntry, state m.SelectionState, def bool) []m.WeightedEntry {
	out := make([]m.WeightedEntry, 0, len(entries))

	for _, entry := range entries {
		if state.IsSelected(entry.Node.Path, def) {
			out = append(out, entry)
		}
	}

	return out
}

// SelectionFromPatterns builds an explicit selection for entries. With only patterns
// nothing is selected unless it matches one; skip patterns then deselect matches.
func SelectionFromPatterns(entries []m.WeightedEntry, only, skip []string) (m.SelectionState, error) {
	onlyRes, err := compilePatterns(only)
	if err != nil {
		return nil, err
	}

	skipRes, err := compilePatterns(skip)
	if err != nil {
		return nil, err
	}

	state := make(m.SelectionState, len(entries))

	for _, entry := range entries {
		path := string(entry.Node.Path)
		selected := len(onlyRes) == 0 || matchesAny(onlyRes, path)

		if matchesAny(skipRes, path) {
			selected = false
		}

		state.Set(entry.Node.Path, selected)
	}

	return state, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid selection pattern %q: %w", pattern, err)
		}

		out = append(out, re)
	}

	return out, nil
}

func matchesAny(res []*regexp.Regexp, value string) bool {
	for _, re := range res {
		if re.MatchString(value) {
			return true
		}
	}

	return false
}
