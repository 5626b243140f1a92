package domain

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// DefaultContentPrefix is the folder holding project content.
const DefaultContentPrefix = "Assets/"

// excludedExtensions are never content: source code, scene documents (counted as
// roots) and sidecar metadata.
var excludedExtensions = map[string]bool{
	".cs":    true,
	".unity": true,
	".meta":  true,
}

// PathFilter decides at ingestion whether a path is a content resource.
type PathFilter struct {
	prefix   string
	excludes []*regexp.Regexp
}

// NewPathFilter compiles the user exclude patterns. An empty prefix accepts any folder.
func NewPathFilter(prefix string, patterns []string) (*PathFilter, error) {
	filter := &PathFilter{prefix: prefix}

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		filter.excludes = append(filter.excludes, re)
	}

	return filter, nil
}

// Include reports whether p is a content resource.
func (f *PathFilter) Include(p m.Path) bool {
	name := string(p)
	if name == "" {
		return false
	}

	if f.prefix != "" && !strings.HasPrefix(name, f.prefix) {
		return false
	}

	if excludedExtensions[strings.ToLower(path.Ext(name))] {
		return false
	}

	for _, re := range f.excludes {
		if re.MatchString(name) {
			return false
		}
	}

	return true
}
