package model

// SelectionState records explicit per-path selection. Paths that are absent take the
// caller's default.
type SelectionState map[Path]bool

// IsSelected reports whether path is selected, falling back to def when it is absent.
func (s SelectionState) IsSelected(path Path, def bool) bool {
	if selected, ok := s[path]; ok {
		return selected
	}

	return def
}

// Set records an explicit choice for path.
func (s SelectionState) Set(path Path, selected bool) {
	s[path] = selected
}

// Toggle flips the selection of path relative to def.
func (s SelectionState) Toggle(path Path, def bool) {
	s[path] = !s.IsSelected(path, def)
}
