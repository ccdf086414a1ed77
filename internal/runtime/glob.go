package runtime

import "path/filepath"

// matchGlob reports whether name matches pattern using filepath.Match
// semantics over the whole path (not just the final element), by matching
// component-by-component.
func matchGlob(pattern, name string) (bool, error) {
	return filepath.Match(pattern, name)
}
