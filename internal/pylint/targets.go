package pylint

import (
	"path/filepath"
	"strings"
)

// FilterTargets selects the lint target set from the full tracked file
// list: paths under one of the first-party dirs with one of the wanted
// extensions. The input order is preserved.
func FilterTargets(tracked []string, dirs []string, extensions []string) []string {
	var targets []string
	for _, path := range tracked {
		if path == "" {
			continue
		}
		if !underAny(path, dirs) {
			continue
		}
		if !hasAnyExtension(path, extensions) {
			continue
		}
		targets = append(targets, path)
	}
	return targets
}

func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		dir = strings.TrimSuffix(dir, "/")
		if dir == "" {
			continue
		}
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	return false
}

func hasAnyExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}
