package folders

import (
	"sort"
	"strings"
)

// InScope reports whether folderPath falls under the scope folder:
// either the folder itself or any descendant. The separator check keeps
// "Action" from matching "ActionFigures". The catalog's SQL folder
// filter mirrors this predicate for query-time scoping.
func InScope(folderPath, scope string) bool {
	if scope == "" {
		return true
	}
	return folderPath == scope || strings.HasPrefix(folderPath, scope+"/")
}

// Exists reports whether scope names a known folder: itself present in
// the path set, or an ancestor of a present path.
func Exists(folderPaths []string, scope string) bool {
	if scope == "" {
		return true
	}
	for _, p := range folderPaths {
		if InScope(p, scope) {
			return true
		}
	}
	return false
}

// TopLevel returns the sorted set of distinct first segments among all
// folder paths.
func TopLevel(folderPaths []string) []string {
	seen := make(map[string]bool)
	for _, p := range folderPaths {
		if p == "" {
			continue
		}
		name, _, _ := strings.Cut(p, "/")
		seen[name] = true
	}
	return sortedKeys(seen)
}

// Children returns the sorted set of distinct direct child folder names
// under parent: the next path segment of every folder path strictly below
// parent. Deeper descendants contribute only their first segment below
// parent.
func Children(folderPaths []string, parent string) []string {
	if parent == "" {
		return TopLevel(folderPaths)
	}

	prefix := parent + "/"
	seen := make(map[string]bool)
	for _, p := range folderPaths {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		name, _, _ := strings.Cut(rest, "/")
		if name != "" {
			seen[name] = true
		}
	}
	return sortedKeys(seen)
}

// Join appends a child segment to a folder path.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "/" + child
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
