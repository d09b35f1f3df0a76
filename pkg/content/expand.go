// Package content resolves a theme's content globs and reports which color
// and font tokens the matched files actually use.
package content

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves content globs against root and returns the matched files
// as absolute, sorted, de-duplicated paths. Patterns starting with "!"
// exclude files matched by the other patterns; a leading "./" is ignored.
func Expand(root string, globs []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content root: %w", err)
	}

	var includes, excludes []string
	for _, g := range globs {
		exclude := strings.HasPrefix(g, "!")
		full := anchor(absRoot, strings.TrimPrefix(g, "!"))
		if !doublestar.ValidatePattern(full) {
			return nil, fmt.Errorf("invalid content glob %q", g)
		}
		if exclude {
			excludes = append(excludes, full)
		} else {
			includes = append(includes, full)
		}
	}

	seen := make(map[string]bool)
	var files []string

	for _, full := range includes {
		base, pattern := doublestar.SplitPattern(full)
		if _, err := os.Stat(filepath.FromSlash(base)); err != nil {
			// A glob rooted in a directory that does not exist matches nothing.
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(filepath.FromSlash(base)), pattern,
			doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("failed to expand content glob %q: %w", full, err)
		}

		for _, m := range matches {
			p := path.Join(base, m)
			if seen[p] || excluded(p, excludes) {
				continue
			}
			seen[p] = true
			files = append(files, filepath.FromSlash(p))
		}
	}

	slices.Sort(files)
	return files, nil
}

// anchor joins a content glob onto root in slash form. Absolute globs are
// kept as they are.
func anchor(root, glob string) string {
	glob = strings.TrimPrefix(glob, "./")
	if filepath.IsAbs(glob) || path.IsAbs(glob) {
		return filepath.ToSlash(filepath.Clean(glob))
	}
	return filepath.ToSlash(filepath.Join(root, glob))
}

func excluded(p string, excludes []string) bool {
	for _, ex := range excludes {
		if ok, _ := doublestar.Match(ex, p); ok {
			return true
		}
	}
	return false
}
