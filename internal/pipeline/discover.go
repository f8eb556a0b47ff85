package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// pageExtensions lists the output formats that carry an affix placeholder.
var pageExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// IsPage reports whether a file is a generated article page. Table of
// contents pages are excluded.
func IsPage(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)
	if !pageExtensions[ext] {
		return false
	}
	return strings.TrimSuffix(base, ext) != "toc"
}

// Discover walks root and returns every page eligible for processing, sorted.
func Discover(root string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsPage(path) {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	sort.Strings(pages)
	return pages, nil
}
