package document

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Discover walks root recursively and returns every supported file, sorted
// lexically. Other files are skipped silently.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
