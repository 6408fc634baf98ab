// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension returns the full paths of all files under rootPath
// whose names end with the given extension. rootPath may also name a single
// file directly. Results are sorted so callers see a stable load order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(info.Name(), extension) {
			return []string{rootPath}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
