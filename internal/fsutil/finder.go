// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// FindFilesByExtension walks every path and returns the files whose extension
// is one of extensions. A path may name a file or a directory; directories are
// searched recursively in lexical order. Results keep the order of paths and
// contain each file once. A path that does not exist is an error.
func FindFilesByExtension(paths []string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension must be given")
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if !slices.Contains(extensions, filepath.Ext(p)) {
			return
		}
		if _, wasSeen := seen[p]; wasSeen {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
