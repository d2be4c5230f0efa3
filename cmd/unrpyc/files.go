package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/batch"
	"github.com/grindlemire/go-unrpyc/internal/log"
	"github.com/grindlemire/go-unrpyc/pkg/unrpyc"
)

// collectArchives expands glob patterns and walks directories for
// .rpyc and .rpymc files. Files named directly are taken whatever their
// extension. Patterns that match nothing are reported and skipped.
func collectArchives(paths []string) ([]batch.File, error) {
	seen := map[string]bool{}
	var files []batch.File

	add := func(path string, size int64) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, batch.File{Path: path, Size: size})
	}

	for _, pattern := range paths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			log.Info("File not found: %s", pattern)
			continue
		}

		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}
			if !info.IsDir() {
				add(path, info.Size())
				continue
			}

			err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !unrpyc.IsArchive(p) {
					return nil
				}
				info, err := d.Info()
				if err != nil {
					return err
				}
				add(p, info.Size())
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", path, err)
			}
		}
	}

	slices.SortFunc(files, func(a, b batch.File) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}
