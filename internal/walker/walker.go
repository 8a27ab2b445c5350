// Package walker enumerates ".jack" input files from a mix of file and
// directory command-line arguments, recursing into subdirectories up to
// a caller-supplied depth limit.
package walker

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

const jackExt = ".jack"

// Collect returns every ".jack" file reachable from root. If root is a
// file, it is returned as-is (regardless of extension — callers that
// want to reject non-.jack files named explicitly may do so). If root is
// a directory, it is walked recursively up to maxDepth levels below
// root; maxDepth <= 0 means "root's immediate entries only".
func Collect(root string, maxDepth int) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot stat %q", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	if err := walk(root, maxDepth, &files); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func walk(dir string, depthRemaining int, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "cannot read directory %q", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if depthRemaining > 0 {
				if err := walk(path, depthRemaining-1, files); err != nil {
					return err
				}
			}
			continue
		}
		if filepath.Ext(entry.Name()) == jackExt {
			*files = append(*files, path)
		}
	}
	return nil
}
