package render

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// WriteFiles writes a generator's file map under dir, creating parent
// directories as needed. It returns the written paths in sorted order.
func WriteFiles(dir string, files map[string][]byte) ([]string, error) {
	written := make([]string, 0, len(files))
	for _, name := range slices.Sorted(maps.Keys(files)) {
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return written, fmt.Errorf("render: refusing to write %q outside %s", name, dir)
		}
		outPath := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return written, fmt.Errorf("creating directory for %s: %w", outPath, err)
		}
		if err := os.WriteFile(outPath, files[name], 0o644); err != nil { //nolint:gosec // generated sources are world-readable
			return written, fmt.Errorf("writing %s: %w", outPath, err)
		}
		written = append(written, outPath)
	}
	return written, nil
}
