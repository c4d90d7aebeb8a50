package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kielo/internal/config"
)

// DiscoverSources scans the source directory, non-recursively, for files with
// a recognized video extension. Results are sorted by name so batch order is
// stable across runs.
func DiscoverSources(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.Paths.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(cfg.Pipeline.VideoExtensions))
	for _, ext := range cfg.Pipeline.VideoExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		sources = append(sources, filepath.Join(cfg.Paths.SourceDir, entry.Name()))
	}

	sort.Strings(sources)
	return sources, nil
}
