package dev

import (
	"path/filepath"

	"github.com/vango-dev/orbit/internal/config"
)

// CollectWatchPaths returns the files the playground reloads on: the page
// and the configuration file it was loaded from, if any.
func CollectWatchPaths(cfg *config.Config, page string) []string {
	paths := []string{resolvePath(cfg.Dir(), page)}
	if cfg.Path() != "" {
		paths = append(paths, cfg.Path())
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
