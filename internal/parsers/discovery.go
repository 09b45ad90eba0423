package parsers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds Python source files under a set of paths.
type FileDiscovery struct {
	rootDir        string
	ignorePatterns []compiledPattern
}

// NewFileDiscovery creates a discovery rooted at rootDir. Ignore patterns
// are matched against slash-separated paths relative to rootDir.
func NewFileDiscovery(rootDir string, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return fd, nil
}

// Discover returns the .py files named by paths, walking directories.
// Hidden and __pycache__ directories are skipped. Files named explicitly
// are kept even when an ignore pattern matches them. The result is sorted
// and free of duplicates.
func (fd *FileDiscovery) Discover(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{fd.rootDir}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if strings.HasSuffix(root, ".py") {
				add(root)
			}
			continue
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if path != root && skipDir(info.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(path, ".py") {
				return nil
			}
			if fd.shouldIgnore(path) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func skipDir(name string) bool {
	return name == "__pycache__" || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(path string) bool {
	relPath, err := filepath.Rel(fd.rootDir, path)
	if err != nil {
		return false
	}
	// Normalize path separators for glob matching
	relPath = filepath.ToSlash(relPath)

	for _, cp := range fd.ignorePatterns {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	return false
}
