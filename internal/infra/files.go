package infra

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
)

// excludePatterns filters packaging noise out of the upload set: test
// trees, VCS metadata, caches, and editor droppings.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`.*tests/.*`),
	regexp.MustCompile(`.*_test\.go`),
	regexp.MustCompile(`.*\.git/.*`),
	regexp.MustCompile(`.*\.DS_Store`),
	regexp.MustCompile(`.*\.coverage`),
	regexp.MustCompile(`.*__pycache__/.*`),
	regexp.MustCompile(`.*\.pytest_cache/.*`),
	regexp.MustCompile(`.*\.ruff_cache/.*`),
	regexp.MustCompile(`.*\.mypy_cache/.*`),
	regexp.MustCompile(`.*\.venv/.*`),
	regexp.MustCompile(`.*\.pyc`),
}

// File is one packaged file: where it lives and where it lands in the
// model archive.
type File struct {
	AbsPath string
	RelPath string
}

// CollectFiles walks the agent directory and returns the files to
// package, relative paths normalized to forward slashes.
func CollectFiles(root string) ([]File, error) {
	var out []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if excluded(rel) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		out = append(out, File{AbsPath: abs, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect files under %s: %w", root, err)
	}
	return out, nil
}

func excluded(rel string) bool {
	for _, pattern := range excludePatterns {
		if pattern.MatchString(rel) {
			return true
		}
	}
	return false
}
